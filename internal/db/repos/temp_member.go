package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/memberenv/internal/db/models"
)

// TempMemberRepository handles database operations for pending registrations
type TempMemberRepository struct {
	db *gorm.DB
}

// NewTempMemberRepository creates a TempMemberRepository
func NewTempMemberRepository(db *gorm.DB) *TempMemberRepository {
	return &TempMemberRepository{db: db}
}

// GetTempMemberByCode retrieves a pending registration and its info row.
// Returns ErrRecordNotFound if no registration has the code
func (r *TempMemberRepository) GetTempMemberByCode(ctx context.Context, code string) (*models.TempMember, error) {
	var tempMember models.TempMember
	err := r.db.WithContext(ctx).
		Preload("Info").
		Where("code = ?", code).
		First(&tempMember).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("temp member not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp member: %w", err)
	}
	return &tempMember, nil
}

// CountTempMembersByCode returns how many pending registrations carry the code
func (r *TempMemberRepository) CountTempMembersByCode(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TempMember{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count temp members: %w", err)
	}
	return count, nil
}
