// Package repos provides read access to fixture rows through the ORM client
package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/celestiaorg/memberenv/internal/db/models"
)

// MemberRepository handles database operations for member entities
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a MemberRepository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetMemberByEmail retrieves a member with its credential and provider link.
// Returns ErrRecordNotFound if the member doesn't exist
func (r *MemberRepository) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Preload("Password").
		Preload("Provider").
		Where("email = ?", email).
		First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// CountMembersByEmail returns how many members carry the given email
func (r *MemberRepository) CountMembersByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// CountPasswords returns how many credential rows reference the member
func (r *MemberRepository) CountPasswords(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Password{}).Where("user_id = ?", memberID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count passwords: %w", err)
	}
	return count, nil
}

// CountProviders returns how many provider links with the given tag reference the member
func (r *MemberRepository) CountProviders(ctx context.Context, memberID uuid.UUID, provider string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Provider{}).
		Where("user_id = ? AND provider = ?", memberID, provider).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count providers: %w", err)
	}
	return count, nil
}
