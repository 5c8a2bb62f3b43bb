// Package fixtures writes and purges the rows end-to-end tests start from.
//
// Rows are inserted with plain SQL rather than through the application under
// test, so seeded state never depends on the behavior being tested. Every
// caller-supplied value is bound through a placeholder.
package fixtures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/celestiaorg/memberenv/internal/db"
	"github.com/celestiaorg/memberenv/internal/db/models"
	"github.com/celestiaorg/memberenv/internal/security"
)

var (
	// ErrDuplicate is returned when a fixture collides with a unique constraint
	ErrDuplicate = errors.New("fixture already exists")
	// ErrInvalidFixture is returned when a required fixture field is empty
	ErrInvalidFixture = errors.New("invalid fixture")
)

const (
	insertMemberSQL         = `INSERT INTO "member"."member" (email) VALUES ($1) RETURNING id`
	insertPasswordSQL       = `INSERT INTO "auth"."password" (user_id, password) VALUES ($1, $2)`
	insertProviderSQL       = `INSERT INTO "auth"."provider" (user_id, provider) VALUES ($1, $2)`
	insertTempMemberSQL     = `INSERT INTO "temp_member"."temp_member" (code) VALUES ($1) RETURNING id`
	insertTempMemberInfoSQL = `INSERT INTO "temp_member"."temp_member_info" (temp_member_id, nickname, email, password) VALUES ($1, $2, $3, $4)`
)

// SeededMember describes the rows written by SeedMember
type SeededMember struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// SeededTempMember describes the rows written by SeedTemporaryMember
type SeededTempMember struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// Seeder inserts fixture rows through a raw database handle
type Seeder struct {
	db     *sql.DB
	hasher *security.Hasher
}

// NewSeeder creates a Seeder. A nil hasher selects security.FixtureCost.
func NewSeeder(conn *sql.DB, hasher *security.Hasher) *Seeder {
	if hasher == nil {
		hasher = security.NewHasher(security.FixtureCost)
	}
	return &Seeder{db: conn, hasher: hasher}
}

// Hasher returns the hasher used for fixture credentials
func (s *Seeder) Hasher() *security.Hasher {
	return s.hasher
}

// SeedMember inserts a member, its password credential and a local provider link.
// Either all three rows are written or none are.
func (s *Seeder) SeedMember(ctx context.Context, email, password string) (*SeededMember, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidFixture)
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seeded := &SeededMember{Email: email, PasswordHash: hash}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, insertMemberSQL, email).Scan(&seeded.ID); err != nil {
			return wrapInsert("member", err)
		}
		if _, err := tx.ExecContext(ctx, insertPasswordSQL, seeded.ID, hash); err != nil {
			return wrapInsert("password", err)
		}
		if _, err := tx.ExecContext(ctx, insertProviderSQL, seeded.ID, models.ProviderLocal); err != nil {
			return wrapInsert("provider", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

// SeedTemporaryMember inserts a pending registration keyed by code and its info row.
// Either both rows are written or none are.
func (s *Seeder) SeedTemporaryMember(ctx context.Context, code, nickname, email, password string) (*SeededTempMember, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidFixture)
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seeded := &SeededTempMember{Code: code, Nickname: nickname, Email: email, PasswordHash: hash}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, insertTempMemberSQL, code).Scan(&seeded.ID); err != nil {
			return wrapInsert("temp member", err)
		}
		if _, err := tx.ExecContext(ctx, insertTempMemberInfoSQL, seeded.ID, nickname, email, hash); err != nil {
			return wrapInsert("temp member info", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

// Reset deletes every row from the managed tables in dependency order. The
// deletes share one transaction, so no reader ever sees a partially cleared store.
func (s *Seeder) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range models.ManagedTables {
			if _, err := tx.ExecContext(ctx, DeleteStatement(table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// DeleteStatement returns the full-table delete for a schema-qualified table name
func DeleteStatement(table string) string {
	return "DELETE FROM " + pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func (s *Seeder) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func wrapInsert(what string, err error) error {
	if db.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s: %v", ErrDuplicate, what, err)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
