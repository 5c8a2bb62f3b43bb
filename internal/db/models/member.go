package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderLocal tags credentials that authenticate with email and password
const ProviderLocal = "local"

// Member represents an activated account
type Member struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"not null;unique"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Password *Password `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName implements gorm's tabler interface
func (Member) TableName() string {
	return TableMember
}

// Password is the hashed credential of a member
type Password struct {
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;column:user_id"`
	Password string    `json:"-" gorm:"not null"`
}

// TableName implements gorm's tabler interface
func (Password) TableName() string {
	return TablePassword
}

// Provider links a member to the way it authenticates
type Provider struct {
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;column:user_id"`
	Provider string    `json:"provider" gorm:"not null"`
}

// TableName implements gorm's tabler interface
func (Provider) TableName() string {
	return TableProvider
}

// IsLocal reports whether the member signs in with a local password
func (p Provider) IsLocal() bool {
	return p.Provider == ProviderLocal
}
