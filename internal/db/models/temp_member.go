package models

import (
	"time"

	"github.com/google/uuid"
)

// TempMember is a pending registration waiting for its code to be confirmed
type TempMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"not null;unique"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Info *TempMemberInfo `json:"info,omitempty" gorm:"foreignKey:TempMemberID;references:ID"`
}

// TableName implements gorm's tabler interface
func (TempMember) TableName() string {
	return TableTempMember
}

// TempMemberInfo carries the account details of a pending registration.
// It has the same credential shape as Member plus Password.
type TempMemberInfo struct {
	TempMemberID uuid.UUID `json:"temp_member_id" gorm:"type:uuid;primaryKey;column:temp_member_id"`
	Nickname     string    `json:"nickname" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	Password     string    `json:"-" gorm:"not null"`
}

// TableName implements gorm's tabler interface
func (TempMemberInfo) TableName() string {
	return TableTempMemberInfo
}
