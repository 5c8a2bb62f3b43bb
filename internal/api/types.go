package api

import (
	"errors"

	"github.com/google/uuid"
)

// SeedMemberRequest is the body of POST /members
type SeedMemberRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields
func (r SeedMemberRequest) Validate() error {
	if r.Email == "" {
		return errors.New(ErrMsgEmailRequired)
	}
	if r.Password == "" {
		return errors.New(ErrMsgPasswordRequired)
	}
	return nil
}

// SeedTempMemberRequest is the body of POST /temp-members
type SeedTempMemberRequest struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields
func (r SeedTempMemberRequest) Validate() error {
	switch {
	case r.Code == "":
		return errors.New(ErrMsgCodeRequired)
	case r.Nickname == "":
		return errors.New(ErrMsgNicknameRequired)
	case r.Email == "":
		return errors.New(ErrMsgEmailRequired)
	case r.Password == "":
		return errors.New(ErrMsgPasswordRequired)
	}
	return nil
}

// SeedResponse is returned for a created fixture
type SeedResponse struct {
	ID uuid.UUID `json:"id"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
