package api

// Error messages
const (
	ErrMsgInvalidReqBody    = "Invalid request body"
	ErrMsgEmailRequired     = "Email is required"
	ErrMsgPasswordRequired  = "Password is required"
	ErrMsgCodeRequired      = "Code is required"
	ErrMsgNicknameRequired  = "Nickname is required"
	ErrMsgMemberExists      = "Member already exists"
	ErrMsgTempMemberExists  = "Temporary member already exists"
	ErrMsgSeedFailed        = "Failed to seed fixture"
	ErrMsgResetFailed       = "Failed to reset state"
	ErrMsgEnvironmentClosed = "Environment is not ready"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
