package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeNotRegistered = "not_registered"
	ErrCodeNotAuthorized = "not_authorized"
	ErrCodeNotMember     = "not_member"
	ErrCodeBadRequest    = "bad_request"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotRegistered = errors.New("not registered to a room")
	ErrNotAuthorized = errors.New("not authorized")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
