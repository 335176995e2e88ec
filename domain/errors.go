package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("tracking session not found")
	ErrCheckInNotFound    = errors.New("check-in not found")
	ErrAnalysisNotFound   = errors.New("skin analysis not found")
	ErrSessionClosed      = errors.New("tracking session is closed")
	ErrInvalidDay         = errors.New("check-in day must not be negative")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrReportNotCached    = errors.New("report not cached")
	ErrForbidden          = errors.New("resource belongs to another user")
	ErrTokenNotFound      = errors.New("token not found or expired")
	ErrInvalidInput       = errors.New("invalid input")
)

type inputError struct {
	msg string
}

func (e inputError) Error() string { return e.msg }

func (e inputError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidInput reports a rejected request field. It matches ErrInvalidInput
// under errors.Is while keeping msg as the error text.
func InvalidInput(msg string) error {
	return inputError{msg: msg}
}
