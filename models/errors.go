package models

import "errors"

// Sentinel errors shared by the store, the auth service and the HTTP layer.
var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("no token provided")
	ErrInvalidOldPassword = errors.New("invalid old password")
	ErrInactiveAccount    = errors.New("account deactivated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConfiguration      = errors.New("server configuration error")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// ValidationError is bad or missing input. Its message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a ValidationError with the given client message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
