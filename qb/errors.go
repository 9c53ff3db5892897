package qb

// ErrValidation is matched by every error caused by malformed caller input,
// so callers can map the whole family to a "bad request" response.
var ErrValidation = &ValidationError{Message: "validation failed"}

var (
	ErrEmptyPayload = &ValidationError{Message: "no data supplied"}
	ErrInvalidRange = &ValidationError{Message: "upper bound must not be less than lower bound"}
)

type ValidationError struct {
	Message string
}

// Invalid returns a validation error carrying msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
