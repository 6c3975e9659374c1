package apperrors

import "errors"

// Common errors
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Resource errors
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")

	// Authorization errors
	ErrNotAuthorized = errors.New("not authorized")

	// Infrastructure errors
	ErrUnavailable = errors.New("service unavailable")
)

// Buddy program errors
var (
	ErrOptInNotFound   = &CustomError{Err: ErrNotFound, Message: "opt-in not found"}
	ErrMatchNotFound   = &CustomError{Err: ErrNotFound, Message: "match not found"}
	ErrMeetingNotFound = &CustomError{Err: ErrNotFound, Message: "meeting not found"}
	ErrUserNotFound    = &CustomError{Err: ErrNotFound, Message: "user not found"}

	// Commit-time races. The matcher skips these instead of failing the run.
	ErrBuddyAtCapacity      = &CustomError{Err: ErrConflict, Message: "buddy has no remaining capacity"}
	ErrMenteeAlreadyMatched = &CustomError{Err: ErrConflict, Message: "mentee already has an active match"}
)

// NewInvalidInputError creates a new custom error for invalid input with a message
func NewInvalidInputError(message string) error {
	return &CustomError{
		Err:     ErrInvalidInput,
		Message: message,
	}
}

// NewNotAuthorizedError creates a new custom error for a caller that is not party to a resource
func NewNotAuthorizedError(message string) error {
	return &CustomError{
		Err:     ErrNotAuthorized,
		Message: message,
	}
}

// NewUnavailableError wraps an infrastructure failure so callers can match ErrUnavailable
func NewUnavailableError(message string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrUnavailable, cause),
		Message: message + ": " + cause.Error(),
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
