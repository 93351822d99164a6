package apperrors

import "errors"

// Common errors
var (
	// Session errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionCorrupt     = errors.New("stored session is corrupt")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Transport errors
	ErrRequestFailed = errors.New("request failed")

	// Attendance window errors
	ErrEventCompleted  = errors.New("event already completed")
	ErrEventNotStarted = errors.New("event has not started yet")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
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

// NewCustomError creates a CustomError with an underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewValidationError creates a new custom error for a failed field check
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewRequestError creates a new custom error for a failed HTTP call.
// The message is whatever the server supplied, or empty when the body
// carried nothing usable.
func NewRequestError(status int, message string) *CustomError {
	return &CustomError{
		Err:     ErrRequestFailed,
		Message: message,
		Details: map[string]interface{}{"status": status},
	}
}

// Status extracts the HTTP status carried by a request error, or 0.
func Status(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		if s, ok := ce.Details["status"].(int); ok {
			return s
		}
	}
	return 0
}

// Is returns whether target matches err or any of the errors in errList
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
