package errors

import "fmt"

// ErrorCode represents a Moody error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE" // 502
	ErrStorageWrite        ErrorCode = "STORAGE_WRITE"        // 507
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// MoodyError represents a structured error with code, status, and details.
type MoodyError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MoodyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MoodyError {
	return &MoodyError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(identifier string) *MoodyError {
	return &MoodyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewStorageWrite creates a 507 error for a failed persistence write.
// Write failures must stay observable so callers can tell the user the
// data may not have been saved.
func NewStorageWrite(key string, err error) *MoodyError {
	msg := "storage write failed"
	if err != nil {
		msg = err.Error()
	}
	return &MoodyError{
		Code:    ErrStorageWrite,
		Status:  507,
		Message: msg,
		Details: map[string]any{"key": key},
	}
}

// NewUpstreamUnavailable creates a 502 error for a failed call to the
// external assistant endpoint.
func NewUpstreamUnavailable(err error) *MoodyError {
	msg := "upstream unavailable"
	if err != nil {
		msg = err.Error()
	}
	return &MoodyError{
		Code:    ErrUpstreamUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MoodyError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MoodyError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a MoodyError with the given code.
func Is(err error, code ErrorCode) bool {
	if mErr, ok := err.(*MoodyError); ok {
		return mErr.Code == code
	}
	return false
}
