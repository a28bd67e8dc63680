package errors

import (
	"net/http"

	"reportshare/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Subject-related errors
	ErrSubjectNotFound = NewBaseError(
		http.StatusNotFound,
		"SUBJECT_NOT_FOUND",
		"Report not found",
		"",
	)

	ErrSubjectAlreadyExists = NewBaseError(
		http.StatusConflict,
		"SUBJECT_ALREADY_EXISTS",
		"A report for this external key already exists",
		"",
	)

	// Link-related errors. Not found never tells a wrong token apart from a missing link.
	ErrLinkNotFound = NewBaseError(
		http.StatusNotFound,
		"LINK_NOT_FOUND",
		"This link is not valid",
		"",
	)

	ErrLinkRevoked = NewBaseError(
		http.StatusGone,
		"LINK_REVOKED",
		"This link has been replaced by a newer one",
		"",
	)

	ErrLinkExpired = NewBaseError(
		http.StatusGone,
		"LINK_EXPIRED",
		"This link has expired",
		"",
	)

	ErrLinkLocked = NewBaseError(
		http.StatusTooManyRequests,
		"LINK_LOCKED",
		"Too many wrong passcodes, try again later",
		"",
	)

	ErrWrongPasscode = NewBaseError(
		http.StatusUnauthorized,
		"WRONG_PASSCODE",
		"The passcode is incorrect",
		"",
	)

	ErrLinkConflict = NewBaseError(
		http.StatusConflict,
		"LINK_CONFLICT",
		"Link token collision",
		"",
	)

	ErrLinkIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"LINK_ISSUE_FAILED",
		"Failed to issue a link",
		"",
	)

	ErrLinkBusy = NewBaseError(
		http.StatusServiceUnavailable,
		"LINK_BUSY",
		"The link is being verified concurrently, please retry",
		"",
	)

	// Trigger-related errors
	ErrWebhookUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"WEBHOOK_UNAUTHORIZED",
		"Invalid webhook secret",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// General errors
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authentication required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the underlying driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}
