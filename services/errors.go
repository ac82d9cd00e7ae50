package services

import (
	"errors"
	"fmt"
	"maps"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeBadRequest          ErrorType = "bad_request"
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeConstraintViolation ErrorType = "constraint_violation"
	ErrorTypeUnauthorized        ErrorType = "unauthorized"
	ErrorTypeForbidden           ErrorType = "forbidden"
	ErrorTypeMethodNotAllowed    ErrorType = "method_not_allowed"
	ErrorTypeTimeout             ErrorType = "timeout"
	ErrorTypeInternal            ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail returns a copy of the error carrying an extra detail, so that
// package-level sentinels are never mutated.
func (e *DomainError) WithDetail(key, value string) *DomainError {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	maps.Copy(cp.Details, e.Details)
	cp.Details[key] = value
	return &cp
}

// Wrap returns a copy of the error with cause attached.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]string),
	}
}

// Domain error variables

var (
	// Authentication Errors
	ErrAuthenticationRequired = NewDomainError(ErrorTypeUnauthorized, "Authentication required", nil)
	ErrInvalidRefreshToken    = NewDomainError(ErrorTypeUnauthorized, "Invalid refresh token", nil)

	// Permission Errors
	ErrInsufficientPermissions = NewDomainError(ErrorTypeForbidden, "Insufficient permissions", nil)
	ErrInvalidCORSRequest      = NewDomainError(ErrorTypeForbidden, "Invalid CORS request", nil)

	// Request Errors
	ErrMalformedBody = NewDomainError(ErrorTypeBadRequest, "Malformed request body", nil)

	// Deadline Errors
	ErrRequestTimeout = NewDomainError(ErrorTypeTimeout, "Request timed out", nil)
)

// NotFound builds a not-found error for a missing resource or route.
func NotFound(message string) *DomainError {
	return NewDomainError(ErrorTypeNotFound, message, nil)
}

// BadRequest builds a bad-request error for a malformed request.
func BadRequest(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeBadRequest, message, err)
}

// MethodNotAllowed builds the error returned for an unsupported HTTP method.
func MethodNotAllowed(method, path string) *DomainError {
	return NewDomainError(ErrorTypeMethodNotAllowed,
		fmt.Sprintf("Request method '%s' is not supported for %s", method, path), nil)
}

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsBadRequestError checks if an error is a bad request error
func IsBadRequestError(err error) bool {
	return GetErrorType(err) == ErrorTypeBadRequest
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsConstraintViolationError checks if an error is a constraint violation
func IsConstraintViolationError(err error) bool {
	return GetErrorType(err) == ErrorTypeConstraintViolation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsMethodNotAllowedError checks if an error is a method not allowed error
func IsMethodNotAllowedError(err error) bool {
	return GetErrorType(err) == ErrorTypeMethodNotAllowed
}

// IsTimeoutError checks if an error is a handler deadline error
func IsTimeoutError(err error) bool {
	return GetErrorType(err) == ErrorTypeTimeout
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the client-facing message of a domain error, or
// err.Error() otherwise.
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
