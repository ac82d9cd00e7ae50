package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeUnauthorized,
				Message: "Invalid refresh token",
				Err:     errors.New("token expired"),
			},
			wantMsg: "unauthorized: Invalid refresh token (token expired)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeBadRequest,
				Message: "Malformed request body",
			},
			wantMsg: "bad_request: Malformed request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeUnauthorized, "nope", nil),
			target: ErrAuthenticationRequired,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NotFound("missing"),
			target: ErrAuthenticationRequired,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NotFound("missing"),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetailCopies(t *testing.T) {
	err := ErrInvalidCORSRequest.WithDetail("origin", "https://evil.example").WithDetail("method", "GET")

	assert.Equal(t, "https://evil.example", err.Details["origin"])
	assert.Equal(t, "GET", err.Details["method"])
	assert.Empty(t, ErrInvalidCORSRequest.Details, "sentinel must stay untouched")
}

func TestDomainError_WrapCopies(t *testing.T) {
	cause := errors.New("signature mismatch")
	err := ErrInvalidRefreshToken.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Nil(t, ErrInvalidRefreshToken.Err)
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFound("x"), IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", NotFound("x")), IsNotFoundError, true},
		{"bad request", BadRequest("x", nil), IsBadRequestError, true},
		{"validation", NewDomainError(ErrorTypeValidation, "x", nil), IsValidationError, true},
		{"constraint", NewDomainError(ErrorTypeConstraintViolation, "x", nil), IsConstraintViolationError, true},
		{"unauthorized", ErrAuthenticationRequired, IsUnauthorizedError, true},
		{"forbidden", ErrInsufficientPermissions, IsForbiddenError, true},
		{"method", MethodNotAllowed("PATCH", "/x"), IsMethodNotAllowedError, true},
		{"timeout", fmt.Errorf("deadline: %w", ErrRequestTimeout), IsTimeoutError, true},
		{"internal", WrapInternal("x", errors.New("y")), IsInternalError, true},
		{"mismatch", ErrAuthenticationRequired, IsForbiddenError, false},
		{"regular error", errors.New("regular"), IsNotFoundError, false},
		{"nil error", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorMessageAndDetails(t *testing.T) {
	assert.Equal(t, "Authentication required", GetErrorMessage(fmt.Errorf("ctx: %w", ErrAuthenticationRequired)))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))

	err := NotFound("missing").WithDetail("id", "42")
	assert.Equal(t, map[string]string{"id": "42"}, GetErrorDetails(err))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))

	assert.Equal(t, ErrorTypeBadRequest, GetErrorType(WrapError(ErrorTypeBadRequest, "x", nil)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Contains(t, MethodNotAllowed("PATCH", "/api").Message, "PATCH")
}
