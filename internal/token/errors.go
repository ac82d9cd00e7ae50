package token

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind string

const (
	KindMalformed            Kind = "malformed"
	KindBadSignature         Kind = "bad_signature"
	KindExpired              Kind = "expired"
	KindNotYetValid          Kind = "not_yet_valid"
	KindUnsupportedAlgorithm Kind = "unsupported_algorithm"
	KindInvalidClaims        Kind = "invalid_claims"
)

// Sentinels for errors.Is comparisons.
var (
	ErrMalformed            = &TokenError{Kind: KindMalformed}
	ErrBadSignature         = &TokenError{Kind: KindBadSignature}
	ErrExpired              = &TokenError{Kind: KindExpired}
	ErrNotYetValid          = &TokenError{Kind: KindNotYetValid}
	ErrUnsupportedAlgorithm = &TokenError{Kind: KindUnsupportedAlgorithm}
	ErrInvalidClaims        = &TokenError{Kind: KindInvalidClaims}
)

// TokenError is returned by Decode.
type TokenError struct {
	Kind Kind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err, or "" when err is not a TokenError.
func KindOf(err error) Kind {
	var terr *TokenError
	if errors.As(err, &terr) {
		return terr.Kind
	}
	return ""
}

func newTokenError(kind Kind, err error) *TokenError {
	return &TokenError{Kind: kind, Err: err}
}
