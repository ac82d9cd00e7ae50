package keys

import (
	"errors"
	"fmt"
)

// Reason classifies why key material could not be loaded.
type Reason string

const (
	ReasonIOError              Reason = "io_error"
	ReasonMalformedPEM         Reason = "malformed_pem"
	ReasonInvalidKeySpec       Reason = "invalid_key_spec"
	ReasonUnsupportedAlgorithm Reason = "unsupported_algorithm"
)

// Sentinels usable with errors.Is against a *KeyLoadError.
var (
	ErrIOError              = &KeyLoadError{Reason: ReasonIOError}
	ErrMalformedPEM         = &KeyLoadError{Reason: ReasonMalformedPEM}
	ErrInvalidKeySpec       = &KeyLoadError{Reason: ReasonInvalidKeySpec}
	ErrUnsupportedAlgorithm = &KeyLoadError{Reason: ReasonUnsupportedAlgorithm}
)

// KeyLoadError is returned by LoadKeyPair and the individual loaders.
type KeyLoadError struct {
	Reason   Reason
	Location string
	Err      error
}

func (e *KeyLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load key %q: %s: %v", e.Location, e.Reason, e.Err)
	}
	return fmt.Sprintf("load key %q: %s", e.Location, e.Reason)
}

func (e *KeyLoadError) Unwrap() error {
	return e.Err
}

// Is matches on Reason only, so callers can compare against the sentinels.
func (e *KeyLoadError) Is(target error) bool {
	t, ok := target.(*KeyLoadError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// ReasonOf returns the Reason carried by err, or "" when err is not a KeyLoadError.
func ReasonOf(err error) Reason {
	var kerr *KeyLoadError
	if errors.As(err, &kerr) {
		return kerr.Reason
	}
	return ""
}

func newKeyLoadError(reason Reason, location string, err error) *KeyLoadError {
	return &KeyLoadError{Reason: reason, Location: location, Err: err}
}
