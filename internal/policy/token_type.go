package policy

import (
	"errors"
	"fmt"

	"github.com/sobhit1/feed-chain/internal/token"
)

// ErrTokenTypeMismatch is returned when a token is presented where its type
// is not accepted, e.g. a refresh token on an API route.
var ErrTokenTypeMismatch = errors.New("token type not accepted here")

// RequireTokenType checks that claims were issued as want.
func RequireTokenType(claims *token.Claims, want token.Type) error {
	if claims == nil {
		return fmt.Errorf("%w: no claims", ErrTokenTypeMismatch)
	}
	if claims.Type != want {
		return fmt.Errorf("%w: got %s, want %s", ErrTokenTypeMismatch, claims.Type, want)
	}
	return nil
}
