package token

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Valid reports whether t is a known token type.
func (t Type) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

func (t Type) String() string { return string(t) }

var (
	ErrMissingSubject  = errors.New("subject is required")
	ErrUnknownType     = errors.New("unknown token type")
	ErrInvalidLifetime = errors.New("expiry must be after issued-at")
	ErrMissingIssuedAt = errors.New("issued-at is required")
)

// Claims is the decoded, verified content of a token.
type Claims struct {
	ID        string
	Subject   string
	Issuer    string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Type      Type
}

// Normalize returns a copy with roles as a sorted set and times in UTC at
// second precision, which is what survives the wire.
func (c Claims) Normalize() Claims {
	c.Roles = normalizeRoles(c.Roles)
	c.IssuedAt = c.IssuedAt.UTC().Truncate(time.Second)
	c.ExpiresAt = c.ExpiresAt.UTC().Truncate(time.Second)
	return c
}

// Validate checks the claim invariants.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return ErrMissingSubject
	}
	if !c.Type.Valid() {
		return ErrUnknownType
	}
	if c.IssuedAt.IsZero() {
		return ErrMissingIssuedAt
	}
	if !c.ExpiresAt.After(c.IssuedAt) {
		return ErrInvalidLifetime
	}
	return nil
}

// HasRole reports whether role was granted to the subject.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// TTL is the lifetime the token was issued with.
func (c Claims) TTL() time.Duration {
	return c.ExpiresAt.Sub(c.IssuedAt)
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// wireClaims is the JSON payload. Registered claims use their RFC 7519 names.
type wireClaims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles,omitempty"`
	TokenType Type     `json:"token_type"`
}

// Validate is invoked by the jwt parser after the registered claims checks.
func (w *wireClaims) Validate() error {
	if w.Subject == "" {
		return ErrMissingSubject
	}
	if !w.TokenType.Valid() {
		return ErrUnknownType
	}
	if w.IssuedAt == nil {
		return ErrMissingIssuedAt
	}
	if w.ExpiresAt != nil && !w.ExpiresAt.After(w.IssuedAt.Time) {
		return ErrInvalidLifetime
	}
	return nil
}

func toWire(c Claims) *wireClaims {
	return &wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.ID,
			Subject:   c.Subject,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
		Roles:     c.Roles,
		TokenType: c.Type,
	}
}

func fromWire(w *wireClaims) *Claims {
	c := Claims{
		ID:      w.ID,
		Subject: w.Subject,
		Issuer:  w.Issuer,
		Roles:   w.Roles,
		Type:    w.TokenType,
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	c = c.Normalize()
	return &c
}
