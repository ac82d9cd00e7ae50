package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sobhit1/feed-chain/internal/keys"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultClockSkew  = 5 * time.Second

	// Algorithm is the only signing algorithm issued or accepted.
	Algorithm = "RS256"
)

// Codec encodes and decodes tokens with a single RSA key pair. It is safe
// for concurrent use and never mutated after construction.
type Codec struct {
	keys       *keys.KeyPair
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	skew       time.Duration
	now        func() time.Time
	parser     *jwt.Parser
	structural *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithIssuer stamps iss on issued tokens and requires it on decode.
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = issuer }
}

func WithAccessTTL(ttl time.Duration) Option {
	return func(c *Codec) { c.accessTTL = ttl }
}

func WithRefreshTTL(ttl time.Duration) Option {
	return func(c *Codec) { c.refreshTTL = ttl }
}

// WithClockSkew sets the tolerance applied to exp and iat checks.
func WithClockSkew(skew time.Duration) Option {
	return func(c *Codec) { c.skew = skew }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// Pair is the result of a login or refresh: one token of each type.
type Pair struct {
	AccessToken   string
	AccessClaims  *Claims
	RefreshToken  string
	RefreshClaims *Claims
}

// NewCodec builds a codec around kp.
func NewCodec(kp *keys.KeyPair, opts ...Option) (*Codec, error) {
	if kp == nil {
		return nil, errors.New("token codec requires a key pair")
	}

	c := &Codec{
		keys:       kp,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		skew:       DefaultClockSkew,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.accessTTL <= 0 || c.refreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive (access=%s, refresh=%s)", c.accessTTL, c.refreshTTL)
	}
	if c.skew < 0 {
		return nil, fmt.Errorf("clock skew must not be negative, got %s", c.skew)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithLeeway(c.skew),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)
	c.structural = jwt.NewParser(jwt.WithStrictDecoding())

	return c, nil
}

// TTL returns the configured lifetime for typ.
func (c *Codec) TTL(typ Type) time.Duration {
	if typ == TypeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// ClockSkew returns the configured tolerance.
func (c *Codec) ClockSkew() time.Duration { return c.skew }

// Encode signs claims. The claims are normalized first; the codec issuer is
// used when claims carry none.
func (c *Codec) Encode(claims Claims) (string, error) {
	claims = claims.Normalize()
	if claims.Issuer == "" {
		claims.Issuer = c.issuer
	}
	if err := claims.Validate(); err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, toWire(claims))
	tok.Header["kid"] = c.keys.KeyID()

	signed, err := tok.SignedString(c.keys.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns its claims. Structure and algorithm are
// checked before the key is used; time claims only after the signature.
func (c *Codec) Decode(raw string) (*Claims, error) {
	unverified, _, err := c.structural.ParseUnverified(raw, &wireClaims{})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, newTokenError(KindUnsupportedAlgorithm, err)
		}
		return nil, newTokenError(KindMalformed, err)
	}
	if alg := unverified.Method.Alg(); alg != Algorithm {
		return nil, newTokenError(KindUnsupportedAlgorithm, fmt.Errorf("algorithm %q is not accepted", alg))
	}

	wire := &wireClaims{}
	_, err = c.parser.ParseWithClaims(raw, wire, c.verificationKey)
	if err != nil {
		return nil, classify(err)
	}
	return fromWire(wire), nil
}

// Issue creates and signs a token of typ for subject, valid from now for
// the configured TTL.
func (c *Codec) Issue(subject string, roles []string, typ Type) (string, *Claims, error) {
	if !typ.Valid() {
		return "", nil, fmt.Errorf("issue token: %w", ErrUnknownType)
	}
	now := c.now().UTC().Truncate(time.Second)
	claims := Claims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    c.issuer,
		Roles:     roles,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.TTL(typ)),
		Type:      typ,
	}.Normalize()

	signed, err := c.Encode(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// IssuePair issues an access token and a refresh token for subject.
func (c *Codec) IssuePair(subject string, roles []string) (*Pair, error) {
	access, accessClaims, err := c.Issue(subject, roles, TypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := c.Issue(subject, roles, TypeRefresh)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:   access,
		AccessClaims:  accessClaims,
		RefreshToken:  refresh,
		RefreshClaims: refreshClaims,
	}, nil
}

func (c *Codec) verificationKey(tok *jwt.Token) (interface{}, error) {
	if _, ok := tok.Method.(*jwt.SigningMethodRSA); !ok || tok.Method.Alg() != Algorithm {
		return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
	}
	return c.keys.PublicKey(), nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newTokenError(KindMalformed, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return newTokenError(KindUnsupportedAlgorithm, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return newTokenError(KindBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newTokenError(KindExpired, err)
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return newTokenError(KindNotYetValid, err)
	default:
		return newTokenError(KindInvalidClaims, err)
	}
}
