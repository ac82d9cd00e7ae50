package token_test

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobhit1/feed-chain/internal/testutil"
	"github.com/sobhit1/feed-chain/internal/token"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newCodec(t *testing.T, opts ...token.Option) *token.Codec {
	t.Helper()
	opts = append([]token.Option{token.WithClock(func() time.Time { return fixedNow })}, opts...)
	codec, err := token.NewCodec(testutil.KeyPair(t), opts...)
	require.NoError(t, err)
	return codec
}

func signMap(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validMapClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"jti":        "id-1",
		"sub":        "alice",
		"iat":        fixedNow.Unix(),
		"exp":        fixedNow.Add(time.Minute).Unix(),
		"roles":      []string{"user"},
		"token_type": "access",
	}
}

func TestNewCodec(t *testing.T) {
	kp := testutil.KeyPair(t)

	t.Run("requires key pair", func(t *testing.T) {
		_, err := token.NewCodec(nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, err := token.NewCodec(kp, token.WithAccessTTL(0))
		assert.Error(t, err)
	})

	t.Run("rejects negative skew", func(t *testing.T) {
		_, err := token.NewCodec(kp, token.WithClockSkew(-time.Second))
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		codec, err := token.NewCodec(kp)
		require.NoError(t, err)
		assert.Equal(t, token.DefaultAccessTTL, codec.TTL(token.TypeAccess))
		assert.Equal(t, token.DefaultRefreshTTL, codec.TTL(token.TypeRefresh))
		assert.Equal(t, token.DefaultClockSkew, codec.ClockSkew())
	})
}

func TestCodec_IssueAndDecode(t *testing.T) {
	codec := newCodec(t)

	raw, issued, err := codec.Issue("alice", []string{"user", "admin", "user"}, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, issued.Roles)
	assert.NotEmpty(t, issued.ID)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, []string{"admin", "user"}, claims.Roles)
	assert.Equal(t, token.TypeAccess, claims.Type)
	assert.True(t, claims.IssuedAt.Equal(fixedNow))
	assert.True(t, claims.ExpiresAt.Equal(fixedNow.Add(token.DefaultAccessTTL)))
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("owner"))
}

func TestCodec_HeaderCarriesKeyID(t *testing.T) {
	codec := newCodec(t)

	raw, _, err := codec.Issue("alice", nil, token.TypeAccess)
	require.NoError(t, err)

	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "RS256", tok.Header["alg"])
	assert.Equal(t, testutil.KeyPair(t).KeyID(), tok.Header["kid"])
}

func TestCodec_IssuePair(t *testing.T) {
	codec := newCodec(t, token.WithAccessTTL(10*time.Minute), token.WithRefreshTTL(24*time.Hour))

	pair, err := codec.IssuePair("bob", []string{"user"})
	require.NoError(t, err)

	access, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.TypeAccess, access.Type)
	assert.Equal(t, 10*time.Minute, access.TTL())

	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, token.TypeRefresh, refresh.Type)
	assert.Equal(t, 24*time.Hour, refresh.TTL())
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestCodec_EncodeRejectsInvalidClaims(t *testing.T) {
	codec := newCodec(t)
	base := token.Claims{
		Subject:   "alice",
		IssuedAt:  fixedNow,
		ExpiresAt: fixedNow.Add(time.Minute),
		Type:      token.TypeAccess,
	}

	tests := []struct {
		name   string
		mutate func(c *token.Claims)
		want   error
	}{
		{"missing subject", func(c *token.Claims) { c.Subject = "" }, token.ErrMissingSubject},
		{"unknown type", func(c *token.Claims) { c.Type = "session" }, token.ErrUnknownType},
		{"expiry equals issued-at", func(c *token.Claims) { c.ExpiresAt = c.IssuedAt }, token.ErrInvalidLifetime},
		{"expiry before issued-at", func(c *token.Claims) { c.ExpiresAt = c.IssuedAt.Add(-time.Hour) }, token.ErrInvalidLifetime},
		{"missing issued-at", func(c *token.Claims) { c.IssuedAt = time.Time{} }, token.ErrMissingIssuedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			_, err := codec.Encode(c)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, _, err := codec.Issue("alice", nil, token.Type("bogus"))
	assert.ErrorIs(t, err, token.ErrUnknownType)
}

func TestCodec_DecodeFailures(t *testing.T) {
	codec := newCodec(t)
	priv := testutil.RSAKey(t)
	other := testutil.OtherRSAKey(t)

	withClaims := func(mutate func(jwt.MapClaims)) jwt.MapClaims {
		c := validMapClaims()
		mutate(c)
		return c
	}

	noneToken := signMap(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validMapClaims())
	pubDER := testutil.PublicPEM(t, &priv.PublicKey)
	hmacConfusion := signMap(t, jwt.SigningMethodHS256, pubDER, validMapClaims())
	rs512 := signMap(t, jwt.SigningMethodRS512, priv, validMapClaims())

	b64 := base64.RawURLEncoding.EncodeToString
	unknownAlg := b64([]byte(`{"alg":"XYZ","typ":"JWT"}`)) + "." + b64([]byte(`{"sub":"alice"}`)) + ".c2ln"
	missingAlg := b64([]byte(`{"typ":"JWT"}`)) + "." + b64([]byte(`{"sub":"alice"}`)) + ".c2ln"
	notJSONHeader := b64([]byte(`not json`)) + "." + b64([]byte(`{"sub":"alice"}`)) + ".c2ln"

	tests := []struct {
		name  string
		token string
		want  token.Kind
	}{
		{"empty", "", token.KindMalformed},
		{"two segments", "abc.def", token.KindMalformed},
		{"four segments", "a.b.c.d", token.KindMalformed},
		{"header not base64", "!!!.e30.c2ln", token.KindMalformed},
		{"header not json", notJSONHeader, token.KindMalformed},
		{"alg none", noneToken, token.KindUnsupportedAlgorithm},
		{"hmac with public key", hmacConfusion, token.KindUnsupportedAlgorithm},
		{"rs512", rs512, token.KindUnsupportedAlgorithm},
		{"unknown alg", unknownAlg, token.KindUnsupportedAlgorithm},
		{"missing alg", missingAlg, token.KindUnsupportedAlgorithm},
		{"foreign key", signMap(t, jwt.SigningMethodRS256, other, validMapClaims()), token.KindBadSignature},
		{
			"expired beyond skew",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) {
				c["iat"] = fixedNow.Add(-time.Hour).Unix()
				c["exp"] = fixedNow.Add(-10 * time.Second).Unix()
			})),
			token.KindExpired,
		},
		{
			"expired exactly at skew boundary",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) {
				c["iat"] = fixedNow.Add(-time.Hour).Unix()
				c["exp"] = fixedNow.Add(-token.DefaultClockSkew).Unix()
			})),
			token.KindExpired,
		},
		{
			"issued in the future",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) {
				c["iat"] = fixedNow.Add(time.Minute).Unix()
				c["exp"] = fixedNow.Add(time.Hour).Unix()
			})),
			token.KindNotYetValid,
		},
		{
			"not before in the future",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) {
				c["nbf"] = fixedNow.Add(time.Minute).Unix()
			})),
			token.KindNotYetValid,
		},
		{
			"missing exp",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) { delete(c, "exp") })),
			token.KindInvalidClaims,
		},
		{
			"missing iat",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) { delete(c, "iat") })),
			token.KindInvalidClaims,
		},
		{
			"missing subject",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) { delete(c, "sub") })),
			token.KindInvalidClaims,
		},
		{
			"unknown token type",
			signMap(t, jwt.SigningMethodRS256, priv, withClaims(func(c jwt.MapClaims) { c["token_type"] = "id" })),
			token.KindInvalidClaims,
		},
		{
			"expired and tampered",
			signMap(t, jwt.SigningMethodRS256, other, withClaims(func(c jwt.MapClaims) {
				c["iat"] = fixedNow.Add(-time.Hour).Unix()
				c["exp"] = fixedNow.Add(-time.Minute).Unix()
			})),
			token.KindBadSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Equal(t, tt.want, token.KindOf(err), "error: %v", err)
			assert.ErrorIs(t, err, &token.TokenError{Kind: tt.want})
		})
	}
}

func TestCodec_ClockSkewTolerance(t *testing.T) {
	codec := newCodec(t)
	priv := testutil.RSAKey(t)

	t.Run("recently expired within skew", func(t *testing.T) {
		c := validMapClaims()
		c["iat"] = fixedNow.Add(-time.Hour).Unix()
		c["exp"] = fixedNow.Add(-3 * time.Second).Unix()

		_, err := codec.Decode(signMap(t, jwt.SigningMethodRS256, priv, c))
		assert.NoError(t, err)
	})

	t.Run("issued slightly ahead within skew", func(t *testing.T) {
		c := validMapClaims()
		c["iat"] = fixedNow.Add(3 * time.Second).Unix()

		_, err := codec.Decode(signMap(t, jwt.SigningMethodRS256, priv, c))
		assert.NoError(t, err)
	})
}

func TestCodec_Issuer(t *testing.T) {
	codec := newCodec(t, token.WithIssuer("https://auth.example.com"))
	priv := testutil.RSAKey(t)

	raw, _, err := codec.Issue("alice", nil, token.TypeAccess)
	require.NoError(t, err)
	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com", claims.Issuer)

	c := validMapClaims()
	c["iss"] = "https://evil.example.com"
	_, err = codec.Decode(signMap(t, jwt.SigningMethodRS256, priv, c))
	assert.ErrorIs(t, err, token.ErrInvalidClaims)

	_, err = codec.Decode(signMap(t, jwt.SigningMethodRS256, priv, validMapClaims()))
	assert.ErrorIs(t, err, token.ErrInvalidClaims, "issuer is required once configured")
}

func TestCodec_TamperedPayload(t *testing.T) {
	codec := newCodec(t)

	raw, _, err := codec.Issue("alice", []string{"user"}, token.TypeAccess)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(
		`{"sub":"alice","roles":["admin"],"token_type":"access","iat":` +
			itoa(fixedNow.Unix()) + `,"exp":` + itoa(fixedNow.Add(time.Hour).Unix()) + `}`))

	_, err = codec.Decode(parts[0] + "." + forged + "." + parts[2])
	assert.ErrorIs(t, err, token.ErrBadSignature)
}

func TestTokenError(t *testing.T) {
	err := &token.TokenError{Kind: token.KindExpired, Err: jwt.ErrTokenExpired}

	assert.ErrorIs(t, err, token.ErrExpired)
	assert.NotErrorIs(t, err, token.ErrBadSignature)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Contains(t, err.Error(), "expired")
	assert.Equal(t, token.Kind(""), token.KindOf(assert.AnError))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
