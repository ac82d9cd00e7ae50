package keys

import (
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyPair is the immutable signing key pair shared by the token codec.
type KeyPair struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	keyID      string
}

// NewKeyPair validates an already parsed key pair.
func NewKeyPair(priv *rsa.PrivateKey, pub *rsa.PublicKey) (*KeyPair, error) {
	if priv == nil || pub == nil {
		return nil, newKeyLoadError(ReasonInvalidKeySpec, "", errors.New("key pair requires both halves"))
	}
	if priv.N.BitLen() < MinRSABits {
		return nil, newKeyLoadError(ReasonUnsupportedAlgorithm, "",
			fmt.Errorf("RSA modulus is %d bits, need at least %d", priv.N.BitLen(), MinRSABits))
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, newKeyLoadError(ReasonInvalidKeySpec, "", errors.New("public key does not match private key"))
	}
	return newKeyPair(priv, pub, "")
}

func newKeyPair(priv *rsa.PrivateKey, pub *rsa.PublicKey, location string) (*KeyPair, error) {
	kid, err := thumbprint(pub)
	if err != nil {
		return nil, newKeyLoadError(ReasonInvalidKeySpec, location, err)
	}
	return &KeyPair{privateKey: priv, publicKey: pub, keyID: kid}, nil
}

// PrivateKey returns the signing key.
func (kp *KeyPair) PrivateKey() *rsa.PrivateKey { return kp.privateKey }

// PublicKey returns the verification key.
func (kp *KeyPair) PublicKey() *rsa.PublicKey { return kp.publicKey }

// KeyID is the RFC 7638 SHA-256 thumbprint of the public key, base64url encoded.
func (kp *KeyPair) KeyID() string { return kp.keyID }

// PublicJWKS publishes the verification key as a JWK Set so that other
// services can verify tokens without sharing PEM files.
func (kp *KeyPair) PublicJWKS() (jwk.Set, error) {
	key, err := jwk.Import(kp.publicKey)
	if err != nil {
		return nil, fmt.Errorf("import public key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, kp.keyID); err != nil {
		return nil, fmt.Errorf("set kid: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("set alg: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("set use: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, fmt.Errorf("add key to set: %w", err)
	}
	return set, nil
}

func thumbprint(pub *rsa.PublicKey) (string, error) {
	key, err := jwk.Import(pub)
	if err != nil {
		return "", fmt.Errorf("import public key: %w", err)
	}
	sum, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("compute thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum), nil
}
