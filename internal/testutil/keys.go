// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sobhit1/feed-chain/internal/keys"
)

var (
	keyOnce    sync.Once
	primaryKey *rsa.PrivateKey
	otherKey   *rsa.PrivateKey
	keyErr     error
)

func generate() {
	primaryKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	if keyErr != nil {
		return
	}
	otherKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
}

// RSAKey returns a process-wide 2048-bit test key.
func RSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(generate)
	require.NoError(t, keyErr)
	return primaryKey
}

// OtherRSAKey returns a second key unrelated to RSAKey.
func OtherRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(generate)
	require.NoError(t, keyErr)
	return otherKey
}

// KeyPair wraps RSAKey in a validated *keys.KeyPair.
func KeyPair(t testing.TB) *keys.KeyPair {
	t.Helper()
	priv := RSAKey(t)
	kp, err := keys.NewKeyPair(priv, &priv.PublicKey)
	require.NoError(t, err)
	return kp
}

// PrivatePEM encodes key as PKCS#8 "PRIVATE KEY" PEM.
func PrivatePEM(t testing.TB, key any) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// PublicPEM encodes key as X.509 "PUBLIC KEY" PEM.
func PublicPEM(t testing.TB, key any) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// WriteFile writes data into a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// WriteKeyFiles writes both halves of RSAKey and returns file: locations.
func WriteKeyFiles(t testing.TB) (privateLocation, publicLocation string) {
	t.Helper()
	priv := RSAKey(t)
	privPath := WriteFile(t, "private.pem", PrivatePEM(t, priv))
	pubPath := WriteFile(t, "public.pem", PublicPEM(t, &priv.PublicKey))
	return "file:" + privPath, "file:" + pubPath
}
