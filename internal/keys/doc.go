// Package keys loads the RSA key pair used to sign and verify access tokens.
//
// Key material is read once at startup from PEM resources:
//   - file:<path> or a bare filesystem path
//   - env:<VAR> for PEM text held in an environment variable
//
// Private keys must be PKCS#8, public keys X.509 SubjectPublicKeyInfo, both
// RSA with a modulus of at least 2048 bits. Any failure is returned as a
// *KeyLoadError and is meant to stop the process.
package keys
