// Package token signs and verifies the RS256 JWTs carried by API requests.
//
// A Codec holds the process key pair and issues two token types that share
// one claim schema:
//   - access tokens, short lived, accepted on protected API routes
//   - refresh tokens, long lived, accepted only by the refresh endpoint
//
// Decode never trusts a claim before the signature verifies and never lets
// the token header choose the verification algorithm. Every failure is a
// *TokenError whose Kind is meant for logs and metrics, not for clients.
package token
