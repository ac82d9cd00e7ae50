// Package policy decides which request paths may be served without a token
// and which token types a route accepts.
//
// Public routes are declared as an allow-list of patterns, compiled once at
// startup:
//   - exact literals such as /error
//   - prefix patterns ending in /** such as /api/v1/auth/**
//   - single-segment wildcards such as /login/oauth2/code/*
//
// Everything else is protected. Paths that cannot be classified safely
// (relative, containing dot segments or repeated slashes) are protected too.
//
// The policy is stateless: there is no session store, every protected
// request carries its own bearer token.
package policy
