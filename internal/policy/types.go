package policy

// Classification is the outcome of matching a path against the policy.
// The zero value is Protected.
type Classification int

const (
	Protected Classification = iota
	Public
)

func (c Classification) String() string {
	if c == Public {
		return "public"
	}
	return "protected"
}

// PatternKind tells how a public pattern is matched.
type PatternKind string

const (
	PatternExact  PatternKind = "exact"
	PatternPrefix PatternKind = "prefix"
	PatternGlob   PatternKind = "glob"
)

// Match explains a classification: which pattern, if any, made a path public.
type Match struct {
	Classification Classification
	Pattern        string
	Kind           PatternKind
}

// DefaultPublicPatterns is the built-in allow-list.
func DefaultPublicPatterns() []string {
	return []string{
		"/error",
		"/healthz",
		"/readyz",
		"/login/**",
		"/api/v1/auth/**",
		"/login/oauth2/code/*",
		"/.well-known/jwks.json",
	}
}
