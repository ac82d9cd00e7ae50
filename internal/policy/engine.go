package policy

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

type globPattern struct {
	raw     string
	matcher glob.Glob
}

// RoutePolicy classifies request paths. It is read-only after construction
// and safe for concurrent use.
type RoutePolicy struct {
	exact    map[string]struct{}
	prefixes []string
	globs    []globPattern
	patterns []string
}

// NewRoutePolicy compiles the public patterns.
func NewRoutePolicy(patterns ...string) (*RoutePolicy, error) {
	p := &RoutePolicy{exact: make(map[string]struct{})}

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("public pattern %q must start with /", raw)
		}

		switch {
		case strings.HasSuffix(pattern, "/**"):
			prefix := strings.TrimSuffix(pattern, "/**")
			if strings.ContainsAny(prefix, "*?[{") {
				return nil, fmt.Errorf("public pattern %q: wildcards are not allowed before /**", raw)
			}
			p.prefixes = append(p.prefixes, prefix)
		case strings.Contains(pattern, "**"):
			return nil, fmt.Errorf("public pattern %q: ** is only allowed as the last segment", raw)
		case strings.Contains(pattern, "*"):
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, fmt.Errorf("public pattern %q: %w", raw, err)
			}
			p.globs = append(p.globs, globPattern{raw: pattern, matcher: g})
		default:
			p.exact[pattern] = struct{}{}
		}
		p.patterns = append(p.patterns, pattern)
	}

	return p, nil
}

// MustDefault builds the policy from DefaultPublicPatterns.
func MustDefault() *RoutePolicy {
	p, err := NewRoutePolicy(DefaultPublicPatterns()...)
	if err != nil {
		panic(err)
	}
	return p
}

// Patterns returns the compiled public patterns in declaration order.
func (p *RoutePolicy) Patterns() []string {
	out := make([]string, len(p.patterns))
	copy(out, p.patterns)
	return out
}

// Classify reports whether requestPath is public or protected.
func (p *RoutePolicy) Classify(requestPath string) Classification {
	return p.Explain(requestPath).Classification
}

// Explain classifies requestPath and names the pattern that matched.
// Exact literals are tried first, then prefixes, then wildcards.
func (p *RoutePolicy) Explain(requestPath string) Match {
	candidate, ok := canonical(requestPath)
	if !ok {
		return Match{Classification: Protected}
	}

	if _, found := p.exact[candidate]; found {
		return Match{Classification: Public, Pattern: candidate, Kind: PatternExact}
	}
	for _, prefix := range p.prefixes {
		if candidate == prefix || strings.HasPrefix(candidate, prefix+"/") {
			return Match{Classification: Public, Pattern: prefix + "/**", Kind: PatternPrefix}
		}
	}
	for _, g := range p.globs {
		if g.matcher.Match(candidate) {
			return Match{Classification: Public, Pattern: g.raw, Kind: PatternGlob}
		}
	}
	return Match{Classification: Protected}
}

// canonical accepts a single trailing slash and rejects anything path.Clean
// would rewrite.
func canonical(requestPath string) (string, bool) {
	if requestPath == "" || requestPath[0] != '/' {
		return "", false
	}
	candidate := requestPath
	if len(candidate) > 1 && strings.HasSuffix(candidate, "/") {
		candidate = candidate[:len(candidate)-1]
	}
	if path.Clean(candidate) != candidate {
		return "", false
	}
	return candidate, true
}
