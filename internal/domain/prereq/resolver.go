// Package prereq turns free-text prerequisite descriptions into references to
// catalog skills.
package prereq

import (
	"regexp"
	"strings"
)

var connectorPattern = regexp.MustCompile(` and |&|\+|/|;`)

// Parse lower-cases a prerequisite description and splits it on " and ", "&",
// "+", "/", ";" and commas. An empty description yields no tokens, meaning the
// skill is a root.
func Parse(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	text = connectorPattern.ReplaceAllString(strings.ToLower(text), ",")
	parts := strings.Split(text, ",")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// StripName lower-cases a skill name and drops any parenthetical suffix, so
// "React (Hooks)" becomes "react".
func StripName(name string) string {
	name = strings.ToLower(name)
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// Overlaps reports whether either string contains the other.
func Overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Resolver matches prerequisite tokens against catalog skill names.
type Resolver struct {
	stripped []string
}

// NewResolver takes skill names in catalog order.
func NewResolver(names []string) *Resolver {
	r := &Resolver{stripped: make([]string, len(names))}
	for i, n := range names {
		r.stripped[i] = StripName(n)
	}
	return r
}

// Match returns the id of the first skill, in catalog order, whose stripped
// name equals the token or overlaps it as a substring in either direction.
// Short tokens such as "c" can match unrelated skills ("css"); that noise is
// accepted and not filtered here. Skills whose stripped name is empty never
// match.
func (r *Resolver) Match(token string) (int, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return -1, false
	}
	for i, s := range r.stripped {
		if s == "" {
			continue
		}
		if token == s || Overlaps(token, s) {
			return i, true
		}
	}
	return -1, false
}

// MatchName is Match returning the stripped name of the matched skill.
func (r *Resolver) MatchName(token string) (string, bool) {
	i, ok := r.Match(token)
	if !ok {
		return "", false
	}
	return r.stripped[i], true
}

func (r *Resolver) Stripped(id int) string { return r.stripped[id] }
