package static

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIgnorePatterns keeps VCS metadata, OS droppings and secrets private.
var DefaultIgnorePatterns = []IgnoreRule{
	Literal(".DS_Store"),
	Literal(".git"),
	Literal(".env"),
}

// IgnoreRule is either a literal substring or a regular expression tested
// against the slash-separated file name relative to the asset root, e.g. "/img/a.png".
type IgnoreRule struct {
	literal string
	pattern *regexp.Regexp
}

// Literal matches any name containing s anywhere, not only as a whole
// path segment: Literal("a.png") also hides "/x/data.png.bak".
func Literal(s string) IgnoreRule {
	return IgnoreRule{literal: s}
}

// Pattern matches names the expression finds a match in.
func Pattern(re *regexp.Regexp) IgnoreRule {
	return IgnoreRule{pattern: re}
}

// ParseIgnoreRule reads the textual form used in configuration: "/expr/"
// becomes a Pattern, anything else a Literal.
func ParseIgnoreRule(s string) (IgnoreRule, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return IgnoreRule{}, fmt.Errorf("%w: %q: %w", ErrInvalidIgnoreRule, s, err)
		}
		return Pattern(re), nil
	}
	if s == "" {
		return IgnoreRule{}, fmt.Errorf("%w: empty literal", ErrInvalidIgnoreRule)
	}
	return Literal(s), nil
}

// Match reports whether name is covered by the rule.
func (r IgnoreRule) Match(name string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(name)
	}
	return r.literal != "" && strings.Contains(name, r.literal)
}

func (r IgnoreRule) String() string {
	if r.pattern != nil {
		return "/" + r.pattern.String() + "/"
	}
	return r.literal
}

type ignoreMatcher struct {
	root  string
	rules []IgnoreRule
	empty bool
}

func newIgnoreMatcher(root string, rules []IgnoreRule) ignoreMatcher {
	return ignoreMatcher{root: root, rules: rules, empty: len(rules) == 0}
}

// Match reports whether name must never be served. Rules see name relative
// to the asset root with a leading slash, so directories above the root
// never trigger a rule.
func (m ignoreMatcher) Match(name string) bool {
	if m.empty {
		return false
	}
	rel := "/" + relativeName(m.root, name)
	for _, r := range m.rules {
		if r.Match(rel) {
			return true
		}
	}
	return false
}
