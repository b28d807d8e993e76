package ignore

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// FileName is the per-directory ignore file read from the root of the tree being uploaded.
const FileName = ".ftpignore"

// DefaultPatterns are always excluded.
var DefaultPatterns = []string{
	".git",
	".git/**",
	"node_modules",
	"node_modules/**",
	".next",
	".next/**",
	"*.log",
	".DS_Store",
	"Thumbs.db",
	"__pycache__",
	"__pycache__/**",
}

// Defaults returns a copy of DefaultPatterns.
func Defaults() []string {
	out := make([]string, len(DefaultPatterns))
	copy(out, DefaultPatterns)
	return out
}

var braceEscaper = strings.NewReplacer("{", `\{`, "}", `\}`)

type rule struct {
	pattern string
	bare    string
	glob    glob.Glob // nil when the pattern does not compile; compared literally then
}

func compile(pattern string) rule {
	r := rule{pattern: pattern, bare: strings.TrimRight(pattern, "/")}
	// No separators: "*" crosses path segments like fnmatch does. Braces are
	// literal in fnmatch, so they are escaped rather than read as alternation.
	if g, err := glob.Compile(braceEscaper.Replace(pattern)); err == nil {
		r.glob = g
	}
	return r
}

func (r rule) match(p, first string) bool {
	if r.glob != nil {
		if r.glob.Match(p) {
			return true
		}
	} else if r.pattern == p {
		return true
	}
	return r.bare == first
}

// Matcher is a compiled pattern set. The zero value matches nothing.
type Matcher struct {
	rules []rule
}

// New compiles patterns into a Matcher.
func New(patterns []string) *Matcher {
	m := &Matcher{rules: make([]rule, 0, len(patterns))}
	for _, p := range patterns {
		m.rules = append(m.rules, compile(p))
	}
	return m
}

// Patterns returns the source patterns in order.
func (m *Matcher) Patterns() []string {
	out := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r.pattern)
	}
	return out
}

// Match reports whether the relative path rel is excluded.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	p := normalize(rel)
	first, _, _ := strings.Cut(p, "/")
	for _, r := range m.rules {
		if r.match(p, first) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether rel matches any of patterns.
func ShouldIgnore(rel string, patterns []string) bool {
	return New(patterns).Match(rel)
}

func normalize(rel string) string {
	return filepath.ToSlash(rel)
}
