package discovery

import (
	"path/filepath"
	"strings"

	"specdash/internal/domain"
)

// Filter filters spec files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps spec files whose file name or suite id matches pattern.
// Patterns may use * and ? wildcards ("*cart*", "login.cy.js"); a pattern
// without wildcards is a case-insensitive substring match.
func (f *Filter) FilterByName(specs []string, pattern string) []string {
	if pattern == "" {
		return specs
	}

	pattern = strings.ToLower(pattern)
	wildcard := strings.ContainsAny(pattern, "*?")

	var filtered []string
	for _, spec := range specs {
		candidates := []string{
			strings.ToLower(filepath.Base(spec)),
			strings.ToLower(domain.SuiteID(spec)),
		}
		for _, name := range candidates {
			if matchName(name, pattern, wildcard) {
				filtered = append(filtered, spec)
				break
			}
		}
	}
	return filtered
}

func matchName(name, pattern string, wildcard bool) bool {
	if !wildcard {
		return strings.Contains(name, pattern)
	}
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}
	// "*pay*ment*" style patterns: every literal piece must appear, in order
	rest := name
	found := false
	for _, part := range strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' }) {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		found = true
	}
	return found
}
