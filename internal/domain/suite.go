package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// SpecExtensions are the recognized spec file suffixes, longest first so that
// "login.cy.js" strips to "login" rather than "login.cy".
var SpecExtensions = []string{
	".cy.ts",
	".cy.js",
	".spec.ts",
	".spec.js",
	".test.ts",
	".test.js",
	".e2e.js",
	".ts",
	".js",
}

// TestDescriptor is one declared test case within a spec file
type TestDescriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// TestSuiteDescriptor is the static description of one spec file
type TestSuiteDescriptor struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	File        string           `json:"file"`
	Description string           `json:"description"`
	Tests       []TestDescriptor `json:"tests"`
}

// IsSpecFile reports whether the file name carries a recognized spec extension
func IsSpecFile(name string) bool {
	return specExtension(filepath.Base(name)) != ""
}

func specExtension(base string) string {
	lower := strings.ToLower(base)
	for _, ext := range SpecExtensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return base[len(base)-len(ext):]
		}
	}
	return ""
}

// SuiteID derives the suite identifier from a spec file path: the base name
// with the recognized extension stripped. Unknown extensions fall back to
// stripping the last extension only.
func SuiteID(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	if ext := specExtension(base); ext != "" {
		return strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TestID builds the composite "<suiteId>-<index>" identifier
func TestID(suiteID string, index int) string {
	return fmt.Sprintf("%s-%d", suiteID, index)
}

// DisplayName turns "user-management" into "User Management"
func DisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
