package discovery

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// literal matches a single, double or backtick quoted string and captures its body
const literal = `(?:'((?:[^'\\\n]|\\.)*)'|"((?:[^"\\\n]|\\.)*)"|` + "`" + `((?:[^` + "`" + `\\]|\\.)*)` + "`" + `)`

var (
	// it('name', ...), test("name"), it.only(`name`), specify('name')
	// A leading "." is excluded so calls like /re/.test('x') are not picked up.
	testDeclPattern = regexp.MustCompile(`(?:^|[^.\w$])(?:it|test|specify)(?:\.(?:only|skip))?\s*\(\s*` + literal)

	// describe('name', ...), context("name"), suite(`name`)
	suiteDeclPattern = regexp.MustCompile(`(?:^|[^.\w$])(?:describe|context|suite)(?:\.(?:only|skip))?\s*\(\s*` + literal)

	// a block comment followed by nothing but whitespace and then a suite declaration
	suiteDocPattern = regexp.MustCompile(`/\*([^*]*\*+(?:[^/*][^*]*\*+)*)/\s*(?:describe|context|suite)(?:\.(?:only|skip))?\s*\(`)

	unescaper = strings.NewReplacer(`\'`, `'`, `\"`, `"`, "\\`", "`", `\\`, `\`)
)

// SpecFile is the textual scan of one spec file
type SpecFile struct {
	Suites      []string
	Tests       []string
	Description string
}

// Parser parses spec files to extract declared suites and tests
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindTestCases finds all declared test names in a spec file, in document order
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	spec, err := p.ParseFile(filePath)
	if err != nil {
		return nil, err
	}
	return spec.Tests, nil
}

// ParseFile reads and scans a spec file
func (p *Parser) ParseFile(filePath string) (SpecFile, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return SpecFile{}, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	return p.Parse(string(content)), nil
}

// Parse scans spec source text. Duplicate test names are kept, each
// occurrence is a separate declaration.
func (p *Parser) Parse(content string) SpecFile {
	spec := SpecFile{
		Suites: findLiterals(suiteDeclPattern, content),
		Tests:  findLiterals(testDeclPattern, content),
	}
	spec.Description = p.FindDescription(content, spec.Suites)
	return spec
}

// FindDescription returns the cleaned doc comment in front of the first
// suite declaration, or a generated fallback.
func (p *Parser) FindDescription(content string, suites []string) string {
	if match := suiteDocPattern.FindStringSubmatch(content); match != nil {
		if text := cleanComment(match[1]); text != "" {
			return text
		}
	}
	if len(suites) > 0 && suites[0] != "" {
		return "Tests for " + suites[0]
	}
	return "No description available"
}

func findLiterals(pattern *regexp.Regexp, content string) []string {
	var names []string
	for _, m := range pattern.FindAllStringSubmatchIndex(content, -1) {
		// groups 1..3 are the single, double and backtick bodies
		for g := 1; g <= 3; g++ {
			start, end := m[2*g], m[2*g+1]
			if start >= 0 {
				names = append(names, unescaper.Replace(content[start:end]))
				break
			}
		}
	}
	return names
}

// cleanComment strips comment decoration and JSDoc tags, joining the text into one line
func cleanComment(body string) string {
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
