package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specdash/internal/domain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleSuites() []domain.TestSuiteDescriptor {
	return []domain.TestSuiteDescriptor{
		{ID: "cart", Name: "Cart", File: "cart.cy.js", Tests: []domain.TestDescriptor{
			{ID: "cart-0", Name: "adds item", Category: domain.CategoryShoppingCart},
			{ID: "cart-1", Name: "removes item", Category: domain.CategoryShoppingCart},
		}},
		{ID: "login", Name: "Login", File: "login.cy.js"},
	}
}

func sampleRun() domain.TestRun {
	return domain.TestRun{
		ID:      "run-1",
		Status:  domain.StatusCompleted,
		Summary: domain.Summary{Total: 3, Passed: 2, Failed: 1, Duration: 1500},
		Suites: map[string]domain.SuiteResult{
			"cart": {Name: "Cart", File: "cart.cy.js", Passed: 1, Failed: 1, Tests: map[string]domain.TestResult{
				"cart-0": {Name: "adds item", Status: domain.TestPassed, Duration: 1000},
				"cart-1": {Name: "removes item", Status: domain.TestFailed, Duration: 300, Error: &domain.ErrorDetail{Message: "boom"}},
			}},
			"login": {Name: "Login", File: "login.cy.js", Passed: 1, Tests: map[string]domain.TestResult{
				"login-0": {Name: "logs in", Status: domain.TestPassed, Duration: 200},
			}},
		},
	}
}

func TestFormatter_PrintSuiteList(t *testing.T) {
	t.Run("files only", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterWithWriter(&buf).PrintSuiteList(sampleSuites(), false, map[string]struct{}{"login": {}})

		out := buf.String()
		assert.Contains(t, out, "Found 2 test suite(s):")
		assert.Contains(t, out, "├── cart.cy.js (2 tests)\n")
		assert.Contains(t, out, "└── login.cy.js (0 tests) [F]\n")
	})

	t.Run("with tests", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterWithWriter(&buf).PrintSuiteList(sampleSuites(), true, nil)

		out := buf.String()
		assert.Contains(t, out, "Found 2 test suite(s) with 2 test case(s):")
		assert.Contains(t, out, "│   ├── adds item (Shopping Cart)")
		assert.Contains(t, out, "│   └── removes item (Shopping Cart)")
		assert.Contains(t, out, "    └── (no test cases found)")
	})
}

func TestFormatter_RunTable(t *testing.T) {
	out := NewFormatterWithWriter(&bytes.Buffer{}).RunTable(sampleRun())

	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "cart.cy.js")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "1.5s")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "TOTAL") {
			assert.Contains(t, line, "1.5s")
			assert.NotContains(t, line, "1.5S")
		}
	}
	assert.Less(t, strings.Index(out, "cart.cy.js"), strings.Index(out, "login.cy.js"))
}

func TestFormatter_PrintRunSummary(t *testing.T) {
	t.Run("failures are listed", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterWithWriter(&buf).PrintRunSummary(sampleRun())
		out := buf.String()
		assert.Contains(t, out, "✗ 1 test(s) failed in 1 suite(s)")
		assert.Contains(t, out, "└── cart.cy.js\n    └── removes item")
	})

	t.Run("error run", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterWithWriter(&buf).PrintRunSummary(domain.TestRun{ID: "r", Status: domain.StatusError, Message: "runner exited with code 2"})
		assert.Contains(t, buf.String(), "Run ended with an error: runner exited with code 2")
	})

	t.Run("all passed", func(t *testing.T) {
		run := sampleRun()
		run.Summary = domain.Summary{Total: 1, Passed: 1}
		var buf bytes.Buffer
		NewFormatterWithWriter(&buf).PrintRunSummary(run)
		assert.Contains(t, buf.String(), "All tests passed!")
	})
}

func TestSuitesWithFailures(t *testing.T) {
	assert.Nil(t, SuitesWithFailures(nil))

	got := SuitesWithFailures(&domain.RunOutput{Details: []domain.TestFailure{
		{SuiteID: "cart"},
		{SuiteID: "login", Resolved: true},
	}})
	assert.Equal(t, map[string]struct{}{"cart": {}}, got)
}

func TestToggleResolved(t *testing.T) {
	results := &domain.RunOutput{Details: []domain.TestFailure{{TestID: "a-0"}, {TestID: "a-1"}}}

	require.True(t, ToggleResolved(results, 1))
	assert.True(t, results.Details[1].Resolved)
	assert.Equal(t, 1, CountUnresolved(results))

	require.True(t, ToggleResolved(results, 1))
	assert.Equal(t, 2, CountUnresolved(results))

	assert.False(t, ToggleResolved(results, 5))
	assert.False(t, ToggleResolved(results, -1))
}

func TestFormatFailureDetails(t *testing.T) {
	stack := make([]string, 12)
	for i := range stack {
		stack[i] = "at line"
	}
	out := formatFailureDetails(domain.TestFailure{
		FullTitle: "Cart removes item",
		FilePath:  "cart.cy.js",
		Category:  domain.CategoryShoppingCart,
		Message:   "expected [1] to be empty",
		Stack:     stack,
	})

	assert.Contains(t, out, "Test: Cart removes item")
	assert.Contains(t, out, "Category: Shopping Cart")
	assert.Contains(t, out, "expected [1[] to be empty")
	assert.Equal(t, maxStackLines, strings.Count(out, "  at line"))
	assert.Contains(t, out, "... and 2 more lines")
}

func TestFormatFailureStats(t *testing.T) {
	out := formatFailureStats(domain.TestFailure{TestID: "cart-1"}, 3)
	assert.Contains(t, out, "Unknown path")
	assert.Contains(t, out, "Test 3")
	assert.Contains(t, out, "cart-1")
}

func TestProgressBar_ObserveLine(t *testing.T) {
	p := NewProgressBar()
	lines := []string{
		"  Login",
		"    ✓ accepts valid credentials (150ms)",
		"    1) rejects bad password",
		"    ✓ logs out",
		"stderr noise",
		"  2 passing (3s)",
		"  1 failing",
		"  1) Login",
	}
	for _, line := range lines {
		p.ObserveLine("stdout", line)
	}
	p.ObserveLine("stderr", "    ✓ not counted")
	p.Finish()

	passed, failed := p.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
}
