package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		text     string
		expected string
	}{
		{name: "sql injection spec", file: "sql-injection.spec", text: "should test basic SQL injection", expected: CategorySecurity},
		{name: "user management spec", file: "user-management.spec", text: "should list users", expected: CategoryUserManagement},
		{name: "login beats everything", file: "login.cy.js", text: "should add product to cart", expected: CategoryAuthentication},
		{name: "auth keyword", file: "oauth-flow.cy.js", text: "redirects", expected: CategoryAuthentication},
		{name: "cart before api and security", file: "api-cart-security.cy.js", text: "does things", expected: CategoryShoppingCart},
		{name: "basket alias", file: "basket.cy.js", text: "", expected: CategoryShoppingCart},
		{name: "product", file: "catalog.cy.js", text: "shows product details", expected: CategoryProducts},
		{name: "api before security", file: "api-security.cy.js", text: "", expected: CategoryAPI},
		{name: "xss", file: "forms.cy.js", text: "rejects XSS payloads", expected: CategorySecurity},
		{name: "checkout", file: "checkout.cy.js", text: "pays", expected: CategoryCheckout},
		{name: "fallback", file: "homepage.cy.js", text: "renders banner", expected: CategoryFunctional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.file, tt.text))
		})
	}
}

func TestSuiteID(t *testing.T) {
	tests := map[string]string{
		"login.cy.js":                       "login",
		"cypress/e2e/user-management.cy.ts": "user-management",
		"sql-injection.spec.js":             "sql-injection",
		"/abs/path/checkout.test.js":        "checkout",
		"plain.js":                          "plain",
		"notes.txt":                         "notes",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, SuiteID(in), in)
	}
}

func TestIsSpecFile(t *testing.T) {
	assert.True(t, IsSpecFile("login.cy.js"))
	assert.True(t, IsSpecFile("dir/Cart.SPEC.TS"))
	assert.False(t, IsSpecFile("README.md"))
	assert.False(t, IsSpecFile(".js"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "User Management", DisplayName("user-management"))
	assert.Equal(t, "Sql Injection", DisplayName("sql_injection"))
	assert.Equal(t, "Login", DisplayName("login"))
	assert.Equal(t, "", DisplayName(""))
}

func TestTestRun_CloneIsDeep(t *testing.T) {
	end := time.Now()
	run := TestRun{
		ID:      "r1",
		EndTime: &end,
		Config:  RunConfig{Suites: []string{"login"}},
		Suites: map[string]SuiteResult{
			"login": {Tests: map[string]TestResult{
				"login-0": {Name: "X", Error: &ErrorDetail{Message: "boom"}},
			}},
		},
	}

	clone := run.Clone()
	clone.Config.Suites[0] = "changed"
	*clone.EndTime = end.Add(time.Hour)
	clone.Suites["login"].Tests["login-0"].Error.Message = "changed"
	delete(clone.Suites, "login")

	assert.Equal(t, "login", run.Config.Suites[0])
	assert.Equal(t, end, *run.EndTime)
	require.Contains(t, run.Suites, "login")
	assert.Equal(t, "boom", run.Suites["login"].Tests["login-0"].Error.Message)
}

func TestTestRun_Failures(t *testing.T) {
	run := TestRun{Suites: map[string]SuiteResult{
		"cart": {File: "cart.cy.js", Tests: map[string]TestResult{
			"cart-0": {Name: "adds", Status: TestPassed},
			"cart-1": {Name: "removes", Status: TestFailed, Error: &ErrorDetail{Message: "nope", Stack: "a\nb\n"}},
		}},
		"api": {File: "api.cy.js", Tests: map[string]TestResult{
			"api-0": {Name: "get", Status: TestFailed},
		}},
	}}

	failures := run.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "api-0", failures[0].TestID)
	assert.Equal(t, "cart-1", failures[1].TestID)
	assert.Equal(t, "cart.cy.js", failures[1].FilePath)
	assert.Equal(t, []string{"a", "b"}, failures[1].Stack)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
}
