package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
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

const projectConfig = `spec_dir: e2e
runner_command: ["sh", "runner.sh"]
log_level: error
`

const passingRunner = `cat > "$SPECDASH_REPORT_PATH" <<'JSON'
{"results":[{"file":"e2e/login.cy.js","suites":[{"title":"Login","tests":[
{"title":"signs in","fullTitle":"Login signs in","pass":true,"fail":false,"duration":120}]}]}]}
JSON
`

const failingRunner = `cat > "$SPECDASH_REPORT_PATH" <<'JSON'
{"results":[{"file":"e2e/login.cy.js","suites":[{"title":"Login","tests":[
{"title":"signs in","fullTitle":"Login signs in","pass":true,"fail":false,"duration":120},
{"title":"rejects bad password","fullTitle":"Login rejects bad password","pass":false,"fail":true,"duration":80,"err":{"message":"expected error banner"}}]}]}]}
JSON
`

func newProject(t *testing.T, runner string) string {
	t.Helper()
	project := t.TempDir()
	specDir := filepath.Join(project, "e2e")
	require.NoError(t, os.MkdirAll(specDir, 0755))

	specs := map[string]string{
		"login.cy.js": "describe('Login', () => {\n  it('signs in', () => {})\n  it('rejects bad password', () => {})\n})\n",
		"cart.cy.js":  "describe('Cart', () => {\n  it('adds an item', () => {})\n})\n",
	}
	for name, body := range specs {
		require.NoError(t, os.WriteFile(filepath.Join(specDir, name), []byte(body), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(project, "specdash.yaml"), []byte(projectConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, "runner.sh"), []byte(runner), 0755))
	return project
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func loadSaved(t *testing.T, project string) domain.RunOutput {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(project, "storage", "last-run.json"))
	require.NoError(t, err)
	var output domain.RunOutput
	require.NoError(t, json.Unmarshal(data, &output))
	return output
}

func TestListCommand(t *testing.T) {
	project := newProject(t, passingRunner)

	out, err := execute(t, "list", "--project", project)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 test suite(s)")
	assert.Contains(t, out, "login.cy.js")
	assert.Contains(t, out, "cart.cy.js")
}

func TestListCommandWithTestsAndFilter(t *testing.T) {
	project := newProject(t, passingRunner)

	out, err := execute(t, "list", "--project", project, "--tests", "--filter", "login*")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 test suite(s) with 2 test case(s)")
	assert.Contains(t, out, "signs in")
	assert.NotContains(t, out, "cart.cy.js")
}

func TestListCommandNoMatches(t *testing.T) {
	project := newProject(t, passingRunner)

	out, err := execute(t, "list", "--project", project, "--filter", "*checkout*")
	require.NoError(t, err)
	assert.Contains(t, out, "No test suites found")
}

func TestRunCommandPassing(t *testing.T) {
	project := newProject(t, passingRunner)

	out, err := execute(t, "run", "--project", project)
	require.NoError(t, err)
	assert.Contains(t, out, "All tests passed")

	saved := loadSaved(t, project)
	assert.Equal(t, domain.StatusCompleted, saved.Meta.Status)
	assert.Equal(t, 1, saved.Meta.TotalTests)
	assert.Equal(t, 1, saved.Meta.PassedTests)
	assert.Empty(t, saved.Details)
}

func TestRunCommandFailing(t *testing.T) {
	project := newProject(t, failingRunner)

	out, err := execute(t, "run", "--project", project, "--suite", "login")
	require.ErrorIs(t, err, ErrTestsFailed)
	assert.Contains(t, out, "1 test(s) failed")
	assert.Contains(t, out, "rejects bad password")

	saved := loadSaved(t, project)
	assert.Equal(t, 1, saved.Meta.FailedTests)
	require.Len(t, saved.Details, 1)
	assert.Equal(t, "expected error banner", saved.Details[0].Message)

	// the failed suite is marked in the listing
	out, err = execute(t, "list", "--project", project)
	require.NoError(t, err)
	assert.Contains(t, out, "[F]")
}

func TestRunCommandRunnerError(t *testing.T) {
	project := newProject(t, "exit 3\n")

	out, err := execute(t, "run", "--project", project)
	require.ErrorIs(t, err, ErrTestsFailed)
	assert.Contains(t, out, "runner exited with code 3")

	saved := loadSaved(t, project)
	assert.Equal(t, domain.StatusError, saved.Meta.Status)
}

func TestRunCommandUnknownSuite(t *testing.T) {
	project := newProject(t, passingRunner)

	_, err := execute(t, "run", "--project", project, "--suite", "checkout")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTestsFailed)
}

func TestFailuresCommandWithoutSavedRun(t *testing.T) {
	project := newProject(t, passingRunner)

	_, err := execute(t, "failures", "--project", project)
	assert.Error(t, err)
}

func TestMissingExplicitConfig(t *testing.T) {
	project := newProject(t, passingRunner)

	_, err := execute(t, "list", "--project", project, "--config", filepath.Join(project, "missing.yaml"))
	assert.Error(t, err)
}
