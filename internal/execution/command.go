package execution

import (
	"fmt"
	"os"
	"strings"

	"specdash/internal/config"
	"specdash/internal/domain"
)

// Request is what a caller asks the executor to run
type Request struct {
	Suites  []string `json:"suites"`
	Browser string   `json:"browser"`
	Mode    string   `json:"mode"`
}

// Config returns the run configuration recorded on the run
func (r Request) Config() domain.RunConfig {
	return domain.RunConfig{Suites: r.Suites, Browser: r.Browser, Mode: r.Mode}
}

// Selective reports whether the run is restricted to the requested suites
func (r Request) Selective() bool {
	return len(r.Suites) > 0 && r.Mode != domain.ModeAll
}

// Command is a fully derived runner invocation
type Command struct {
	Path       string
	Args       []string
	Dir        string
	Env        []string
	ReportPath string
}

// String renders the command line for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// CommandBuilder derives runner command lines from the configuration
type CommandBuilder struct {
	config *config.Config
}

// NewCommandBuilder creates a new CommandBuilder
func NewCommandBuilder(cfg *config.Config) *CommandBuilder {
	return &CommandBuilder{config: cfg}
}

// Build derives the command for one run. specs are the resolved spec file
// paths; they are only passed on when the request is selective.
func (b *CommandBuilder) Build(runID string, req Request, specs []string) Command {
	base := b.config.RunnerCommand
	reportPath := b.config.GetReportPath(runID)

	args := append([]string{}, base[1:]...)
	if req.Browser != "" {
		args = append(args, "--browser", req.Browser)
	}
	if req.Selective() && len(specs) > 0 {
		args = append(args, "--spec", strings.Join(specs, ","))
	}
	if b.config.ReporterOptions {
		args = append(args, "--reporter-options", "output="+reportPath)
	}

	env := os.Environ()
	env = append(env, fmt.Sprintf("%s=%s", config.ReportPathEnv, reportPath))

	return Command{
		Path:       base[0],
		Args:       args,
		Dir:        b.config.ProjectPath,
		Env:        env,
		ReportPath: reportPath,
	}
}
