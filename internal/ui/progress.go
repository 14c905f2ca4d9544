package ui

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	// runner reporters print "✓ name" for passes and "1) name" for failures
	passedLinePattern = regexp.MustCompile(`^\s*(?:✓|√|✔)\s+\S`)
	failedLinePattern = regexp.MustCompile(`^\s*\d+\)\s+\S`)
)

// ProgressBar shows an indeterminate spinner with live pass/fail counts
// while a run is in progress
type ProgressBar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	passed  int
	failed  int
	summary bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar() *ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// ObserveLine updates the counts from one line of runner output. Safe for
// concurrent use by the stdout and stderr pumps.
func (p *ProgressBar) ObserveLine(stream, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// the closing summary re-lists failures; stop counting there
	if p.summary || stream != "stdout" {
		return
	}
	switch {
	case passedLinePattern.MatchString(line):
		p.passed++
	case failedLinePattern.MatchString(line):
		p.failed++
	default:
		if isSummaryLine(line) {
			p.summary = true
		}
		_ = p.bar.Add(0)
		return
	}
	p.bar.Describe(describe(p.passed, p.failed))
	_ = p.bar.Add(1)
}

// Counts returns the counts observed so far
func (p *ProgressBar) Counts() (passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passed, p.failed
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

var summaryLinePattern = regexp.MustCompile(`\(Run Finished\)|^\s*\d+ passing\b`)

func isSummaryLine(line string) bool {
	return summaryLinePattern.MatchString(line)
}
