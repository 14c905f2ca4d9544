package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"specdash/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter() *Formatter {
	return &Formatter{out: os.Stdout}
}

// NewFormatterWithWriter creates a Formatter writing to w
func NewFormatterWithWriter(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)
)

// PrintSuiteList prints the discovered suites, optionally with their test cases.
// failedSuites is optional; suites in it are marked with [F] (from the last run).
func (f *Formatter) PrintSuiteList(suites []domain.TestSuiteDescriptor, showTests bool, failedSuites map[string]struct{}) {
	if !showTests {
		green.Fprintf(f.out, "Found %d test suite(s):\n\n", len(suites))
		for i, suite := range suites {
			connector := "├── "
			if i == len(suites)-1 {
				connector = "└── "
			}
			cyan.Fprintf(f.out, "%s%s", connector, suite.File)
			fmt.Fprintf(f.out, " %s%s\n", gray.Sprintf("(%d tests)", len(suite.Tests)), failMarker(suite.ID, failedSuites))
		}
		return
	}

	green.Fprintf(f.out, "Found %d test suite(s) with %d test case(s):\n\n", len(suites), CountTests(suites))
	for i, suite := range suites {
		isLastSuite := i == len(suites)-1
		connector, childPrefix := "├── ", "│   "
		if isLastSuite {
			connector, childPrefix = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s", connector, suite.Name)
		fmt.Fprintf(f.out, " %s%s\n", gray.Sprintf("[%s]", suite.File), failMarker(suite.ID, failedSuites))

		if len(suite.Tests) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", childPrefix, red.Sprint("(no test cases found)"))
		}
		for j, test := range suite.Tests {
			caseConnector := "├── "
			if j == len(suite.Tests)-1 {
				caseConnector = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s %s\n", childPrefix, caseConnector, yellow.Sprint(test.Name), gray.Sprintf("(%s)", test.Category))
		}

		if !isLastSuite {
			fmt.Fprintln(f.out)
		}
	}
}

func failMarker(suiteID string, failedSuites map[string]struct{}) string {
	if _, ok := failedSuites[suiteID]; ok {
		return " " + red.Sprint("[F]")
	}
	return ""
}

// CountTests returns the number of declared test cases across suites
func CountTests(suites []domain.TestSuiteDescriptor) int {
	var total int
	for _, s := range suites {
		total += len(s.Tests)
	}
	return total
}

// RunTable renders the per-suite breakdown of a run as a table
func (f *Formatter) RunTable(run domain.TestRun) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(fmt.Sprintf("Run %s", run.ID))
	t.AppendHeader(table.Row{"Suite", "File", "Tests", "Passed", "Failed", "Skipped", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	ids := make([]string, 0, len(run.Suites))
	for id := range run.Suites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		suite := run.Suites[id]
		var duration int64
		for _, test := range suite.Tests {
			duration += test.Duration
		}
		t.AppendRow(table.Row{
			suite.Name,
			suite.File,
			len(suite.Tests),
			suite.Passed,
			suite.Failed,
			suite.Skipped,
			formatMillis(duration),
		})
	}

	switch {
	case run.Status == domain.StatusError || run.Summary.Failed > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case run.Summary.Skipped > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}
	t.Style().Format.Footer = text.FormatDefault

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		run.Summary.Total,
		run.Summary.Passed,
		run.Summary.Failed,
		run.Summary.Skipped,
		formatMillis(run.Summary.Duration),
	})

	t.Render()
	return buf.String()
}

// PrintRunSummary prints the run table followed by the outcome and a tree of failed tests
func (f *Formatter) PrintRunSummary(run domain.TestRun) {
	fmt.Fprintln(f.out)
	fmt.Fprint(f.out, f.RunTable(run))
	fmt.Fprintln(f.out)

	switch {
	case run.Status == domain.StatusError:
		red.Fprintf(f.out, "✗ Run ended with an error: %s\n", run.Message)
	case run.Summary.Failed > 0:
		red.Fprintf(f.out, "✗ %d test(s) failed in %d suite(s)\n", run.Summary.Failed, countFailedSuites(run))
		fmt.Fprintln(f.out)
		f.printFailedTestsTree(run.Failures())
	case run.Summary.Total == 0:
		yellow.Fprintln(f.out, "! Run completed without reporting any tests")
	default:
		green.Fprintln(f.out, "✓ All tests passed!")
	}
}

func countFailedSuites(run domain.TestRun) int {
	var n int
	for _, s := range run.Suites {
		if s.Failed > 0 {
			n++
		}
	}
	return n
}

// printFailedTestsTree prints failed tests grouped by spec file
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	if len(failures) == 0 {
		return
	}

	byFile := make(map[string][]domain.TestFailure)
	var files []string
	for _, failure := range failures {
		if _, ok := byFile[failure.FilePath]; !ok {
			files = append(files, failure.FilePath)
		}
		byFile[failure.FilePath] = append(byFile[failure.FilePath], failure)
	}
	sort.Strings(files)

	for i, file := range files {
		isLastFile := i == len(files)-1
		connector, childPrefix := "├── ", "│   "
		if isLastFile {
			connector, childPrefix = "└── ", "    "
		}
		yellow.Fprintf(f.out, "%s%s\n", connector, file)

		cases := byFile[file]
		for j, failure := range cases {
			caseConnector := "├── "
			if j == len(cases)-1 {
				caseConnector = "└── "
			}
			red.Fprintf(f.out, "%s%s%s\n", childPrefix, caseConnector, failure.TestName)
		}
	}
}

func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(10 * time.Millisecond).String()
}

// SuitesWithFailures returns the suite ids that have failures in a saved run
func SuitesWithFailures(output *domain.RunOutput) map[string]struct{} {
	if output == nil {
		return nil
	}
	out := make(map[string]struct{})
	for _, failure := range output.Details {
		if !failure.Resolved {
			out[failure.SuiteID] = struct{}{}
		}
	}
	return out
}

// indent prefixes every line of s
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
