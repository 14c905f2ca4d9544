package domain

import (
	"sort"
	"strings"
)

// TestFailure represents a failed test case in a saved run
type TestFailure struct {
	TestID    string   `json:"test_id"`
	TestName  string   `json:"test_name"`
	FullTitle string   `json:"full_title"`
	SuiteID   string   `json:"suite_id"`
	FilePath  string   `json:"file_path"`
	Category  string   `json:"category"`
	Message   string   `json:"message"`
	Stack     []string `json:"stack_trace"`
	Resolved  bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}

// RunMeta contains metadata about a saved run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	Status          Status  `json:"status"`
	Message         string  `json:"message,omitempty"`
	Browser         string  `json:"browser"`
	TotalSuites     int     `json:"total_suites"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	SkippedTests    int     `json:"skipped_tests"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the complete saved structure for the last local run
type RunOutput struct {
	Meta    RunMeta       `json:"meta"`
	Details []TestFailure `json:"details"`
}

// Failures flattens the failed tests of a run, ordered by suite and test id
func (r TestRun) Failures() []TestFailure {
	var failures []TestFailure
	for suiteID, suite := range r.Suites {
		for testID, test := range suite.Tests {
			if test.Status != TestFailed {
				continue
			}
			failure := TestFailure{
				TestID:    testID,
				TestName:  test.Name,
				FullTitle: test.FullTitle,
				SuiteID:   suiteID,
				FilePath:  suite.File,
				Category:  test.Category,
			}
			if test.Error != nil {
				failure.Message = test.Error.Message
				failure.Stack = splitLines(test.Error.Stack)
			}
			failures = append(failures, failure)
		}
	}
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].SuiteID != failures[j].SuiteID {
			return failures[i].SuiteID < failures[j].SuiteID
		}
		return failures[i].TestID < failures[j].TestID
	})
	return failures
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' })
}
