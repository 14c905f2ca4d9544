package domain

import "time"

// Status is the lifecycle state of a test run
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// IsTerminal reports whether the status is final
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// TestStatus is the outcome of a single executed test
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

const (
	// ModeAll runs the whole inventory regardless of the requested suites
	ModeAll = "all"
	// ModeSelected restricts the run to the requested suites
	ModeSelected = "selected"
)

// RunConfig is what the caller asked for when triggering a run
type RunConfig struct {
	Suites  []string `json:"suites"`
	Browser string   `json:"browser"`
	Mode    string   `json:"mode"`
}

// Summary holds the aggregate counters of a run. Duration is in milliseconds.
type Summary struct {
	Total    int   `json:"total"`
	Passed   int   `json:"passed"`
	Failed   int   `json:"failed"`
	Skipped  int   `json:"skipped"`
	Duration int64 `json:"duration"`
}

// ErrorDetail is the failure information attached to a failed test
type ErrorDetail struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// TestResult is the outcome of one executed test
type TestResult struct {
	Name      string       `json:"name"`
	FullTitle string       `json:"fullTitle"`
	Status    TestStatus   `json:"status"`
	Duration  int64        `json:"duration"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Category  string       `json:"category"`
}

// SuiteResult is the per-suite breakdown of a run
type SuiteResult struct {
	Name    string                `json:"name"`
	File    string                `json:"file"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Skipped int                   `json:"skipped"`
	Tests   map[string]TestResult `json:"tests"`
}

// TestRun is one invocation of the external test runner
type TestRun struct {
	ID        string                 `json:"id"`
	Status    Status                 `json:"status"`
	StartTime time.Time              `json:"startTime"`
	EndTime   *time.Time             `json:"endTime"`
	Config    RunConfig              `json:"config"`
	Summary   Summary                `json:"summary"`
	Suites    map[string]SuiteResult `json:"suites"`
	Message   string                 `json:"message,omitempty"`
}

// Clone returns a deep copy so callers can never mutate the registry's record
func (r TestRun) Clone() TestRun {
	out := r
	if r.EndTime != nil {
		end := *r.EndTime
		out.EndTime = &end
	}
	out.Config.Suites = append([]string{}, r.Config.Suites...)
	out.Suites = make(map[string]SuiteResult, len(r.Suites))
	for id, suite := range r.Suites {
		tests := make(map[string]TestResult, len(suite.Tests))
		for tid, test := range suite.Tests {
			if test.Error != nil {
				detail := *test.Error
				test.Error = &detail
			}
			tests[tid] = test
		}
		suite.Tests = tests
		out.Suites[id] = suite
	}
	return out
}

// WithoutDetail returns a copy of the run with the per-suite breakdown dropped
func (r TestRun) WithoutDetail() TestRun {
	out := r.Clone()
	out.Suites = map[string]SuiteResult{}
	return out
}

// RunStatus is the small polling projection of a run
type RunStatus struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

// StatusView projects the run down to its identity, status and timestamps
func (r TestRun) StatusView() RunStatus {
	view := RunStatus{ID: r.ID, Status: r.Status, StartTime: r.StartTime}
	if r.EndTime != nil {
		end := *r.EndTime
		view.EndTime = &end
	}
	return view
}
