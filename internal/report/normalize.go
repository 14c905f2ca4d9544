package report

import (
	"math"
	"path/filepath"

	"specdash/internal/domain"
)

// Result is the canonical aggregate folded into a run record
type Result struct {
	Summary domain.Summary
	Suites  map[string]domain.SuiteResult
}

// Normalize folds a decoded report into totals and a per-suite breakdown.
// Test ids are "<suiteId>-<n>" where n counts the suite's tests in flattened
// report order (a describe block's own tests, then its nested blocks).
func Normalize(rep Report) Result {
	res := Result{Suites: map[string]domain.SuiteResult{}}
	next := map[string]int{}

	for _, block := range rep.Results {
		fileName := filepath.Base(filepath.ToSlash(block.File))
		suiteID := domain.SuiteID(fileName)

		suite, seen := res.Suites[suiteID]
		if !seen {
			suite = domain.SuiteResult{
				Name:  domain.DisplayName(suiteID),
				File:  fileName,
				Tests: map[string]domain.TestResult{},
			}
		}

		for _, t := range flatten(block.Suites) {
			result := normalizeTest(t)
			suite.Tests[domain.TestID(suiteID, next[suiteID])] = result
			next[suiteID]++

			res.Summary.Total++
			res.Summary.Duration += result.Duration
			switch result.Status {
			case domain.TestPassed:
				res.Summary.Passed++
				suite.Passed++
			case domain.TestFailed:
				res.Summary.Failed++
				suite.Failed++
			default:
				res.Summary.Skipped++
				suite.Skipped++
			}
		}

		res.Suites[suiteID] = suite
	}

	return res
}

func flatten(suites []Suite) []Test {
	var tests []Test
	for _, s := range suites {
		tests = append(tests, s.Tests...)
		tests = append(tests, flatten(s.Suites)...)
	}
	return tests
}

// normalizeTest categorizes by the full title only; the file name does not
// decide the category of an executed test
func normalizeTest(t Test) domain.TestResult {
	fullTitle := t.FullTitle
	if fullTitle == "" {
		fullTitle = t.Title
	}

	result := domain.TestResult{
		Name:      t.Title,
		FullTitle: fullTitle,
		Status:    statusOf(t),
		Category:  domain.Categorize("", fullTitle),
	}
	if t.Duration != nil {
		result.Duration = int64(math.Round(*t.Duration))
	}
	if result.Status == domain.TestFailed && t.Err != nil && (t.Err.Message != "" || t.Err.Stack != "") {
		result.Error = &domain.ErrorDetail{Message: t.Err.Message, Stack: t.Err.Stack}
	}
	return result
}

// statusOf applies the pass, fail, skipped precedence
func statusOf(t Test) domain.TestStatus {
	if t.Pass {
		return domain.TestPassed
	}
	if t.Fail {
		return domain.TestFailed
	}
	return domain.TestSkipped
}
