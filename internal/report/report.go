package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ErrNoReport is returned by Load when the runner did not write a report
var ErrNoReport = errors.New("report file not found")

// Report is the runner's JSON report document
type Report struct {
	Results []FileResult
}

// FileResult is the result block of one spec file
type FileResult struct {
	File   string  `json:"file"`
	Suites []Suite `json:"suites"`
}

// Suite is a (possibly nested) describe block
type Suite struct {
	Title  string  `json:"title"`
	Suites []Suite `json:"suites"`
	Tests  []Test  `json:"tests"`
}

// Test is one executed test
type Test struct {
	Title     string   `json:"title"`
	FullTitle string   `json:"fullTitle"`
	Pass      Flag     `json:"pass"`
	Fail      Flag     `json:"fail"`
	Duration  *float64 `json:"duration"`
	Err       *Err     `json:"err"`
}

// Err is the error detail reporters attach to a test
type Err struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// Flag is a boolean-ish report field. It accepts true/false, null, 0/1 and
// the strings "true"/"false"; a missing field is false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch strings.ToLower(strings.Trim(raw, `"`)) {
	case "true", "1":
		*f = true
	case "false", "0", "null", "":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %s", raw)
	}
	return nil
}

// rawReport lets Decode tell a missing results array from an empty one
type rawReport struct {
	Results *[]FileResult `json:"results"`
}

// Decode reads and validates a report document
func Decode(r io.Reader) (Report, error) {
	var raw rawReport
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	if raw.Results == nil {
		return Report{}, errors.New("decode report: missing results array")
	}

	rep := Report{Results: *raw.Results}
	for i, block := range rep.Results {
		if block.File == "" {
			return Report{}, fmt.Errorf("decode report: results[%d]: missing file", i)
		}
		for _, suite := range block.Suites {
			if err := validateSuite(suite); err != nil {
				return Report{}, fmt.Errorf("decode report: %s: %w", block.File, err)
			}
		}
	}
	return rep, nil
}

// maxDurationMillis keeps rounded durations and their sums inside int64
const maxDurationMillis = float64(math.MaxInt64 / 1024)

func validateSuite(s Suite) error {
	for _, t := range s.Tests {
		if t.Title == "" {
			return fmt.Errorf("suite %q: test without title", s.Title)
		}
		if t.Duration != nil {
			d := *t.Duration
			if d < 0 || math.IsNaN(d) || d > maxDurationMillis {
				return fmt.Errorf("test %q: invalid duration %v", t.Title, d)
			}
		}
	}
	for _, child := range s.Suites {
		if err := validateSuite(child); err != nil {
			return err
		}
	}
	return nil
}

// Load decodes and normalizes the report at path
func Load(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, ErrNoReport
		}
		return Result{}, fmt.Errorf("read report: %w", err)
	}
	rep, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	return Normalize(rep), nil
}
