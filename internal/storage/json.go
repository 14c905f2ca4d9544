package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"specdash/internal/domain"
)

// Save writes the run summary and its failed tests to the configured JSON file.
func (s *JSONStorage) Save(run domain.TestRun) error {
	var duration float64
	if run.EndTime != nil {
		duration = run.EndTime.Sub(run.StartTime).Seconds()
	}

	output := domain.RunOutput{
		Meta: domain.RunMeta{
			RunID:           run.ID,
			Status:          run.Status,
			Message:         run.Message,
			Browser:         run.Config.Browser,
			TotalSuites:     len(run.Suites),
			TotalTests:      run.Summary.Total,
			PassedTests:     run.Summary.Passed,
			FailedTests:     run.Summary.Failed,
			SkippedTests:    run.Summary.Skipped,
			DurationSeconds: duration,
			Timestamp:       run.StartTime.Format(time.RFC3339),
		},
		Details: run.Failures(),
	}
	return s.SaveOutput(&output)
}

// Load reads the last run from the configured JSON file.
func (s *JSONStorage) Load() (*domain.RunOutput, error) {
	path := s.cfg.GetStoragePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.RunOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetStoragePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
