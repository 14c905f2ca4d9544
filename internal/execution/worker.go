package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"specdash/internal/domain"
	"specdash/internal/report"
)

// execute runs on a pool worker and drives one run to a terminal state
func (e *Executor) execute(ctx context.Context, runID string, req Request, specs []string) {
	log := e.log.With().Str("run_id", runID).Logger()
	defer e.finish(runID)

	if ctx.Err() != nil {
		e.fail(runID, e.stopReason(ctx))
		return
	}

	if e.preflight != nil {
		if err := e.preflight(ctx); err != nil {
			log.Error().Err(err).Msg("preflight failed")
			e.fail(runID, "preflight check failed")
			return
		}
	}

	cmd := e.builder.Build(runID, req, specs)
	if err := prepareReportPath(cmd.ReportPath); err != nil {
		log.Error().Err(err).Str("report", cmd.ReportPath).Msg("cannot prepare report path")
		e.fail(runID, "cannot prepare report path")
		return
	}

	code, err := e.runner.Run(ctx, runID, cmd)
	switch {
	case ctx.Err() != nil:
		e.fail(runID, e.stopReason(ctx))
		return
	case err != nil:
		log.Error().Err(err).Msg("runner failed")
		e.fail(runID, "failed to start test runner")
		return
	case code != 0:
		// no partial results on a non-zero exit
		log.Warn().Int("exit_code", code).Msg("runner exited with failure")
		e.fail(runID, fmt.Sprintf("runner exited with code %d", code))
		return
	}

	result, err := report.Load(cmd.ReportPath)
	if errors.Is(err, report.ErrNoReport) {
		log.Warn().Str("report", cmd.ReportPath).Msg("runner exited cleanly but wrote no report, completing with empty summary")
		e.registry.Complete(runID, domain.Summary{}, nil)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("report", cmd.ReportPath).Msg("cannot read report")
		e.fail(runID, "failed to parse test report")
		return
	}

	e.registry.Complete(runID, result.Summary, result.Suites)
	log.Info().
		Int("total", result.Summary.Total).
		Int("passed", result.Summary.Passed).
		Int("failed", result.Summary.Failed).
		Int("skipped", result.Summary.Skipped).
		Msg("run completed")
}

func (e *Executor) fail(runID, message string) {
	if e.registry.Fail(runID, message) {
		e.log.Warn().Str("run_id", runID).Str("reason", message).Msg("run failed")
	}
}

func (e *Executor) stopReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s", e.config.RunTimeout)
	}
	return CancelledMessage
}

// finish releases the run's context and reports the final record
func (e *Executor) finish(runID string) {
	e.mu.Lock()
	cancel := e.active[runID]
	delete(e.active, runID)
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if e.recorder == nil {
		return
	}
	if run, ok := e.registry.Get(runID); ok {
		e.recorder.RunFinished(run)
	}
}

// prepareReportPath creates the report directory and removes a stale report
// so an old file is never read as this run's result
func prepareReportPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
