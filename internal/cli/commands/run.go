package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"specdash/internal/config"
	"specdash/internal/domain"
	"specdash/internal/execution"
	"specdash/internal/registry"
	"specdash/internal/storage"
	"specdash/internal/ui"
)

const pollInterval = 100 * time.Millisecond

// RunCommand handles the run command
type RunCommand struct {
	config      *config.Config
	newExecutor ExecutorFactory
	storage     storage.Storage
	formatter   *ui.Formatter
	viewer      ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	newExecutor ExecutorFactory,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:      cfg,
		newExecutor: newExecutor,
		storage:     st,
		formatter:   formatter,
		viewer:      viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	req := execution.Request{
		Suites:  append(append([]string{}, rc.config.Flags.Suites...), args...),
		Browser: rc.config.Flags.Browser,
		Mode:    rc.config.Flags.Mode,
	}

	executor := rc.newExecutor(registry.New(), nil)
	defer executor.Shutdown()

	progress := ui.NewProgressBar()
	executor.Runner().OnLine(progress.ObserveLine)

	runID, err := executor.StartRun(cmd.Context(), req)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := executor.Wait(ctx, runID, pollInterval)
	if err != nil {
		if ctx.Err() == nil {
			return err
		}
		// interrupted: kill the runner and report what we have
		if run, err = executor.Cancel(runID); err != nil && !errors.Is(err, execution.ErrRunFinished) {
			return err
		}
		if run, err = executor.Wait(context.Background(), runID, pollInterval); err != nil {
			return err
		}
	}
	progress.Finish()

	rc.formatter.PrintRunSummary(run)

	if err := rc.storage.Save(run); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if run.Status == domain.StatusError || run.Summary.Failed > 0 {
		if rc.config.Flags.OpenFailures && run.Summary.Failed > 0 {
			output, err := rc.storage.Load()
			if err != nil {
				return err
			}
			if err := rc.viewer.View(output); err != nil {
				return err
			}
		} else if run.Summary.Failed > 0 {
			color.New(color.FgHiBlack).Fprintln(cmd.OutOrStdout(), "Run 'specdash failures' to browse the failures")
		}
		return ErrTestsFailed
	}
	return nil
}
