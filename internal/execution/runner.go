package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"specdash/internal/config"
)

// DefaultWaitDelay bounds how long Run waits for output pipes after the
// runner process is gone (children may keep them open)
const DefaultWaitDelay = 5 * time.Second

// LineFunc receives every runner output line with ANSI codes stripped
type LineFunc func(stream, line string)

// Runner executes the external test runner and streams its output
type Runner struct {
	bufferSize int
	waitDelay  time.Duration
	log        zerolog.Logger
	onLine     LineFunc
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, log zerolog.Logger) *Runner {
	size := cfg.OutputBufferBytes
	if size < config.MinOutputBufferBytes {
		size = config.MinOutputBufferBytes
	}
	return &Runner{bufferSize: size, waitDelay: DefaultWaitDelay, log: log}
}

// OnLine registers a callback for output lines
func (r *Runner) OnLine(fn LineFunc) {
	r.onLine = fn
}

// Run starts the command and blocks until it exits. A non-zero exit is not an
// error: the exit code is returned with a nil error. err is set when the
// process could not be started or was stopped through ctx.
func (r *Runner) Run(ctx context.Context, runID string, cmd Command) (int, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.WaitDelay = r.waitDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	c.Stdout = stdoutW
	c.Stderr = stderrW

	log := r.log.With().Str("run_id", runID).Logger()

	if err := c.Start(); err != nil {
		stdoutW.Close()
		stderrW.Close()
		return -1, fmt.Errorf("start runner %s: %w", cmd.Path, err)
	}
	log.Info().Int("pid", c.Process.Pid).Str("command", cmd.String()).Msg("runner started")

	var g errgroup.Group
	g.Go(func() error { return r.pump(log, "stdout", stdoutR) })
	g.Go(func() error { return r.pump(log, "stderr", stderrR) })

	waitErr := c.Wait()
	stdoutW.Close()
	stderrW.Close()
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("runner output was not fully read")
	}

	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait for runner: %w", waitErr)
	}
	return 0, nil
}

// pump logs every line of one output stream. Overlong lines end the scan;
// the rest of the stream is drained so the process never blocks on a full pipe.
func (r *Runner) pump(log zerolog.Logger, stream string, rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), r.bufferSize)

	for scanner.Scan() {
		line := stripansi.Strip(scanner.Text())
		log.Debug().Str("stream", stream).Msg(line)
		if r.onLine != nil {
			r.onLine(stream, line)
		}
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, rd)
		return fmt.Errorf("read %s: %w", stream, err)
	}
	return nil
}
