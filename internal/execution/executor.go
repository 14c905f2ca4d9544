package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"specdash/internal/config"
	"specdash/internal/discovery"
	"specdash/internal/domain"
	"specdash/internal/registry"
)

var (
	// ErrRunNotFound is returned for run ids the registry does not know
	ErrRunNotFound = errors.New("run not found")
	// ErrRunFinished is returned when cancelling a run that already ended
	ErrRunFinished = errors.New("run already finished")
	// ErrShuttingDown is returned by StartRun after Shutdown
	ErrShuttingDown = errors.New("executor is shutting down")
)

// CancelledMessage is the error message of runs stopped through Cancel
const CancelledMessage = "cancelled"

// PreflightFunc runs before the runner is started; an error fails the run
type PreflightFunc func(ctx context.Context) error

// Recorder observes run lifecycle events
type Recorder interface {
	RunStarted()
	RunFinished(run domain.TestRun)
}

// Option configures an Executor
type Option func(*Executor)

// WithPreflight sets the check run before each runner invocation
func WithPreflight(fn PreflightFunc) Option {
	return func(e *Executor) { e.preflight = fn }
}

// WithRecorder sets the lifecycle observer
func WithRecorder(rec Recorder) Option {
	return func(e *Executor) { e.recorder = rec }
}

// WithRunner replaces the default Runner
func WithRunner(r *Runner) Option {
	return func(e *Executor) { e.runner = r }
}

// Executor launches runner processes on a bounded worker pool and folds
// their reports into the registry
type Executor struct {
	config    *config.Config
	registry  *registry.Registry
	inventory *discovery.Inventory
	builder   *CommandBuilder
	runner    *Runner
	preflight PreflightFunc
	recorder  Recorder
	log       zerolog.Logger

	pool   *workerpool.WorkerPool
	ctx    context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	active map[string]context.CancelFunc
	closed bool
}

// New creates an Executor with cfg.Workers concurrent runs
func New(cfg *config.Config, reg *registry.Registry, inv *discovery.Inventory, log zerolog.Logger, opts ...Option) *Executor {
	ctx, stop := context.WithCancel(context.Background())
	e := &Executor{
		config:    cfg,
		registry:  reg,
		inventory: inv,
		builder:   NewCommandBuilder(cfg),
		runner:    NewRunner(cfg, log),
		log:       log,
		pool:      workerpool.New(cfg.Workers),
		ctx:       ctx,
		stop:      stop,
		active:    make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartRun registers a run and queues it. It returns as soon as the run is
// registered; progress is observed through the registry.
func (e *Executor) StartRun(ctx context.Context, req Request) (string, error) {
	if req.Browser == "" {
		req.Browser = e.config.DefaultBrowser
	}
	if req.Mode == "" {
		req.Mode = config.DefaultMode
		if len(req.Suites) > 0 {
			req.Mode = domain.ModeSelected
		}
	}

	var specs []string
	if req.Selective() {
		var err error
		specs, err = e.inventory.Resolve(req.Suites)
		if err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrShuttingDown
	}

	run, err := e.registry.Create(req.Config())
	if err != nil {
		return "", fmt.Errorf("register run: %w", err)
	}

	runCtx, cancel := context.WithCancel(e.ctx)
	if e.config.RunTimeout > 0 {
		runCtx, cancel = withTimeout(runCtx, cancel, e.config.RunTimeout)
	}
	e.active[run.ID] = cancel

	if e.recorder != nil {
		e.recorder.RunStarted()
	}
	e.log.Info().Str("run_id", run.ID).Strs("suites", req.Suites).Str("browser", req.Browser).Str("mode", req.Mode).Msg("run queued")

	e.pool.Submit(func() {
		e.execute(runCtx, run.ID, req, specs)
	})
	return run.ID, nil
}

func withTimeout(parent context.Context, cancelParent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		cancel()
		cancelParent()
	}
}

// Cancel stops a running run. The run is marked as errored right away and
// its runner process is killed.
func (e *Executor) Cancel(runID string) (domain.TestRun, error) {
	run, ok := e.registry.Get(runID)
	if !ok {
		return domain.TestRun{}, ErrRunNotFound
	}
	if run.Status.IsTerminal() {
		return run, ErrRunFinished
	}

	if !e.registry.Fail(runID, CancelledMessage) {
		run, _ = e.registry.Get(runID)
		return run, ErrRunFinished
	}

	e.mu.Lock()
	cancel := e.active[runID]
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	e.log.Info().Str("run_id", runID).Msg("run cancelled")
	run, _ = e.registry.Get(runID)
	return run, nil
}

// Wait blocks until the run is terminal or ctx is done
func (e *Executor) Wait(ctx context.Context, runID string, interval time.Duration) (domain.TestRun, error) {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		run, ok := e.registry.Get(runID)
		if !ok {
			return domain.TestRun{}, ErrRunNotFound
		}
		if run.Status.IsTerminal() {
			return run, nil
		}
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Runner returns the runner used for new runs
func (e *Executor) Runner() *Runner {
	return e.runner
}

// Shutdown refuses new runs, kills the running ones and waits for the pool to drain
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.stop()
	e.pool.StopWait()
}
