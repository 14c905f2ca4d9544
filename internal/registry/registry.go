package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"specdash/internal/domain"
)

// DefaultRecentLimit is used by ListRecent when no positive limit is given
const DefaultRecentLimit = 10

// Registry is the in-memory store of test runs for one orchestrator process.
// Records are never deleted. Every read returns a deep copy, so the only way
// to change a run is through the Registry's methods.
type Registry struct {
	mu    sync.RWMutex
	runs  map[string]*domain.TestRun
	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Registry
type Option func(*Registry)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator overrides run id allocation
func WithIDGenerator(gen func() (string, error)) Option {
	return func(r *Registry) { r.newID = gen }
}

// New creates an empty Registry
func New(opts ...Option) *Registry {
	r := &Registry{
		runs:  make(map[string]*domain.TestRun),
		now:   time.Now,
		newID: newRunID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newRunID returns a UUIDv7, which sorts by creation time
func newRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create registers a new run in the running state
func (r *Registry) Create(cfg domain.RunConfig) (domain.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.newID()
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("allocate run id: %w", err)
	}
	if _, exists := r.runs[id]; exists {
		return domain.TestRun{}, fmt.Errorf("allocate run id: duplicate id %s", id)
	}

	run := &domain.TestRun{
		ID:        id,
		Status:    domain.StatusRunning,
		StartTime: r.now(),
		Config: domain.RunConfig{
			Suites:  append([]string{}, cfg.Suites...),
			Browser: cfg.Browser,
			Mode:    cfg.Mode,
		},
		Suites: map[string]domain.SuiteResult{},
	}
	r.runs[id] = run
	return run.Clone(), nil
}

// UpdateStatus sets the status of a run. Unknown ids are ignored. A terminal
// status stamps the end time; once a run is terminal it never changes again.
// Returns whether the record was updated.
func (r *Registry) UpdateStatus(id string, status domain.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(id, status, "")
}

// Fail moves a running run to error with a short reason
func (r *Registry) Fail(id, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(id, domain.StatusError, message)
}

// Complete folds a normalized result into a running run and marks it completed
func (r *Registry) Complete(id string, summary domain.Summary, suites map[string]domain.SuiteResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok || run.Status.IsTerminal() {
		return false
	}
	run.Summary = summary
	run.Suites = domain.TestRun{Suites: suites}.Clone().Suites
	return r.transition(id, domain.StatusCompleted, "")
}

// transition must be called with the write lock held
func (r *Registry) transition(id string, status domain.Status, message string) bool {
	run, ok := r.runs[id]
	if !ok || run.Status.IsTerminal() {
		return false
	}
	run.Status = status
	if status.IsTerminal() {
		end := r.now()
		run.EndTime = &end
		run.Message = message
	}
	return true
}

// Get returns a snapshot of the run
func (r *Registry) Get(id string) (domain.TestRun, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return domain.TestRun{}, false
	}
	return run.Clone(), true
}

// ListRecent returns up to limit runs, newest first
func (r *Registry) ListRecent(limit int) []domain.TestRun {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	r.mu.RLock()
	runs := make([]*domain.TestRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartTime.Equal(runs[j].StartTime) {
			return runs[i].StartTime.After(runs[j].StartTime)
		}
		return runs[i].ID > runs[j].ID
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	out := make([]domain.TestRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.Clone())
	}
	r.mu.RUnlock()

	return out
}

// Counts returns the number of runs per status
func (r *Registry) Counts() map[domain.Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[domain.Status]int{
		domain.StatusRunning:   0,
		domain.StatusCompleted: 0,
		domain.StatusError:     0,
	}
	for _, run := range r.runs {
		counts[run.Status]++
	}
	return counts
}
