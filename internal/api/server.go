package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"specdash/internal/domain"
	"specdash/internal/execution"
	"specdash/internal/metrics"
)

// SuiteLister lists the static spec inventory
type SuiteLister interface {
	ListSuites() ([]domain.TestSuiteDescriptor, error)
}

// RunController starts and cancels runs
type RunController interface {
	StartRun(ctx context.Context, req execution.Request) (string, error)
	Cancel(runID string) (domain.TestRun, error)
}

// RunStore is the read side of the run registry
type RunStore interface {
	Get(id string) (domain.TestRun, bool)
	ListRecent(limit int) []domain.TestRun
	Counts() map[domain.Status]int
}

// Handler serves the query API
type Handler struct {
	suites  SuiteLister
	runs    RunController
	store   RunStore
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewHandler creates a new Handler. m may be nil.
func NewHandler(suites SuiteLister, runs RunController, store RunStore, m *metrics.Metrics, log zerolog.Logger) *Handler {
	return &Handler{suites: suites, runs: runs, store: store, metrics: m, log: log}
}

// NewRouter returns the mux router with all routes and middlewares
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	// outermost first; recovery is innermost so a panic is logged and counted as a 500
	if h.metrics != nil {
		router.Use(MetricsMiddleware(h.metrics))
	}
	router.Use(LoggingMiddleware(h.log))
	router.Use(RecoveryMiddleware(h.log))

	for _, route := range h.routes() {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			HandlerFunc(route.HandlerFunc)
	}

	if h.metrics != nil {
		router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(h.metrics.Handler())
	}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return router
}

// NewServer returns an HTTP server initialized with the API handler
func NewServer(h *Handler, listenAddress string, allowedOrigins []string) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead},
	})

	return &http.Server{
		Addr:         listenAddress,
		Handler:      c.Handler(NewRouter(h)),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
}
