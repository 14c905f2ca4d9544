package api

import "net/http"

// Route is one entry of the API route table
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

func (h *Handler) routes() []Route {
	return []Route{
		{
			Name:        "SuitesGet",
			Method:      http.MethodGet,
			Pattern:     "/api/suites",
			HandlerFunc: h.ListSuites,
		},
		{
			Name:        "TestsRunPost",
			Method:      http.MethodPost,
			Pattern:     "/api/tests/run",
			HandlerFunc: h.StartRun,
		},
		{
			Name:        "TestsStatusGet",
			Method:      http.MethodGet,
			Pattern:     "/api/tests/status/{runId}",
			HandlerFunc: h.RunStatus,
		},
		{
			Name:        "TestsResultsGet",
			Method:      http.MethodGet,
			Pattern:     "/api/tests/results/{runId}",
			HandlerFunc: h.RunResults,
		},
		{
			Name:        "TestsRecentGet",
			Method:      http.MethodGet,
			Pattern:     "/api/tests/recent",
			HandlerFunc: h.RecentRuns,
		},
		{
			Name:        "TestsCancelPost",
			Method:      http.MethodPost,
			Pattern:     "/api/tests/cancel/{runId}",
			HandlerFunc: h.CancelRun,
		},
		{
			Name:        "HealthzGet",
			Method:      http.MethodGet,
			Pattern:     "/healthz",
			HandlerFunc: h.Healthz,
		},
	}
}
