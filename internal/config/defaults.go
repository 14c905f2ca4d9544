package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSpecDir is where spec files live, relative to the project
	DefaultSpecDir = "cypress/e2e"
	// DefaultReportPath is the runner report location; {runId} is replaced per run
	DefaultReportPath = "reports/{runId}.json"
	// DefaultStorageFile is the file the last local run is saved to
	DefaultStorageFile = "last-run.json"
	// DefaultStorageDir is the default storage directory
	DefaultStorageDir = "storage"
	// DefaultWorkers is the number of runs that may execute at once
	DefaultWorkers = 2
	// DefaultListenAddr is the HTTP API listen address
	DefaultListenAddr = ":3001"
	// DefaultBrowser is used when a run request names none
	DefaultBrowser = "chrome"
	// DefaultMode runs every suite
	DefaultMode = "all"
	// DefaultLogLevel is the zerolog level name
	DefaultLogLevel = "info"
	// DefaultLogFormat is console or json
	DefaultLogFormat = "console"
	// DefaultDatabaseName is the sample app database ensured by the preflight
	DefaultDatabaseName = "specdash_app_test"
	// DefaultConfigFile is looked up in the project root
	DefaultConfigFile = "specdash.yaml"

	// MinOutputBufferBytes is the smallest runner output line buffer accepted
	MinOutputBufferBytes = 10 * 1024 * 1024

	// RunIDPlaceholder is substituted in ReportPath
	RunIDPlaceholder = "{runId}"
	// ReportPathEnv carries the report path to the runner process
	ReportPathEnv = "SPECDASH_REPORT_PATH"
)

// DefaultRunTimeout of zero lets a run go until the runner exits
const DefaultRunTimeout = time.Duration(0)

// DefaultRunnerCommand invokes the browser test runner
var DefaultRunnerCommand = []string{"npx", "cypress", "run"}

// DefaultAllowedOrigins are the CORS origins the dashboard may call from
var DefaultAllowedOrigins = []string{"*"}
