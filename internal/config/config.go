package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	SpecDir     string `yaml:"spec_dir"`

	// Runner settings
	RunnerCommand     []string      `yaml:"runner_command"`
	ReportPath        string        `yaml:"report_path"`
	ReporterOptions   bool          `yaml:"reporter_options"`
	OutputBufferBytes int           `yaml:"output_buffer_bytes"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	DefaultBrowser    string        `yaml:"default_browser"`

	// Execution settings
	Workers int `yaml:"workers"`

	// Output settings
	StorageDir  string `yaml:"storage_dir"`
	StorageFile string `yaml:"storage_file"`

	// Server settings
	ListenAddr     string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Preflight settings
	PrepareDatabase bool `yaml:"prepare_database"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile   string
	ProjectPath  string
	SpecDir      string
	ListenAddr   string
	Workers      int
	Suites       []string
	Browser      string
	Mode         string
	NameFilter   string
	ShowTests    bool
	PrepareDB    bool
	OpenFailures bool
	LogLevel     string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:       DefaultProjectPath,
		SpecDir:           DefaultSpecDir,
		ReportPath:        DefaultReportPath,
		OutputBufferBytes: MinOutputBufferBytes,
		RunTimeout:        DefaultRunTimeout,
		DefaultBrowser:    DefaultBrowser,
		Workers:           DefaultWorkers,
		StorageDir:        DefaultStorageDir,
		StorageFile:       DefaultStorageFile,
		ListenAddr:        DefaultListenAddr,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
	cfg.RunnerCommand = make([]string, len(DefaultRunnerCommand))
	copy(cfg.RunnerCommand, DefaultRunnerCommand)
	cfg.AllowedOrigins = make([]string, len(DefaultAllowedOrigins))
	copy(cfg.AllowedOrigins, DefaultAllowedOrigins)
	return cfg
}

// Load builds the config from defaults, the optional YAML file, the project
// .env file, SPECDASH_* environment variables and finally the flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	configFile := flags.ConfigFile
	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(cfg.ProjectPath, DefaultConfigFile)
	}
	if err := cfg.loadFile(configFile); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// .env is optional; values already in the environment win
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	cfg.applyEnv()
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ProjectPath = envStr("SPECDASH_PROJECT_PATH", c.ProjectPath)
	c.SpecDir = envStr("SPECDASH_SPEC_DIR", c.SpecDir)
	c.ReportPath = envStr("SPECDASH_REPORT_TEMPLATE", c.ReportPath)
	c.ListenAddr = envStr("SPECDASH_LISTEN", c.ListenAddr)
	c.LogLevel = envStr("SPECDASH_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr("SPECDASH_LOG_FORMAT", c.LogFormat)
	c.DefaultBrowser = envStr("SPECDASH_BROWSER", c.DefaultBrowser)
	c.Workers = envInt("SPECDASH_WORKERS", c.Workers)
	c.OutputBufferBytes = envInt("SPECDASH_OUTPUT_BUFFER_BYTES", c.OutputBufferBytes)
	c.RunTimeout = envDuration("SPECDASH_RUN_TIMEOUT", c.RunTimeout)
	if v := os.Getenv("SPECDASH_RUNNER"); v != "" {
		c.RunnerCommand = strings.Fields(v)
	}
	if v := os.Getenv("SPECDASH_PREPARE_DATABASE"); v != "" {
		c.PrepareDatabase, _ = strconv.ParseBool(v)
	}
}

// ApplyFlags overrides settings with explicitly set command flags
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.SpecDir != "" {
		c.SpecDir = flags.SpecDir
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.PrepareDB {
		c.PrepareDatabase = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.SpecDir == "" {
		return fmt.Errorf("config: spec dir is required")
	}
	if len(c.RunnerCommand) == 0 {
		return fmt.Errorf("config: runner command is required")
	}
	if c.ReportPath == "" {
		return fmt.Errorf("config: report path is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive")
	}
	if c.OutputBufferBytes < MinOutputBufferBytes {
		return fmt.Errorf("config: output buffer must be at least %d bytes", MinOutputBufferBytes)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("config: run timeout must not be negative")
	}
	return nil
}

// GetSpecDir returns the spec directory, relative to the project unless absolute
func (c *Config) GetSpecDir() string {
	if filepath.IsAbs(c.SpecDir) {
		return c.SpecDir
	}
	return filepath.Join(c.ProjectPath, c.SpecDir)
}

// GetReportPath returns the absolute report path for a run
func (c *Config) GetReportPath(runID string) string {
	p := strings.ReplaceAll(c.ReportPath, RunIDPlaceholder, runID)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.ProjectPath, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetStoragePath returns the full path to the saved last-run JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetStoragePath() string {
	p := filepath.Join(c.ProjectPath, c.StorageDir, c.StorageFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseName returns the sample app database ensured before runs
func (c *Config) GetDatabaseName() string {
	return envStr("DB_DATABASE", DefaultDatabaseName)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
