package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_GetSpecDir(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default path",
			config:   &Config{ProjectPath: ".", SpecDir: DefaultSpecDir},
			expected: "cypress/e2e",
		},
		{
			name:     "relative to project",
			config:   &Config{ProjectPath: "/project", SpecDir: "tests/e2e"},
			expected: "/project/tests/e2e",
		},
		{
			name:     "absolute spec dir",
			config:   &Config{ProjectPath: "/project", SpecDir: "/absolute/path"},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetSpecDir()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetReportPath(t *testing.T) {
	t.Run("namespaced per run", func(t *testing.T) {
		cfg := &Config{ProjectPath: "/project", ReportPath: DefaultReportPath}
		got := cfg.GetReportPath("abc")
		if got != "/project/reports/abc.json" {
			t.Errorf("unexpected report path %s", got)
		}
	})

	t.Run("shared path without placeholder", func(t *testing.T) {
		cfg := &Config{ProjectPath: "/project", ReportPath: "results/report.json"}
		if cfg.GetReportPath("a") != cfg.GetReportPath("b") {
			t.Error("expected the same path for every run")
		}
	})

	t.Run("absolute template", func(t *testing.T) {
		cfg := &Config{ProjectPath: "/project", ReportPath: "/tmp/{runId}/out.json"}
		if got := cfg.GetReportPath("x"); got != "/tmp/x/out.json" {
			t.Errorf("unexpected report path %s", got)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected Workers %d, got %d", DefaultWorkers, cfg.Workers)
	}

	if len(cfg.RunnerCommand) != len(DefaultRunnerCommand) {
		t.Errorf("expected %d runner args, got %d", len(DefaultRunnerCommand), len(cfg.RunnerCommand))
	}

	cfg.RunnerCommand[0] = "changed"
	if DefaultRunnerCommand[0] == "changed" {
		t.Error("New must copy the default runner command")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty spec dir", mutate: func(c *Config) { c.SpecDir = "" }},
		{name: "no runner", mutate: func(c *Config) { c.RunnerCommand = nil }},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }},
		{name: "small buffer", mutate: func(c *Config) { c.OutputBufferBytes = 1024 }},
		{name: "negative timeout", mutate: func(c *Config) { c.RunTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `spec_dir: e2e
workers: 3
runner_command: ["sh", "run.sh"]
run_timeout: 90s
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SPECDASH_BROWSER=firefox\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// register cleanup, then unset so the .env value is picked up
	t.Setenv("SPECDASH_BROWSER", "")
	os.Unsetenv("SPECDASH_BROWSER")
	t.Setenv("SPECDASH_LISTEN", ":9999")

	cfg, err := Load(Flags{ProjectPath: dir, Workers: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SpecDir != "e2e" {
		t.Errorf("expected spec dir from yaml, got %s", cfg.SpecDir)
	}
	if cfg.Workers != 5 {
		t.Errorf("expected flag to override workers, got %d", cfg.Workers)
	}
	if cfg.RunTimeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %s", cfg.RunTimeout)
	}
	if cfg.DefaultBrowser != "firefox" {
		t.Errorf("expected browser from .env, got %s", cfg.DefaultBrowser)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("expected env listen address, got %s", cfg.ListenAddr)
	}
	if len(cfg.RunnerCommand) != 2 || cfg.RunnerCommand[0] != "sh" {
		t.Errorf("unexpected runner command %v", cfg.RunnerCommand)
	}

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Load(Flags{ProjectPath: dir, ConfigFile: filepath.Join(dir, "nope.yaml")})
		if err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}
