package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"specdash/internal/cli"
	"specdash/internal/config"
	"specdash/internal/discovery"
	"specdash/internal/execution"
	"specdash/internal/logging"
	"specdash/internal/metrics"
	"specdash/internal/preflight"
	"specdash/internal/registry"
	"specdash/internal/storage"
	"specdash/internal/ui"
)

// ErrTestsFailed is returned by the run command when the run errored or had failing tests
var ErrTestsFailed = errors.New("test run failed")

// Commands holds all CLI commands
type Commands struct {
	Serve     *ServeCommand
	List      *ListCommand
	Run       *RunCommand
	Failures  *FailuresCommand
	PrepareDB *PrepareDBCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, cmd *cobra.Command) (*Commands, error) {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	inventory := discovery.NewInventory(cfg.GetSpecDir(), discovery.NewScanner(), discovery.NewParser())
	filter := discovery.NewFilter()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatterWithWriter(cmd.OutOrStdout())
	errorViewer := ui.NewErrorViewer(jsonStorage)
	dbManager := preflight.NewDatabaseManager(cfg, logging.Component(log, "preflight"))

	var newExecutor ExecutorFactory = func(reg *registry.Registry, m *metrics.Metrics) *execution.Executor {
		opts := []execution.Option{}
		if cfg.PrepareDatabase {
			opts = append(opts, execution.WithPreflight(dbManager.Check))
		}
		if m != nil {
			opts = append(opts, execution.WithRecorder(m))
		}
		return execution.New(cfg, reg, inventory, logging.Component(log, "executor"), opts...)
	}

	return &Commands{
		Serve:     NewServeCommand(cfg, log, inventory, newExecutor),
		List:      NewListCommand(cfg, inventory, filter, formatter, jsonStorage),
		Run:       NewRunCommand(cfg, newExecutor, jsonStorage, formatter, errorViewer),
		Failures:  NewFailuresCommand(jsonStorage, errorViewer),
		PrepareDB: NewPrepareDBCommand(dbManager),
	}, nil
}

// ExecutorFactory builds an executor over a registry; m may be nil
type ExecutorFactory func(reg *registry.Registry, m *metrics.Metrics) *execution.Executor

// NewRootCommand builds the specdash command tree
func NewRootCommand(version string) *cobra.Command {
	var flags cli.Flags
	var cmds *Commands

	rootCmd := &cobra.Command{
		Use:           "specdash",
		Short:         "End-to-end test run orchestrator",
		Long:          `Discover browser end-to-end specs, run them through the external test runner and serve the results over a small JSON API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.ToConfigFlags())
			if err != nil {
				return err
			}
			cmds, err = NewCommands(cfg, cmd)
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to the YAML config file (default <project>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "P", "", "Project root the runner is started in")
	rootCmd.PersistentFlags().StringVarP(&flags.SpecDir, "spec-dir", "s", "", "Spec directory, relative to the project root")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	Register(rootCmd, &flags, func() *Commands { return cmds })
	return rootCmd
}

// Register registers all commands with cobra. get returns the commands built
// once the config is loaded.
func Register(rootCmd *cobra.Command, flags *cli.Flags, get func() *Commands) {
	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve the suite inventory, run triggering and run polling endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Serve.Execute(cmd, args)
		},
	}
	serveCmd.Flags().StringVarP(&flags.ListenAddr, "listen", "l", "", "Listen address (default "+config.DefaultListenAddr+")")
	serveCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of runs executed concurrently")
	serveCmd.Flags().BoolVar(&flags.PrepareDB, "prepare-db", false, "Ensure the application test database exists before each run")
	rootCmd.AddCommand(serveCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered test suites",
		Long:  "Scan the spec directory and list suites without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().List.Execute(cmd, args)
		},
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter specs by name pattern (supports wildcards, e.g., '*cart*' or 'login.cy.js')")
	listCmd.Flags().BoolVarP(&flags.ShowTests, "tests", "t", false, "List test cases of each suite")
	rootCmd.AddCommand(listCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run test suites and print the results",
		Long:  "Start the external test runner, wait for it to finish and print the normalized results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Run.Execute(cmd, args)
		},
	}
	runCmd.Flags().StringSliceVar(&flags.Suites, "suite", nil, "Suite id or spec file name to run (repeatable)")
	runCmd.Flags().StringVarP(&flags.Browser, "browser", "b", "", "Browser to run in (default "+config.DefaultBrowser+")")
	runCmd.Flags().StringVarP(&flags.Mode, "mode", "m", "", "Run mode: 'all' or 'selected' (default 'selected' when --suite is given)")
	runCmd.Flags().BoolVar(&flags.PrepareDB, "prepare-db", false, "Ensure the application test database exists before the run")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display failed tests from the last local run in an interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Failures.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(failuresCmd)

	// Prepare-db command
	prepareCmd := &cobra.Command{
		Use:   "prepare-db",
		Short: "Create the application test database if missing",
		Long:  "Connect to the MySQL server configured through DB_* variables and create DB_DATABASE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().PrepareDB.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(prepareCmd)
}
