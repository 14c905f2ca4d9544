package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"specdash/internal/config"
	"specdash/internal/discovery"
	"specdash/internal/domain"
	"specdash/internal/storage"
	"specdash/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	inventory *discovery.Inventory
	filter    *discovery.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	inventory *discovery.Inventory,
	filter *discovery.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		inventory: inventory,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	files, err := lc.inventory.Files()
	if err != nil {
		return err
	}

	files = lc.filter.FilterByName(files, lc.config.Flags.NameFilter)
	if len(files) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No test suites found")
		return nil
	}

	suites := make([]domain.TestSuiteDescriptor, 0, len(files))
	for _, file := range files {
		suite, err := lc.inventory.Describe(file)
		if err != nil {
			return fmt.Errorf("describe %s: %w", file, err)
		}
		suites = append(suites, suite)
	}

	// mark suites that failed in the last local run, if there is one
	var failed map[string]struct{}
	if last, err := lc.storage.Load(); err == nil {
		failed = ui.SuitesWithFailures(last)
	}

	lc.formatter.PrintSuiteList(suites, lc.config.Flags.ShowTests, failed)
	return nil
}
