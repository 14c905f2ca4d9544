package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DatabasePreparer ensures the application test database exists
type DatabasePreparer interface {
	Check(ctx context.Context) error
}

// PrepareDBCommand handles the prepare-db command
type PrepareDBCommand struct {
	preparer DatabasePreparer
}

// NewPrepareDBCommand creates a new PrepareDBCommand
func NewPrepareDBCommand(preparer DatabasePreparer) *PrepareDBCommand {
	return &PrepareDBCommand{preparer: preparer}
}

// Execute runs the command
func (pc *PrepareDBCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := pc.preparer.Check(cmd.Context()); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Test database is ready")
	return nil
}
