package main

import (
	"errors"
	"fmt"
	"os"

	"specdash/internal/cli/commands"
)

var version = "dev"

func main() {
	rootCmd := commands.NewRootCommand(version)

	if err := rootCmd.Execute(); err != nil {
		// the run summary already explains failed tests
		if !errors.Is(err, commands.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
