// cmd/root.go
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simgrid-go",
	Short: "Discrete-event simulator for distributed-systems platforms",
}

// Execute runs the root command, exiting non-zero on platform-load
// failure, deadlock, or any other command error (spec.md §6's exit-code
// contract).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
