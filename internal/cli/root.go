// Package cli provides the command-line interface for taskgenie.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for taskgenie.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskgenie",
		Short: "Personal task management backend",
		Long: `taskgenie is a personal task management backend. It serves a REST
API for creating, querying and updating tasks with attachments and
scheduled reminder notifications, backed by a versioned SQL schema.

Configuration is read from ~/.taskgenie/config.toml and TASKGENIE_*
environment variables.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newDBCommand())

	return root
}
