// Package cli holds the tracker's cobra commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
}

func defaultDataDir() string {
	if d := os.Getenv("TRACKER_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Job application tracker engine",
		Long:          "Tracks job applications through the pipeline from short list to offer, locally or mirrored to a remote document store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", defaultDataDir(), "engine data directory (config.yml, .env, lock file)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}
