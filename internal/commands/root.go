// Package commands wires the firemerge CLI: the web server, the
// bookkeeping export, and the parser-config listing.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvu/firemerge/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "firemerge",
		Short:   "Bank statement reconciliation for Firefly III",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "firemerge.yaml", "path to the config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newConfigsCommand())

	return rootCmd
}
