package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lvu/firemerge/internal/settings"
)

func newConfigsCommand() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List the builtin bank statement presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := settings.BuiltinConfigs()
			if err != nil {
				return err
			}
			if full {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				for _, cfg := range configs {
					if err := enc.Encode(cfg); err != nil {
						return err
					}
				}
				return nil
			}
			for _, cfg := range configs {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Label)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print the full preset definitions as YAML")

	return cmd
}
