package cmd

import (
	"github.com/spf13/cobra"
)

// configCmd represents the config command.
var configCmd = newConfigCmd()
var configSelection selectionFlags

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [root]",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, configSelection)
			if err != nil {
				return err
			}

			out, err := cfg.Marshal()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}
	addSelectionFlags(cmd, &configSelection)

	return cmd
}

func init() {
	rootCmd.AddCommand(configCmd)
}
