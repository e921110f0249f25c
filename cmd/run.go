package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/clientguard/internal/domain"
)

var runDryRunFlag bool
var runSelection selectionFlags

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Insert missing client declarations",
		Long: `Rewrite every candidate file under root (default: the configured scan_root)
so that each function using the client declares it first. Files are written
only when something was inserted. Usages outside any recognisable function are
reported and left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, runSelection)
			if err != nil {
				return err
			}

			return workflow.Run(domain.RunArgs{Config: cfg, DryRun: runDryRunFlag})
		},
	}
	cmd.Flags().BoolVarP(&runDryRunFlag, "dry-run", "n", false, "report what would change without writing files")
	addSelectionFlags(cmd, &runSelection)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}
