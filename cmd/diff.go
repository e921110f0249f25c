package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/clientguard/internal/domain"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()
var diffSelection selectionFlags

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [root]",
		Short: "Print a unified diff of the declarations run would insert",
		Long:  "Print a unified diff of the declarations run would insert. Nothing is written; the output can be applied with patch -p1 from the root.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, diffSelection)
			if err != nil {
				return err
			}

			return workflow.Diff(domain.DiffArgs{Config: cfg})
		},
	}
	addSelectionFlags(cmd, &diffSelection)

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
