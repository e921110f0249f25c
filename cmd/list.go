package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/clientguard/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()
var listSelection selectionFlags

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [root]",
		Short: "List candidate files and their client usages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, listSelection)
			if err != nil {
				return err
			}

			return workflow.List(domain.ListArgs{Config: cfg})
		},
	}
	addSelectionFlags(cmd, &listSelection)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
