// Package cmd provides the root command and CLI setup for clientguard.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/clientguard/internal/adapter"
	"github.com/mouse-blink/clientguard/internal/config"
	"github.com/mouse-blink/clientguard/internal/controller"
	"github.com/mouse-blink/clientguard/internal/domain"
)

var fsAdapter adapter.SourceFSAdapter
var diffRenderer adapter.DiffRenderer
var workflow domain.Workflow
var ui controller.UI
var logger *slog.Logger
var logLevel = new(slog.LevelVar)

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	diffRenderer = adapter.NewUnifiedDiffRenderer()
	workflow = domain.NewWorkflow(fsAdapter, diffRenderer, ui, logger)
}

var configFlag string
var verboseFlag bool
var dryRunFlag bool
var rootSelection selectionFlags

// selectionFlags override the configuration for a single invocation.
type selectionFlags struct {
	trigger string
	guard   string
	exclude []string
}

func addSelectionFlags(cmd *cobra.Command, flags *selectionFlags) {
	cmd.Flags().StringVar(&flags.trigger, "trigger", "", "substring that marks a usage of the client (default \"supabase.\")")
	cmd.Flags().StringVar(&flags.guard, "guard", "", "guard line template, may use {{client}} and {{factory}}")
	cmd.Flags().StringArrayVarP(&flags.exclude, "exclude", "x", nil, "exclude files matching a glob relative to the root (can be repeated)")
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clientguard [root]",
		Short: "Declare the shared client in every function that uses it",
		Long: `clientguard scans a TypeScript/JavaScript tree for calls through a shared
client (by default "supabase.") and inserts a local declaration such as

    const supabase = getSupabaseClient()

at the top of every function that uses the client without declaring it.
Running it twice is safe: functions that already hold the declaration are left alone.

Settings are read from .clientguard.toml in the root, then CLIENTGUARD_*
environment variables (a .env file is loaded first), then flags.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verboseFlag {
				logLevel.Set(slog.LevelDebug)
			}
		},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, rootSelection)
			if err != nil {
				return err
			}

			return workflow.Run(domain.RunArgs{Config: cfg, DryRun: dryRunFlag})
		},
	}
	cmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to the configuration file (default <root>/"+config.FileName+")")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log every inserted declaration")
	cmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "report what would change without writing files")
	addSelectionFlags(cmd, &rootSelection)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for the optional root argument and applies flag overrides.
func loadConfig(args []string, flags selectionFlags) (*config.Config, error) {
	root := ""
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := config.Load(configFlag, root)
	if err != nil {
		return nil, err
	}

	if flags.trigger != "" {
		cfg.TriggerSubstring = flags.trigger
	}

	if flags.guard != "" {
		cfg.GuardLineTemplate = flags.guard
	}

	cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, flags.exclude...)

	return cfg, nil
}
