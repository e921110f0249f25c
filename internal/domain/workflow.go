// Package domain rewrites source files so that every function using the shared
// client declares it first.
package domain

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mouse-blink/clientguard/internal/adapter"
	"github.com/mouse-blink/clientguard/internal/config"
	"github.com/mouse-blink/clientguard/internal/controller"
	"github.com/mouse-blink/clientguard/internal/domain/scopes"
	m "github.com/mouse-blink/clientguard/internal/model"
)

// RunArgs contains the arguments for rewriting a tree.
type RunArgs struct {
	Config *config.Config
	DryRun bool
}

// ListArgs contains the arguments for listing candidate files.
type ListArgs struct {
	Config *config.Config
}

// DiffArgs contains the arguments for previewing changes as a patch.
type DiffArgs struct {
	Config *config.Config
}

// Workflow defines the operations behind the CLI commands.
type Workflow interface {
	Run(args RunArgs) error
	List(args ListArgs) error
	Diff(args DiffArgs) error
}

type workflow struct {
	fsAdapter adapter.SourceFSAdapter
	renderer  adapter.DiffRenderer
	ui        controller.UI
	logger    *slog.Logger
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	renderer adapter.DiffRenderer,
	ui controller.UI,
	logger *slog.Logger,
) Workflow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &workflow{
		fsAdapter: fsAdapter,
		renderer:  renderer,
		ui:        ui,
		logger:    logger,
	}
}

// Run rewrites every candidate file, one at a time. A file that cannot be read or
// written is reported and skipped; only setup failures abort the run.
func (w *workflow) Run(args RunArgs) error {
	rw, root, paths, err := w.prepare(args.Config)
	if err != nil {
		return err
	}

	options := []controller.StartOption{controller.WithTotal(len(paths))}
	if args.DryRun {
		options = append(options, controller.WithDryRun())
	}

	if err := w.ui.Start(options...); err != nil {
		return fmt.Errorf("failed to start UI: %w", err)
	}

	summary := m.Summary{DryRun: args.DryRun}

	for _, path := range paths {
		result, err := rw.Rewrite(path, !args.DryRun)
		if err != nil {
			w.logger.Error("failed to rewrite file", "path", path, "error", err)
			result.Err = err
		}

		result.Path = w.displayPath(root, path)
		summary.Add(result)
		w.ui.DisplayFileResult(result)
	}

	w.ui.DisplaySummary(summary)
	w.ui.Close()
	w.ui.Wait()

	w.logger.Info("run finished",
		"scanned", summary.Scanned,
		"changed", summary.Changed,
		"insertions", summary.Insertions,
		"diagnostics", summary.Diagnostics,
		"failed", summary.Failed,
		"dry_run", summary.DryRun,
	)

	return nil
}

// List counts usages in every candidate file without modifying anything.
func (w *workflow) List(args ListArgs) error {
	rw, root, paths, err := w.prepare(args.Config)
	if err != nil {
		return err
	}

	usages := make(map[m.Path]int, len(paths))

	for _, path := range paths {
		file, err := w.load(path)
		if err != nil {
			w.logger.Error("failed to read file", "path", path, "error", err)

			continue
		}

		usages[w.displayPath(root, path)] = len(rw.Usages(file.Lines))
	}

	if err := w.ui.DisplayList(usages); err != nil {
		return err
	}

	w.ui.Wait()

	return nil
}

// Diff prints a unified diff for every file a run would change.
func (w *workflow) Diff(args DiffArgs) error {
	rw, root, paths, err := w.prepare(args.Config)
	if err != nil {
		return err
	}

	for _, path := range paths {
		result, err := rw.Rewrite(path, false)
		if err != nil {
			w.logger.Error("failed to rewrite file", "path", path, "error", err)

			continue
		}

		if !result.Changed {
			continue
		}

		display := w.displayPath(root, path)

		patch, err := w.renderer.Render(string(display), result.After, result.Insertions)
		if err != nil {
			w.logger.Error("failed to render diff", "path", path, "error", err)

			continue
		}

		w.ui.DisplayDiff(display, patch)
	}

	return nil
}

// prepare validates cfg, builds the rewriter and selects the candidate files.
func (w *workflow) prepare(cfg *config.Config) (Rewriter, m.Path, []m.Path, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", nil, fmt.Errorf("invalid configuration: %w", err)
	}

	custom, err := scopes.Compile(cfg.ScopePatterns)
	if err != nil {
		return nil, "", nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rw := NewRewriter(w.fsAdapter, RewriterOptions{
		Trigger:     cfg.TriggerSubstring,
		Guard:       cfg.GuardLine(),
		FactoryName: cfg.FactoryName,
		ImportLine:  cfg.ImportLine,
		AddImport:   cfg.AddImport,
		Locator:     scopes.NewLocator(append(scopes.Default(), custom...)...),
		Logger:      w.logger,
	})

	root := m.Path(cfg.ScanRoot)

	paths, err := w.fsAdapter.Select(adapter.SelectArgs{
		Root:               root,
		Suffixes:           cfg.Suffixes(),
		ExcludedDirs:       cfg.ExcludedDirs,
		ExcludeGlobs:       cfg.ExcludeGlobs,
		RespectIgnoreFiles: cfg.RespectIgnoreFiles,
	})
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to select files: %w", err)
	}

	w.logger.Debug("selected files", "root", root, "count", len(paths))

	return rw, root, paths, nil
}

func (w *workflow) load(path m.Path) (m.SourceFile, error) {
	content, err := w.fsAdapter.ReadFile(path)
	if err != nil {
		return m.SourceFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return m.SourceFile{Path: path, Lines: m.SplitLines(content)}, nil
}

// displayPath shortens path relative to root when possible.
func (w *workflow) displayPath(root, path m.Path) m.Path {
	if root == "" {
		return path
	}

	rel, err := w.fsAdapter.RelPath(root, path)
	if err != nil {
		return path
	}

	return m.Path(filepath.ToSlash(string(rel)))
}
