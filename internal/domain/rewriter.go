package domain

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mouse-blink/clientguard/internal/adapter"
	"github.com/mouse-blink/clientguard/internal/domain/scopes"
	m "github.com/mouse-blink/clientguard/internal/model"
)

const defaultFilePerm os.FileMode = 0o644

// Rewriter inserts missing guard declarations into source files.
type Rewriter interface {
	// RewriteLines processes lines in memory and never touches the filesystem.
	RewriteLines(path m.Path, lines []string) m.FileResult
	// Rewrite loads path, processes it and, when write is set and something was
	// inserted, writes it back. Files without the trigger are never written.
	Rewrite(path m.Path, write bool) (m.FileResult, error)
	// Usages returns the lines that reference the client through the trigger and
	// are not opted out with an ignore directive.
	Usages(lines []string) []m.Usage
}

// RewriterOptions configures a Rewriter.
type RewriterOptions struct {
	Trigger     string
	Guard       string
	FactoryName string
	ImportLine  string
	AddImport   bool
	Locator     *scopes.Locator
	Logger      *slog.Logger
}

type rewriter struct {
	fsAdapter adapter.SourceFSAdapter
	opts      RewriterOptions
}

// NewRewriter creates a Rewriter backed by fsAdapter.
func NewRewriter(fsAdapter adapter.SourceFSAdapter, opts RewriterOptions) Rewriter {
	if opts.Locator == nil {
		opts.Locator = scopes.NewLocator()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &rewriter{fsAdapter: fsAdapter, opts: opts}
}

func (r *rewriter) Rewrite(path m.Path, write bool) (m.FileResult, error) {
	content, err := r.fsAdapter.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", path, err)

		return m.FileResult{Path: path, Err: err}, err
	}

	if !bytes.Contains(content, []byte(r.opts.Trigger)) {
		return m.FileResult{Path: path}, nil
	}

	result := r.RewriteLines(path, m.SplitLines(content))
	if !result.Changed || !write {
		return result, nil
	}

	perm := defaultFilePerm
	if info, statErr := r.fsAdapter.FileInfo(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	if err := r.fsAdapter.WriteFile(path, m.JoinLines(result.After), perm); err != nil {
		result.Err = fmt.Errorf("failed to write %s: %w", path, err)

		return result, result.Err
	}

	return result, nil
}

func (r *rewriter) RewriteLines(path m.Path, lines []string) m.FileResult {
	result := m.FileResult{
		Path:   path,
		Before: append([]string(nil), lines...),
	}

	lines = append([]string(nil), lines...)

	if ignoresFile(lines) {
		r.opts.Logger.Debug("file ignored", "path", path)
		result.After = lines

		return result
	}

	// i always indexes the live slice; an insertion above the usage moves it to i+1.
	for i := 0; i < len(lines); i++ {
		if !r.isUsage(lines[i]) {
			continue
		}

		if ignoredAt(lines, i) {
			r.opts.Logger.Debug("usage ignored", "path", path, "line", i+1)

			continue
		}

		result.Usages++

		start := r.opts.Locator.Locate(lines, i)
		if start == scopes.NotFound {
			result.Diagnostics = append(result.Diagnostics, m.Diagnostic{
				Kind:    m.DiagnosticScopeNotFound,
				Line:    i + 1,
				Text:    lines[i],
				Message: "no enclosing function found above usage",
			})
			r.opts.Logger.Warn("scope not found", "path", path, "line", i+1)

			continue
		}

		var inserted bool

		lines, inserted = Inject(lines, start, i, r.opts.Guard)
		if !inserted {
			continue
		}

		m.Shift(result.Insertions, start+1, 1)
		result.Insertions = append(result.Insertions, m.Insertion{At: start + 1, Text: r.opts.Guard, Scope: start})

		if rec, ok := r.opts.Locator.Match(lines[start]); ok {
			r.opts.Logger.Debug("guard inserted", "path", path, "scope", start+1, "recognizer", rec.Name, "usage", i+2)
		}

		i++
	}

	if len(result.Insertions) > 0 {
		result.Changed = true
		lines = r.checkImport(path, lines, &result)
	}

	result.After = lines

	return result
}

func (r *rewriter) Usages(lines []string) []m.Usage {
	if ignoresFile(lines) {
		return nil
	}

	var usages []m.Usage

	for i, line := range lines {
		if r.isUsage(line) && !ignoredAt(lines, i) {
			usages = append(usages, m.Usage{Line: i, Text: line})
		}
	}

	return usages
}

func (r *rewriter) isUsage(line string) bool {
	if !strings.Contains(line, r.opts.Trigger) {
		return false
	}

	return strings.TrimSpace(line) != strings.TrimSpace(r.opts.Guard)
}

func (r *rewriter) checkImport(path m.Path, lines []string, result *m.FileResult) []string {
	if HasImport(lines, r.opts.FactoryName) {
		return lines
	}

	if !r.opts.AddImport || r.opts.ImportLine == "" {
		result.Diagnostics = append(result.Diagnostics, m.Diagnostic{
			Kind:    m.DiagnosticMissingImport,
			Message: fmt.Sprintf("%s is used but not imported", r.opts.FactoryName),
		})
		r.opts.Logger.Warn("factory import not found", "path", path, "factory", r.opts.FactoryName)

		return lines
	}

	at := importInsertionPoint(lines)
	m.Shift(result.Insertions, at, 1)

	for i := range result.Diagnostics {
		if result.Diagnostics[i].Line > at {
			result.Diagnostics[i].Line++
		}
	}

	result.Insertions = append(result.Insertions, m.Insertion{At: at, Text: r.opts.ImportLine, Scope: -1})
	r.opts.Logger.Debug("import inserted", "path", path, "line", at+1)

	return insertLine(lines, at, r.opts.ImportLine)
}
