package controller

import (
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/clientguard/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	noInput bool // keys are not read, for tests and pipes
	mu      sync.Mutex
	program *tea.Program
	started bool
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress display.
func (t *TUI) Start(options ...StartOption) error {
	cfg := newStartConfig(options...)

	if err := t.startWithModel(newRunModel()); err != nil {
		return err
	}

	t.send(startMsg{total: cfg.total, dryRun: cfg.dryRun})

	return nil
}

func (t *TUI) startWithModel(model tea.Model) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	opts := []tea.ProgramOption{tea.WithOutput(t.output)}
	if t.noInput {
		opts = append(opts, tea.WithInput(nil))
	}

	t.program = tea.NewProgram(model, opts...)
	t.done = make(chan struct{})
	t.started = true

	program, done := t.program, t.done

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil {
			_, _ = fmt.Fprintf(t.output, "ui error: %v\n", err)
		}
	}()

	return nil
}

// send delivers msg to the running program. It is a no-op before Start.
func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(msg)
}

// Close tells the program that no more results are coming. A finished run
// stays on screen until the user quits.
func (t *TUI) Close() {
	t.send(closeMsg{})
}

// Wait blocks until the program exits.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	<-done
}

// DisplayFileResult forwards a processed file to the progress display.
func (t *TUI) DisplayFileResult(result m.FileResult) {
	t.send(fileResultMsg{result: result})
}

// DisplaySummary switches the display to the results view.
func (t *TUI) DisplaySummary(summary m.Summary) {
	t.send(summaryMsg{summary: summary})
}

// DisplayList opens a browsable list of candidate files and their usage counts.
func (t *TUI) DisplayList(usages map[m.Path]int) error {
	if len(usages) == 0 {
		_, _ = fmt.Fprintln(t.output, "No source files found")

		return nil
	}

	stats := make(map[string]int, len(usages))
	for path, count := range usages {
		stats[string(path)] = count
	}

	if err := t.startWithModel(newListModel()); err != nil {
		return err
	}

	t.send(listMsg{usages: stats})

	return nil
}

// DisplayDiff prints the patch with colored additions and hunk headers.
func (t *TUI) DisplayDiff(_ m.Path, patch []byte) {
	lines := strings.Split(strings.TrimRight(string(patch), "\n"), "\n")
	for _, line := range lines {
		_, _ = fmt.Fprintln(t.output, renderPatchLine(line, 0))
	}
}
