package controller

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/clientguard/internal/model"
)

// SimpleUI implements UI using cobra Command's output streams.
type SimpleUI struct {
	cmd    *cobra.Command
	dryRun bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(options ...StartOption) error {
	cfg := newStartConfig(options...)
	s.dryRun = cfg.dryRun

	if cfg.total > 0 {
		s.printf("Scanning %d files\n", cfg.total)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Wait returns immediately; plain output has nothing to wait for.
func (s *SimpleUI) Wait() {}

// DisplayFileResult prints one progress line per file, followed by its diagnostics.
func (s *SimpleUI) DisplayFileResult(result m.FileResult) {
	switch {
	case result.Err != nil:
		s.printf("failed     %s: %v\n", result.Path, result.Err)
	case result.Changed && s.dryRun:
		s.printf("would fix  %s (%d insertions)\n", result.Path, len(result.Insertions))
	case result.Changed:
		s.printf("fixed      %s (%d insertions)\n", result.Path, len(result.Insertions))
	default:
		s.printf("unchanged  %s\n", result.Path)
	}

	for _, d := range result.Diagnostics {
		if d.Line > 0 {
			s.printf("  %s:%d: %s: %s\n", result.Path, d.Line, d.Kind, d.Message)
		} else {
			s.printf("  %s: %s: %s\n", result.Path, d.Kind, d.Message)
		}
	}
}

// DisplaySummary prints the run totals as a table and the count of changed files.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Scanned", "Changed", "Insertions", "Diagnostics", "Failed"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.Append([]string{
		fmt.Sprintf("%d", summary.Scanned),
		fmt.Sprintf("%d", summary.Changed),
		fmt.Sprintf("%d", summary.Insertions),
		fmt.Sprintf("%d", summary.Diagnostics),
		fmt.Sprintf("%d", summary.Failed),
	})
	table.Render()
	s.printf("\n%s", tableBuffer.String())

	verb := "changed"
	if summary.DryRun {
		verb = "would change"
	}

	s.printf("%d files %s\n", summary.Changed, verb)
}

// DisplayList prints the usage count of every candidate file.
func (s *SimpleUI) DisplayList(usages map[m.Path]int) error {
	if len(usages) == 0 {
		s.printf("No source files found\n")

		return nil
	}

	pathsList := make([]string, 0, len(usages))
	for path := range usages {
		pathsList = append(pathsList, string(path))
	}

	sort.Strings(pathsList)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Usages"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	total := 0

	for _, pathStr := range pathsList {
		count := usages[m.Path(pathStr)]
		table.Append([]string{pathStr, fmt.Sprintf("%d", count)})

		total += count
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(pathsList)),
		fmt.Sprintf("%d", total),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplayDiff writes the patch unchanged.
func (s *SimpleUI) DisplayDiff(_ m.Path, patch []byte) {
	_, _ = s.cmd.OutOrStdout().Write(patch)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
