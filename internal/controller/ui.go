// Package controller provides the progress and summary displays of the clientguard CLI.
package controller

import (
	m "github.com/mouse-blink/clientguard/internal/model"
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	total  int
	dryRun bool
}

// WithTotal sets the number of files the run is going to process.
func WithTotal(total int) StartOption {
	return func(c *StartConfig) {
		c.total = total
	}
}

// WithDryRun marks the run as not writing any file.
func WithDryRun() StartOption {
	return func(c *StartConfig) {
		c.dryRun = true
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	var cfg StartConfig

	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how run progress, summaries, usage lists and diffs are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish (user closes it)
	DisplayFileResult(result m.FileResult)
	DisplaySummary(summary m.Summary)
	DisplayList(usages map[m.Path]int) error
	DisplayDiff(path m.Path, patch []byte)
}
