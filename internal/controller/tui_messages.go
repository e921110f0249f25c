package controller

import (
	"time"

	m "github.com/mouse-blink/clientguard/internal/model"
)

// Message types.
type tickMsg time.Time

type startMsg struct {
	total  int
	dryRun bool
}

type fileResultMsg struct {
	result m.FileResult
}

type summaryMsg struct {
	summary m.Summary
}

type closeMsg struct{}

type listMsg struct {
	usages map[string]int
}

// List item types.
type fileItem struct {
	path  string
	count int
}

func (f fileItem) FilterValue() string {
	return f.path
}

type resultItem struct {
	path    string
	status  string
	details []string
}

func (r resultItem) FilterValue() string {
	return r.path + " " + r.status
}
