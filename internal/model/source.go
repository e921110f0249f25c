// Package model defines the data structures shared by the selector, the rewriter and the UI.
package model

import "strings"

// Path represents a file system path.
type Path string

// SourceFile is a single candidate file loaded as lines.
// Line positions are not stable: inserting at index p shifts every line at p or later by one.
type SourceFile struct {
	Path  Path
	Lines []string
}

// SplitLines breaks raw file content into lines. CRLF endings are read as LF.
func SplitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	return strings.Split(text, "\n")
}

// JoinLines joins lines with a single line feed.
func JoinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// Usage is a line that references the shared client through the trigger substring.
type Usage struct {
	Line int // zero-based index at the time it was evaluated
	Text string
}
