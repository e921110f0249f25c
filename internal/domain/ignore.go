package domain

import (
	"strings"
)

const (
	ignoreDirective     = "clientguard:ignore"
	ignoreFileDirective = "clientguard:ignore-file"
)

type ignoreScope int

const (
	ignoreNone ignoreScope = iota
	ignoreLine             // the directive's own line
	ignoreNextLine         // a comment alone on its line covers the next code line
	ignoreFile
)

// parseIgnoreDirective classifies a line by the ignore directive it carries, if any.
// The directive must sit in a //, /* */ or JSX {/* */} comment.
func parseIgnoreDirective(line string) ignoreScope {
	idx := strings.Index(line, ignoreDirective)
	if idx < 0 {
		return ignoreNone
	}

	before := strings.TrimRight(line[:idx], " \t")

	var opener string

	switch {
	case strings.HasSuffix(before, "//"):
		opener = "//"
	case strings.HasSuffix(before, "/*"):
		opener = "/*"
	default:
		return ignoreNone
	}

	rest := line[idx+len(ignoreDirective):]

	switch {
	case strings.HasPrefix(rest, "-file"):
		rest = rest[len("-file"):]
		if !endsDirective(rest) {
			return ignoreNone
		}

		return ignoreFile
	case !endsDirective(rest):
		return ignoreNone
	}

	code := strings.TrimSpace(strings.TrimSuffix(before, opener))
	if code == "" || code == "{" {
		return ignoreNextLine
	}

	return ignoreLine
}

// endsDirective reports whether rest closes the directive word.
func endsDirective(rest string) bool {
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '*'
}

// ignoresFile reports whether any line opts the whole file out.
func ignoresFile(lines []string) bool {
	for _, line := range lines {
		if parseIgnoreDirective(line) == ignoreFile {
			return true
		}
	}

	return false
}

// ignoredAt reports whether the usage on line i is covered by a directive on the
// same line or by a standalone directive on the closest non-blank line above it.
func ignoredAt(lines []string, i int) bool {
	if i < 0 || i >= len(lines) {
		return false
	}

	if parseIgnoreDirective(lines[i]) == ignoreLine {
		return true
	}

	for j := i - 1; j >= 0; j-- {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}

		return parseIgnoreDirective(lines[j]) == ignoreNextLine
	}

	return false
}
