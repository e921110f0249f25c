package domain

import "strings"

// HasGuard reports whether any line in [start, usage) is the guard declaration.
// Lines are compared with surrounding whitespace trimmed so re-indented guards count.
func HasGuard(lines []string, start, usage int, guard string) bool {
	if start < 0 {
		start = 0
	}

	if usage > len(lines) {
		usage = len(lines)
	}

	want := strings.TrimSpace(guard)

	for i := start; i < usage; i++ {
		if strings.TrimSpace(lines[i]) == want {
			return true
		}
	}

	return false
}

// Inject inserts guard right after the scope-start line unless the span between the
// scope start and the usage already holds one. It returns the resulting lines and
// whether an insertion happened. Invalid indices leave lines untouched.
func Inject(lines []string, start, usage int, guard string) ([]string, bool) {
	if start < 0 || start >= usage || usage > len(lines) {
		return lines, false
	}

	if HasGuard(lines, start, usage, guard) {
		return lines, false
	}

	return insertLine(lines, start+1, guard), true
}

// insertLine places text at index at, shifting every later line down by one.
func insertLine(lines []string, at int, text string) []string {
	if at < 0 || at > len(lines) {
		return lines
	}

	lines = append(lines, "")
	copy(lines[at+1:], lines[at:])
	lines[at] = text

	return lines
}
