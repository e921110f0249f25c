package adapter

import (
	"slices"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	m "github.com/mouse-blink/clientguard/internal/model"
)

const diffContext = 3

// DiffRenderer turns the insertions made to a file into a textual patch.
type DiffRenderer interface {
	Render(name string, after []string, insertions []m.Insertion) ([]byte, error)
}

// UnifiedDiffRenderer renders unified diffs through go-diff.
type UnifiedDiffRenderer struct{}

// NewUnifiedDiffRenderer constructs a UnifiedDiffRenderer.
func NewUnifiedDiffRenderer() *UnifiedDiffRenderer {
	return &UnifiedDiffRenderer{}
}

// Render builds one hunk per group of nearby insertions. after is the rewritten
// file split into lines, insertions index into it.
func (r *UnifiedDiffRenderer) Render(name string, after []string, insertions []m.Insertion) ([]byte, error) {
	if len(insertions) == 0 {
		return nil, nil
	}

	// A trailing newline shows up as a final empty element, not as a line.
	if n := len(after); n > 0 && after[n-1] == "" {
		after = after[:n-1]
	}

	inserted := make(map[int]bool, len(insertions))
	for _, ins := range insertions {
		inserted[ins.At] = true
	}

	fileDiff := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
	}

	for _, span := range hunkSpans(len(after), insertions) {
		fileDiff.Hunks = append(fileDiff.Hunks, buildHunk(after, inserted, span[0], span[1]))
	}

	return diff.PrintFileDiff(fileDiff)
}

// hunkSpans returns merged [lo, hi] index ranges covering every insertion plus context.
func hunkSpans(n int, insertions []m.Insertion) [][2]int {
	positions := make([]int, 0, len(insertions))
	for _, ins := range insertions {
		if ins.At >= 0 && ins.At < n {
			positions = append(positions, ins.At)
		}
	}

	slices.Sort(positions)

	var spans [][2]int

	for _, at := range positions {
		lo := max(at-diffContext, 0)
		hi := min(at+diffContext, n-1)

		if len(spans) > 0 && lo <= spans[len(spans)-1][1]+1 {
			spans[len(spans)-1][1] = max(spans[len(spans)-1][1], hi)

			continue
		}

		spans = append(spans, [2]int{lo, hi})
	}

	return spans
}

func buildHunk(after []string, inserted map[int]bool, lo, hi int) *diff.Hunk {
	origBefore := 0

	for i := 0; i < lo; i++ {
		if !inserted[i] {
			origBefore++
		}
	}

	var body strings.Builder

	added := 0

	for i := lo; i <= hi; i++ {
		if inserted[i] {
			added++

			body.WriteString("+")
		} else {
			body.WriteString(" ")
		}

		body.WriteString(after[i])
		body.WriteString("\n")
	}

	newLines := hi - lo + 1
	origLines := newLines - added

	origStart := origBefore + 1
	if origLines == 0 {
		origStart = origBefore
	}

	return &diff.Hunk{
		OrigStartLine: int32(origStart),
		OrigLines:     int32(origLines),
		NewStartLine:  int32(lo + 1),
		NewLines:      int32(newLines),
		Body:          []byte(body.String()),
	}
}
