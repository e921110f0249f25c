package model

// Insertion records a guard or import line added by the rewriter.
type Insertion struct {
	// At is the zero-based index of the inserted line in the final line sequence.
	At   int
	Text string
	// Scope is the zero-based index of the scope-start line the insertion follows.
	// It is -1 for import insertions.
	Scope int
}

// Shift moves insertions at or after index at down by n lines.
func Shift(insertions []Insertion, at, n int) {
	for i := range insertions {
		if insertions[i].At >= at {
			insertions[i].At += n
		}

		if insertions[i].Scope >= at {
			insertions[i].Scope += n
		}
	}
}
