package model

// DiagnosticKind categorises something the operator may need to fix by hand.
type DiagnosticKind string

const (
	// DiagnosticScopeNotFound marks a usage with no recognisable function opening above it.
	DiagnosticScopeNotFound DiagnosticKind = "scope-not-found"
	// DiagnosticMissingImport marks a changed file that does not appear to import the factory.
	DiagnosticMissingImport DiagnosticKind = "missing-import"
)

// Diagnostic is a per-line finding that did not result in an insertion.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int // one-based, 0 when the finding is file-wide
	Text    string
	Message string
}

// FileResult holds the outcome of rewriting a single source file.
type FileResult struct {
	Path        Path
	Changed     bool
	Usages      int
	Insertions  []Insertion
	Diagnostics []Diagnostic
	Before      []string // lines as read, kept for diff rendering
	After       []string
	Err         error // I/O failure; the run continues with the next file
}

// Summary aggregates the results of a run.
type Summary struct {
	Scanned     int
	Changed     int
	Insertions  int
	Diagnostics int
	Failed      int
	DryRun      bool
}

// Add folds a file result into the summary.
func (s *Summary) Add(result FileResult) {
	s.Scanned++

	if result.Err != nil {
		s.Failed++

		return
	}

	if result.Changed {
		s.Changed++
	}

	s.Insertions += len(result.Insertions)
	s.Diagnostics += len(result.Diagnostics)
}
