package diagfmt

import "fwrap/internal/diag"

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// Width wraps messages at this many columns; 0 disables wrapping.
	Width     int
	ShowNotes bool
	// Summary appends an "N errors, M warnings" line.
	Summary bool
	// MinSeverity hides lower severities (info is hidden by default callers).
	MinSeverity diag.Severity
	Max         int
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Max          int
	IncludeNotes bool
	MinSeverity  diag.Severity
}
