package diag

import (
	"fmt"
	"strings"
)

// FormatGolden renders diagnostics as one stable line each. Used by tests
// and by the plain (non-tty) summary.
func FormatGolden(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		subject := d.Subject
		if subject == "" {
			subject = "-"
		}
		if d.File != "" {
			subject = d.File + ":" + subject
		}
		fmt.Fprintf(&sb, "%s %s %s: %s", d.Severity, d.Code.ID(), subject, d.Message)
		for _, n := range d.Notes {
			sb.WriteString("\n  note: ")
			sb.WriteString(n)
		}
	}
	return sb.String()
}
