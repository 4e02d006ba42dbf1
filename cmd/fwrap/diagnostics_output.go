package main

import (
	"fmt"
	"io"

	"fwrap/internal/diag"
	"fwrap/internal/diagfmt"
)

type diagOptions struct {
	format    string
	max       int
	withNotes bool
	verbose   bool
}

func readDiagFormat(format string) error {
	switch format {
	case "pretty", "json", "short":
		return nil
	}
	return fmt.Errorf("unknown format %q (expected pretty|json|short)", format)
}

// printDiagnostics renders bag in the chosen format. Info diagnostics are
// only shown with verbose.
func printDiagnostics(out io.Writer, bag *diag.Bag, opts diagOptions) error {
	minSev := diag.SevWarning
	if opts.verbose {
		minSev = diag.SevInfo
	}
	switch opts.format {
	case "json":
		return diagfmt.JSON(out, bag, diagfmt.JSONOpts{
			Max:          opts.max,
			IncludeNotes: opts.withNotes,
			MinSeverity:  minSev,
		})
	case "short":
		var items []diag.Diagnostic
		for _, d := range bag.Items() {
			if d.Severity >= minSev {
				items = append(items, d)
			}
		}
		if s := diag.FormatGolden(items); s != "" {
			_, err := fmt.Fprintln(out, s)
			return err
		}
		return nil
	}
	if bag.Len() == 0 {
		return nil
	}
	return diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{
		Color:       useColor(),
		Width:       terminalWidth(),
		ShowNotes:   opts.withNotes,
		Summary:     true,
		MinSeverity: minSev,
		Max:         opts.max,
	})
}

// fileReporter stamps the input path on diagnostics that have none.
type fileReporter struct {
	next diag.Reporter
	path string
}

func (r fileReporter) Report(d diag.Diagnostic) {
	if d.File == "" {
		d.File = r.path
	}
	r.next.Report(d)
}
