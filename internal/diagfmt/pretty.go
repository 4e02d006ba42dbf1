// Package diagfmt renders diagnostic bags for the terminal and for tools.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"fwrap/internal/diag"
)

type palette struct {
	err, warn, info, code, subject, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan),
		code:    color.New(color.Faint),
		subject: color.New(color.Bold),
		note:    color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.subject, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes one block per diagnostic:
//
//	<file>:<subject>: <SEV> <CODE>: <message>
//	  note: <note>
//
// The bag is expected to be sorted already.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	var errs, warns, shown int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
		if d.Severity < opts.MinSeverity || (opts.Max > 0 && shown >= opts.Max) {
			continue
		}
		shown++
		head := fmt.Sprintf("%s: %s %s: ",
			p.subject.Sprint(location(d)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()))
		indent := runewidth.StringWidth(location(d)+d.Severity.String()+d.Code.ID()) + 5
		if _, err := fmt.Fprintln(w, head+wrap(d.Message, opts.Width, indent)); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), wrap(n, opts.Width, 8)); err != nil {
				return err
			}
		}
	}
	if hidden := bag.Len() - shown; opts.Max > 0 && hidden > 0 && shown == opts.Max {
		if _, err := fmt.Fprintf(w, "... %d more not shown\n", hidden); err != nil {
			return err
		}
	}
	if opts.Summary {
		_, err := fmt.Fprintln(w, summary(errs, warns))
		return err
	}
	return nil
}

func location(d diag.Diagnostic) string {
	subject := d.Subject
	if subject == "" {
		subject = "-"
	}
	if d.File != "" {
		return d.File + ":" + subject
	}
	return subject
}

func summary(errs, warns int) string {
	return plural(errs, "error") + ", " + plural(warns, "warning")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// wrap breaks msg into lines of at most width columns. Continuation lines
// are indented by indent spaces; the first line is assumed to start at
// that column already.
func wrap(msg string, width, indent int) string {
	if width <= 0 || width-indent < 20 {
		return msg
	}
	limit := width - indent
	var b strings.Builder
	col := 0
	for i, word := range strings.Fields(msg) {
		ww := runewidth.StringWidth(word)
		if i > 0 {
			if col+1+ww > limit {
				b.WriteByte('\n')
				b.WriteString(strings.Repeat(" ", indent))
				col = 0
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(word)
		col += ww
	}
	return b.String()
}
