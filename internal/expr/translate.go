package expr

import (
	"fmt"
	"regexp"
	"strings"

	"fwrap/internal/diag"
)

// TranslationError reports a call-statement expression that could not be
// translated. Offending is the input from the point of failure onwards.
type TranslationError struct {
	Source    string
	Offending string
	Reason    string
}

func (e *TranslationError) Error() string {
	if e.Offending == "" {
		return fmt.Sprintf("could not auto-translate: %s (%s)", e.Source, e.Reason)
	}
	return fmt.Sprintf("could not auto-translate: %s (%s at %q)", e.Source, e.Reason, e.Offending)
}

func (e *TranslationError) Unwrap() error {
	return &diag.Error{Code: diag.ExprUntranslatable, Msg: e.Reason}
}

var (
	zeroRe           = regexp.MustCompile(`^[()0.,\s]+$`)
	complexLiteralRe = regexp.MustCompile(`^\s*\((-?[0-9.,\s]+),(-?[0-9.,\s]+)\)\s*$`)
)

// Translate converts a C-like call-statement expression into an Expr.
// Variables become holes; len/shape/size/rank map to array accessors,
// && and || to and/or, integer / to //, and c ? a : b to a conditional.
func Translate(src string) (*Expr, error) {
	if m := complexLiteralRe.FindStringSubmatch(src); m != nil {
		re, im := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if zeroRe.MatchString(im) {
			return Literal(re), nil
		}
		return Literal(re + " + " + im + "*1j"), nil
	}
	root, err := parse(src)
	if err != nil {
		te := &TranslationError{Source: src, Reason: err.Error()}
		if pe, ok := err.(*parseError); ok && pe.pos < len(src) {
			te.Offending = src[pe.pos:]
		}
		return nil, te
	}
	code := &renderer{}
	code.root(root)
	doc := &renderer{doc: true}
	doc.root(root)
	var requires []string
	vars(root, map[string]bool{}, &requires)
	return &Expr{Code: code.b.parts, Doc: doc.b.parts, Requires: requires}, nil
}

// TranslateOrPlaceholder translates src and, on failure, reports a warning
// against subject and returns a manual-fixup placeholder.
func TranslateOrPlaceholder(src, subject string, rep diag.Reporter) *Expr {
	e, err := Translate(src)
	if err == nil {
		return e
	}
	if rep != nil {
		diag.ReportWarning(rep, diag.ExprUntranslatable, subject, err.Error()).
			WithNote("a placeholder was generated; edit the wrapper by hand").
			Emit()
	}
	return Placeholder(src)
}
