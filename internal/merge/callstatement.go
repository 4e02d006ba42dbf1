package merge

import (
	"regexp"
	"strings"

	"fwrap/internal/diag"
)

var callStatementRe = regexp.MustCompile(`^[\s{]*(.*)\(\*f2py_func\)\s*\(([^;]*)\)[\s;]*(.*?)[;}\s]*$`)

// CallStatement is an override call expression split around the call.
type CallStatement struct {
	PreCall  string
	PostCall string
	Args     []string
}

// ParseCallStatement splits "{pre; (*f2py_func)(a, b); post}".
func ParseCallStatement(s string) (CallStatement, error) {
	m := callStatementRe.FindStringSubmatch(strings.ReplaceAll(s, "\n", " "))
	if m == nil {
		return CallStatement{}, diag.Errorf(diag.MisCallStatement, "unable to parse call statement %q", s)
	}
	return CallStatement{
		PreCall:  strings.TrimSpace(m[1]),
		PostCall: strings.TrimSpace(m[3]),
		Args:     splitArgs(m[2]),
	}, nil
}

// splitArgs splits on commas outside parentheses.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

var callArgRe = regexp.MustCompile(`^\s*(&)?\s*([a-zA-Z0-9_]+)(\s*\+\s*([a-zA-Z0-9_]+))?\s*$`)

// argRef is a call position that names an argument directly.
type argRef struct {
	name    string
	address bool
	offset  string
}

func parseArgRef(expr string) (argRef, bool) {
	m := callArgRe.FindStringSubmatch(expr)
	if m == nil {
		return argRef{}, false
	}
	return argRef{name: m[2], address: m[1] != "", offset: m[4]}, true
}
