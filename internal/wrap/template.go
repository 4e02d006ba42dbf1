package wrap

import (
	"fmt"
	"slices"
	"strings"

	"fwrap/internal/code"
)

// TemplateVar is one substitution variable and its per-member values.
type TemplateVar struct {
	Name   string   `msgpack:"name"`
	Values []string `msgpack:"values"`
}

// Template describes a procedure that stands in for a family of others.
// Names are the host-visible names of the members; each variable holds one
// value per member, in the same order.
type Template struct {
	Names []string      `msgpack:"names"`
	Vars  []TemplateVar `msgpack:"vars"`
}

func (t *Template) Clone() *Template {
	cp := &Template{Names: slices.Clone(t.Names), Vars: make([]TemplateVar, len(t.Vars))}
	for i, v := range t.Vars {
		cp.Vars[i] = TemplateVar{Name: v.Name, Values: slices.Clone(v.Values)}
	}
	return cp
}

// Lookup returns the values of a variable.
func (t *Template) Lookup(name string) ([]string, bool) {
	for _, v := range t.Vars {
		if v.Name == name {
			return v.Values, true
		}
	}
	return nil, false
}

// VarRef is the placeholder written where a variable is substituted.
func VarRef(name string) string { return "{{" + name + "}}" }

func pyList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// StartLoop opens the Tempita loop over the variables, sorted by name.
func (t *Template) StartLoop(b *code.Buffer) {
	vars := slices.Clone(t.Vars)
	slices.SortFunc(vars, func(x, y TemplateVar) int { return strings.Compare(x.Name, y.Name) })
	switch len(vars) {
	case 0:
		return
	case 1:
		b.Putln(fmt.Sprintf("{{for %s in %s}}", vars[0].Name, pyList(vars[0].Values)))
		return
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	b.Putln("{{for " + strings.Join(names, ", "))
	for i, v := range vars {
		switch {
		case i == 0:
			b.Putln("      in zip(" + pyList(v.Values) + ",")
		case i == len(vars)-1:
			b.Putln("             " + pyList(v.Values) + ")}}")
		default:
			b.Putln("             " + pyList(v.Values) + ",")
		}
	}
}

func (t *Template) EndLoop(b *code.Buffer) {
	if len(t.Vars) > 0 {
		b.Putln("{{endfor}}")
	}
}
