package expr

import (
	"fmt"
	"slices"
	"strings"
)

// Part is one piece of a Template: literal text, or a hole naming a native
// variable to be replaced at substitution time.
type Part struct {
	Text string `msgpack:"t,omitempty"`
	Hole string `msgpack:"h,omitempty"`
}

// Template is generated code with named holes.
type Template []Part

// MissingNameError is returned when a hole has no entry in the variable map.
type MissingNameError struct {
	Name string
}

func (e *MissingNameError) Error() string {
	return fmt.Sprintf("no substitution for %q", e.Name)
}

// Text returns a template with no holes.
func Text(s string) Template {
	if s == "" {
		return nil
	}
	return Template{{Text: s}}
}

// Hole returns a template that is a single substitution of name.
func Hole(name string) Template {
	return Template{{Hole: name}}
}

// Render substitutes every hole from vars.
func (t Template) Render(vars map[string]string) (string, error) {
	var sb strings.Builder
	for _, p := range t {
		if p.Hole == "" {
			sb.WriteString(p.Text)
			continue
		}
		v, ok := vars[p.Hole]
		if !ok {
			return "", &MissingNameError{Name: p.Hole}
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// Holes lists hole names in order of first appearance.
func (t Template) Holes() []string {
	var out []string
	for _, p := range t {
		if p.Hole != "" && !slices.Contains(out, p.Hole) {
			out = append(out, p.Hole)
		}
	}
	return out
}

func (t Template) Equal(o Template) bool {
	return slices.Equal(t.normalize(), o.normalize())
}

// normalize merges adjacent text parts so that equal renderings compare equal.
func (t Template) normalize() Template {
	var out Template
	for _, p := range t {
		if p.Hole == "" {
			if p.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Hole == "" {
				out[n-1].Text += p.Text
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// String renders holes as {name}; used for debugging and golden tests.
func (t Template) String() string {
	var sb strings.Builder
	for _, p := range t {
		if p.Hole != "" {
			sb.WriteString("{" + p.Hole + "}")
		} else {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

type builder struct {
	parts Template
}

func (b *builder) text(s string) {
	if s == "" {
		return
	}
	if n := len(b.parts); n > 0 && b.parts[n-1].Hole == "" {
		b.parts[n-1].Text += s
		return
	}
	b.parts = append(b.parts, Part{Text: s})
}

func (b *builder) hole(name string) {
	b.parts = append(b.parts, Part{Hole: name})
}
