package dedup

import (
	"strconv"
	"strings"

	"fwrap/internal/wrap"
)

// TemplateManager allocates substitution variables. A value tuple seen
// before reuses its variable; otherwise the variable is named after the
// attribute, with a counter from the second use of a prefix on.
type TemplateManager struct {
	byValues map[string]string
	counters map[string]int
	vars     []wrap.TemplateVar
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{byValues: make(map[string]string), counters: make(map[string]int)}
}

// AddVariable returns the variable standing for values.
func (m *TemplateManager) AddVariable(values []string, prefix string) string {
	key := strings.Join(values, "\x00")
	if name, ok := m.byValues[key]; ok {
		return name
	}
	m.counters[prefix]++
	name := prefix
	if n := m.counters[prefix]; n > 1 {
		name += strconv.Itoa(n)
	}
	m.byValues[key] = name
	m.vars = append(m.vars, wrap.TemplateVar{Name: name, Values: append([]string(nil), values...)})
	return name
}

// CodeForValues is AddVariable rendered as a reference.
func (m *TemplateManager) CodeForValues(values []string, prefix string) string {
	return wrap.VarRef(m.AddVariable(values, prefix))
}

// Template returns the descriptor for a group with the given member names.
func (m *TemplateManager) Template(names []string) *wrap.Template {
	t := &wrap.Template{Names: append([]string(nil), names...)}
	for _, v := range m.vars {
		t.Vars = append(t.Vars, wrap.TemplateVar{Name: v.Name, Values: append([]string(nil), v.Values...)})
	}
	return t
}
