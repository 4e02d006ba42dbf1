package dedup

import (
	"fmt"
	"slices"
	"strings"

	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

// attr is a string attribute that may differ between template members.
type attr[T any] struct {
	prefix string
	get    func(T) string
	set    func(T, string)
}

var procAttrs = []attr[*wrap.Procedure]{
	{"name", func(p *wrap.Procedure) string { return p.Name }, func(p *wrap.Procedure, v string) { p.Name = v }},
	{"fc_name", func(p *wrap.Procedure) string { return p.CallName }, func(p *wrap.Procedure, v string) { p.CallName = v }},
	{"native_name", func(p *wrap.Procedure) string { return p.NativeName }, func(p *wrap.Procedure, v string) { p.NativeName = v }},
	{"callstatement", func(p *wrap.Procedure) string { return p.CallStatement }, func(p *wrap.Procedure, v string) { p.CallStatement = v }},
	{"pre_call", func(p *wrap.Procedure) string { return p.PreCallCode }, func(p *wrap.Procedure, v string) { p.PreCallCode = v }},
	{"post_call", func(p *wrap.Procedure) string { return p.PostCallCode }, func(p *wrap.Procedure, v string) { p.PostCallCode = v }},
}

var argAttrs = []attr[*wrap.Arg]{
	{"name", func(a *wrap.Arg) string { return a.Name }, func(a *wrap.Arg, v string) { a.Name = v }},
	{"cy_name", func(a *wrap.Arg) string { return a.CyName }, func(a *wrap.Arg, v string) { a.CyName = v }},
	{"name", func(a *wrap.Arg) string { return a.ProcName }, func(a *wrap.Arg, v string) { a.ProcName = v }},
	{"ktp", func(a *wrap.Arg) string { return a.KTP }, func(a *wrap.Arg, v string) { a.KTP = v }},
	{"npy_enum", func(a *wrap.Arg) string { return a.NpyEnum }, func(a *wrap.Arg, v string) { a.NpyEnum = v }},
	{"py_type", func(a *wrap.Arg) string { return a.PyType }, func(a *wrap.Arg, v string) { a.PyType = v }},
	{"type", func(a *wrap.Arg) string { return a.DType.Type }, func(a *wrap.Arg, v string) { a.DType.Type = v }},
	{"kind", func(a *wrap.Arg) string { return a.DType.Kind }, func(a *wrap.Arg, v string) { a.DType.Kind = v }},
	{"ktp", func(a *wrap.Arg) string { return a.DType.KTP }, func(a *wrap.Arg, v string) { a.DType.KTP = v }},
}

func mergeAttrs[T any](attrs []attr[T], nodes []T, dst T, m *TemplateManager) {
	for _, at := range attrs {
		values := make([]string, len(nodes))
		for i, n := range nodes {
			values[i] = at.get(n)
		}
		if allEqual(values) {
			at.set(dst, values[0])
			continue
		}
		at.set(dst, m.CodeForValues(values, at.prefix))
	}
}

func allEqual[T comparable](values []T) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Merge builds one templated procedure from procedures whose arguments are
// pairwise equal up to type. The result is placed under the first member's
// name slot; its Template lists every member.
func Merge(procs []*wrap.Procedure) (*wrap.Procedure, error) {
	if len(procs) < 2 {
		return nil, diag.Errorf(diag.MisInfo, "a template needs at least two procedures")
	}
	first := procs[0]
	for _, p := range procs {
		if p.Template != nil {
			return nil, diag.Errorf(diag.UnsInfo, "%s is already a template", p.Name)
		}
	}
	if err := checkProcedures(procs); err != nil {
		return nil, err
	}

	m := NewTemplateManager()
	result := first.Clone()
	mergeAttrs(procAttrs, procs, result, m)

	args := make([]*wrap.Arg, len(procs))
	for slot := 1; slot <= first.Args.Len(); slot++ {
		id := wrap.ArgID(slot)
		for i, p := range procs {
			args[i] = p.Arg(id)
		}
		merged, err := mergeArg(args, m)
		if err != nil {
			return nil, err
		}
		result.Args.Set(id, merged)
	}

	var dtypes []native.DType
	seen := make(map[string]bool)
	for _, p := range procs {
		for _, dt := range p.DTypes {
			if !seen[dt.KTP] {
				seen[dt.KTP] = true
				dtypes = append(dtypes, dt)
			}
		}
	}
	result.DTypes = dtypes

	names := make([]string, len(procs))
	for i, p := range procs {
		names[i] = p.Name
	}
	result.Template = m.Template(names)
	return result, nil
}

// checkProcedures verifies everything that cannot be parametrized.
func checkProcedures(procs []*wrap.Procedure) error {
	first := procs[0]
	for _, p := range procs[1:] {
		switch {
		case p.Kind != first.Kind:
			return diag.Errorf(diag.MisProcedureKind, "%s is a %s, %s is a %s", first.Name, first.Kind, p.Name, p.Kind)
		case p.Language != first.Language || p.Opts != first.Opts:
			return diag.Errorf(diag.MisNonStringAttr, "%s and %s differ in language or binding", first.Name, p.Name)
		case !slices.EqualFunc(p.Checks, first.Checks, func(a, b *expr.Expr) bool { return a.Equal(b) }):
			return diag.Errorf(diag.MisNonStringAttr, "%s and %s have different checks", first.Name, p.Name)
		case p.Args.Len() != first.Args.Len() || p.Return != first.Return || p.Status != first.Status ||
			!slices.Equal(p.InArgs, first.InArgs) || !slices.Equal(p.OutArgs, first.OutArgs) ||
			!slices.Equal(p.CallArgs, first.CallArgs) || !slices.Equal(p.AuxArgs, first.AuxArgs):
			return diag.Errorf(diag.MisRoleLayout, "%s and %s have different argument lists", first.Name, p.Name)
		}
	}
	return nil
}

func mergeArg(args []*wrap.Arg, m *TemplateManager) (*wrap.Arg, error) {
	a0 := args[0]
	for _, a := range args[1:] {
		if !a0.EqualUpToType(a) {
			return nil, diag.Errorf(diag.MisArgStrategy, "arguments not equal up to type:\n  %s\n  %s", a0, a)
		}
	}
	switch a0.Kind {
	case wrap.KindArray, wrap.KindScalar, wrap.KindComplex, wrap.KindSingleChar, wrap.KindErrorStatus:
	default:
		return nil, diag.Errorf(diag.UnsTemplateArgument, "%s arguments cannot be templated (%s)", a0.Kind, a0.Name)
	}
	merged := a0.Clone()
	mergeAttrs(argAttrs, args, merged, m)
	return merged, nil
}

// Expand instantiates member i of a templated procedure.
func Expand(tp *wrap.Procedure, i int) (*wrap.Procedure, error) {
	t := tp.Template
	if t == nil {
		return nil, fmt.Errorf("%s is not a template", tp.Name)
	}
	if i < 0 || i >= len(t.Names) {
		return nil, fmt.Errorf("template %s has no member %d", tp.Name, i)
	}
	values := make(map[string]string, len(t.Vars))
	for _, v := range t.Vars {
		values[wrap.VarRef(v.Name)] = v.Values[i]
	}
	subst := func(s string) string {
		if v, ok := values[s]; ok {
			return v
		}
		return s
	}

	p := tp.Clone()
	p.Template = nil
	for _, at := range procAttrs {
		at.set(p, subst(at.get(p)))
	}
	for slot := 1; slot <= p.Args.Len(); slot++ {
		a := p.Arg(wrap.ArgID(slot))
		for _, at := range argAttrs {
			at.set(a, subst(at.get(a)))
		}
		if a.Kind == wrap.KindScalar || a.Kind == wrap.KindComplex {
			a.Kind = wrap.KindScalar
			if a.DType.IsComplex() {
				a.Kind = wrap.KindComplex
			}
		}
	}
	return p, nil
}

// groupLabel names a template group in diagnostics.
func groupLabel(names []string) string {
	return strings.Join(names, ",")
}
