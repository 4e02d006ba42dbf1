package merge

import (
	"slices"

	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

// visitOrder lists each argument of the role lists once.
func visitOrder(p *wrap.Procedure) []wrap.ArgID {
	var out []wrap.ArgID
	seen := make(map[wrap.ArgID]bool)
	for _, list := range [][]wrap.ArgID{p.InArgs, p.OutArgs, p.AuxArgs, p.CallArgs} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// translateChecks moves argument checks to the procedure, translated.
func translateChecks(p *wrap.Procedure, subject string, rep diag.Reporter) []*expr.Expr {
	checks := slices.Clone(p.Checks)
	for _, id := range visitOrder(p) {
		a := p.Arg(id)
		if len(a.RawChecks) == 0 {
			continue
		}
		for _, c := range a.RawChecks {
			checks = append(checks, expr.TranslateOrPlaceholder(c, subject, rep))
		}
		cp := a.Clone()
		cp.RawChecks = nil
		p.Args.Set(id, cp)
	}
	return checks
}

// translateDefault replaces the raw default by its translation; a
// non-literal default is computed in the wrapper body.
func translateDefault(a *wrap.Arg, subject string, rep diag.Reporter) {
	if a.RawDefault == "" {
		return
	}
	e := expr.TranslateOrPlaceholder(a.RawDefault, subject, rep)
	a.Default = e
	a.RawDefault = ""
	a.DeferInit = !e.IsLiteral()
}

// translateArgs derives defaults from explicit array dependencies,
// translates shapes and defaults, and applies the truncation rule.
func translateArgs(p *wrap.Procedure, byName map[string]wrap.ArgID, subject string, rep diag.Reporter) error {
	for _, id := range visitOrder(p) {
		a := p.Arg(id).Clone()
		if a.RawDefault == "" && a.Default == nil && !a.Kind.IsArray() {
			for _, dep := range a.Depend {
				did, ok := byName[dep]
				if !ok {
					continue
				}
				if d := p.Arg(did); d.Kind.IsArray() && len(d.Dimension) == 1 {
					if a.RawDefault != "" {
						return diag.Errorf(diag.CfgDependsOnMultipleArray,
							"%q depends on multiple arrays", a.Name).For(subject)
					}
					a.RawDefault = "len(" + dep + ")"
				}
			}
		}
		if a.Kind.IsArray() && a.Dimension.IsExplicitShape() {
			sizes := a.Dimension.SizeExprs()
			a.ShapeExprs = make([]*expr.Expr, len(sizes))
			for i, s := range sizes {
				a.ShapeExprs[i] = expr.TranslateOrPlaceholder(s, subject, rep)
			}
		}
		if a.Kind.IsArray() && len(a.Dimension) > 0 {
			for _, dep := range a.Dimension.LastDepNames() {
				if slices.Contains(a.Depend, dep) {
					a.NoTruncation = true
					break
				}
			}
		}
		translateDefault(a, subject, rep)
		v, err := a.With(nil)
		if err != nil {
			return forSubject(err, subject)
		}
		p.Args.Set(id, v)
	}
	return nil
}

func forSubject(err error, subject string) error {
	if e, ok := diag.AsError(err); ok {
		return e.For(subject)
	}
	return err
}

// ProcessInArgs orders the inputs as mandatory, optional, overwrite flags,
// then output-only arguments, adding any missing overwrite flag.
func ProcessInArgs(p *wrap.Procedure) error {
	flagNames := make(map[string]bool)
	for _, a := range p.Resolve(p.InArgs) {
		if a.OverwriteFlag {
			flagNames[overwriteFlagName(a)] = true
		}
	}
	var mandatory, optional, flags, outs []wrap.ArgID
	for _, id := range p.InArgs {
		a := p.Arg(id)
		switch {
		case flagNames[a.Name]:
		case a.Intent == native.IntentOut:
			outs = append(outs, id)
		case a.IsOptional():
			optional = append(optional, id)
		default:
			mandatory = append(mandatory, id)
		}
	}
	for _, id := range append(slices.Clone(mandatory), optional...) {
		a := p.Arg(id)
		if !a.OverwriteFlag {
			continue
		}
		name := overwriteFlagName(a)
		if a.OverwriteFlagName == "" {
			na, err := a.With(func(x *wrap.Arg) { x.OverwriteFlagName = name })
			if err != nil {
				return err
			}
			p.Args.Set(id, na)
		}
		fid := p.Args.Find(name)
		if fid == wrap.NoArg {
			fid = p.Args.Add(wrap.NewOverwriteFlag(name, a.OverwriteDefault))
		}
		flags = append(flags, fid)
	}
	in := append(mandatory, optional...)
	in = append(in, flags...)
	p.InArgs = append(in, outs...)
	return nil
}

func overwriteFlagName(a *wrap.Arg) string {
	if a.OverwriteFlagName != "" {
		return a.OverwriteFlagName
	}
	return "overwrite_" + a.CyName
}
