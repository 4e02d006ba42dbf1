// Package merge reconciles wrappers generated from native source with
// hand-authored override interfaces for the same routines.
package merge

import (
	"slices"

	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

// builder assembles the merged procedure in a fresh arena. Arguments taken
// from the override are keyed by their override handle so that one
// override argument maps to one merged slot.
type builder struct {
	canon, over *wrap.Procedure
	rep         diag.Reporter
	subject     string

	args   *wrap.Arena
	byName map[string]wrap.ArgID
	copied map[wrap.ArgID]wrap.ArgID
}

// userCalls are the call arguments excluding the synthetic result and
// status slots.
func userCalls(p *wrap.Procedure) []wrap.ArgID {
	var out []wrap.ArgID
	for _, id := range p.CallArgs {
		if id == p.Return || id == p.Status {
			continue
		}
		out = append(out, id)
	}
	return out
}

// MergeProcedure combines the override's host-visible signature with the
// canonical call mechanics. The result is named after the override and
// calls the canonical routine.
func MergeProcedure(canon, over *wrap.Procedure, rep diag.Reporter) (*wrap.Procedure, error) {
	if rep == nil {
		rep = diag.NopReporter
	}
	b := &builder{
		canon:   canon,
		over:    over,
		rep:     rep,
		subject: over.Name,
		args:    wrap.NewArena(canon.Args.Len() + over.Args.Len()),
		byName:  make(map[string]wrap.ArgID),
		copied:  make(map[wrap.ArgID]wrap.ArgID),
	}
	var (
		calls []wrap.ArgID
		ret   wrap.ArgID
		stmt  CallStatement
		err   error
	)
	if over.CallStatement == "" {
		calls, ret, err = b.bindPositional()
	} else {
		stmt, err = ParseCallStatement(over.CallStatement)
		if err == nil {
			calls, ret, err = b.bindCallStatement(stmt)
		}
	}
	if err != nil {
		return nil, forSubject(err, b.subject)
	}

	res := &wrap.Procedure{
		Name:          over.Name,
		CallName:      canon.CallName,
		NativeName:    canon.NativeName,
		Kind:          canon.Kind,
		Language:      native.LangOverride,
		Opts:          canon.Opts,
		Args:          b.args,
		PreCallCode:   stmt.PreCall,
		PostCallCode:  stmt.PostCall,
		CallStatement: over.CallStatement,
		DTypes:        canon.DTypes,
	}
	if ret != wrap.NoArg {
		res.Return = ret
		if !canon.Opts.F77Binding {
			res.CallArgs = append(res.CallArgs, ret)
		}
	}
	res.CallArgs = append(res.CallArgs, calls...)
	if canon.Status != wrap.NoArg {
		res.Status = b.add(canon.Arg(canon.Status).Clone())
		res.CallArgs = append(res.CallArgs, res.Status)
	}

	res.InArgs = b.copyOrGet(over.InArgs)
	res.OutArgs = b.copyOrGet(over.OutArgs)
	res.AuxArgs = b.copyOrGet(over.AuxArgs)
	if res.Return != wrap.NoArg {
		isRet := func(id wrap.ArgID) bool { return id == res.Return }
		res.InArgs = slices.DeleteFunc(res.InArgs, isRet)
		res.AuxArgs = slices.DeleteFunc(res.AuxArgs, isRet)
		res.OutArgs = append([]wrap.ArgID{res.Return}, slices.DeleteFunc(res.OutArgs, isRet)...)
	}
	if err := ProcessInArgs(res); err != nil {
		return nil, forSubject(err, b.subject)
	}

	res.Checks = translateChecks(res, b.subject, rep)
	if err := translateArgs(res, b.byName, b.subject, rep); err != nil {
		return nil, err
	}
	return res, nil
}

// bindPositional takes the override's call arguments as they are.
func (b *builder) bindPositional() ([]wrap.ArgID, wrap.ArgID, error) {
	canonCalls, overCalls := userCalls(b.canon), userCalls(b.over)
	if len(canonCalls) != len(overCalls) {
		return nil, wrap.NoArg, diag.Errorf(diag.MisArgCount,
			"override and native descriptions differ: %d and %d call arguments", len(overCalls), len(canonCalls))
	}
	calls := make([]wrap.ArgID, len(overCalls))
	for i, id := range overCalls {
		calls[i] = b.take(id)
	}
	if b.canon.Kind != native.Function {
		return calls, wrap.NoArg, nil
	}
	if b.over.Return == wrap.NoArg || !sameReturn(b.canon.Arg(b.canon.Return), b.over.Arg(b.over.Return)) {
		return nil, wrap.NoArg, diag.Errorf(diag.MisReturnArg, "return value differs between override and native description")
	}
	return calls, b.add(b.canon.Arg(b.canon.Return).Clone()), nil
}

func sameReturn(a, b *wrap.Arg) bool {
	return a.Kind == b.Kind && a.KTP == b.KTP && a.Intent == b.Intent
}

// bindCallStatement matches call positions to override arguments. The
// canonical result is position 0 of a function.
func (b *builder) bindCallStatement(stmt CallStatement) ([]wrap.ArgID, wrap.ArgID, error) {
	targets := b.canon.Resolve(userCalls(b.canon))
	isFunc := b.canon.Kind == native.Function
	if isFunc {
		targets = append([]*wrap.Arg{b.canon.Arg(b.canon.Return)}, targets...)
	}
	if len(targets) != len(stmt.Args) {
		return nil, wrap.NoArg, diag.Errorf(diag.MisArgCount,
			"call statement passes %d arguments, native routine takes %d", len(stmt.Args), len(targets))
	}
	var (
		calls []wrap.ArgID
		ret   = wrap.NoArg
	)
	for idx, ex := range stmt.Args {
		if idx == 0 && isFunc && b.over.Kind == native.Function {
			ret = b.add(b.canon.Arg(b.canon.Return).Clone())
			continue
		}
		id, err := b.bindExpr(ex, targets[idx])
		if err != nil {
			return nil, wrap.NoArg, err
		}
		if idx == 0 && isFunc {
			ret = id
			continue
		}
		calls = append(calls, id)
	}
	return calls, ret, nil
}

// bindExpr resolves one call position.
func (b *builder) bindExpr(ex string, fArg *wrap.Arg) (wrap.ArgID, error) {
	if ref, ok := parseArgRef(ex); ok {
		if ref.offset != "" && ref.address {
			return wrap.NoArg, diag.Errorf(diag.MisAddressWithOffset, "arithmetic on scalar pointer in %q", ex)
		}
		if oid := b.findOverride(ref.name); oid != wrap.NoArg {
			if ref.offset == "" {
				return b.take(oid), nil
			}
			src := b.over.Arg(oid)
			if !src.Kind.IsArray() {
				return wrap.NoArg, diag.Errorf(diag.MisScalarOffset, "passing scalar %q with an offset without taking its address", ref.name)
			}
			a := src.Clone()
			a.MemOffset = native.MangleKeyword(ref.offset)
			return b.add(a), nil
		}
		return b.auxiliary(fArg, expr.Placeholder(ex))
	}
	return b.auxiliary(fArg, expr.TranslateOrPlaceholder(ex, b.subject, b.rep))
}

// auxiliary synthesizes a hidden temporary computed from e and passed in
// place of fArg.
func (b *builder) auxiliary(fArg *wrap.Arg, e *expr.Expr) (wrap.ArgID, error) {
	a, err := fArg.With(func(x *wrap.Arg) {
		x.Name = fArg.Name + "_f"
		x.CyName = fArg.Name + "_f"
		x.Intent = native.IntentNone
		x.Hide = true
		x.Default = e
		x.DeferInit = false
		x.RawDefault = ""
	})
	if err != nil {
		return wrap.NoArg, err
	}
	return b.add(a), nil
}

func (b *builder) findOverride(name string) wrap.ArgID {
	for _, list := range [][]wrap.ArgID{b.over.CallArgs, b.over.AuxArgs} {
		for _, id := range list {
			if id != b.over.Status && b.over.Arg(id).Name == name {
				return id
			}
		}
	}
	return wrap.NoArg
}

// take copies an override argument into the merged arena once.
func (b *builder) take(oid wrap.ArgID) wrap.ArgID {
	if id, ok := b.copied[oid]; ok {
		return id
	}
	id := b.add(b.over.Arg(oid).Clone())
	b.copied[oid] = id
	return id
}

func (b *builder) add(a *wrap.Arg) wrap.ArgID {
	id := b.args.Add(a)
	if _, ok := b.byName[a.Name]; !ok {
		b.byName[a.Name] = id
	}
	return id
}

// copyOrGet resolves override role lists against the bound call
// arguments by name, copying unmatched arguments.
func (b *builder) copyOrGet(ids []wrap.ArgID) []wrap.ArgID {
	out := make([]wrap.ArgID, 0, len(ids))
	for _, oid := range ids {
		if oid == b.over.Return {
			continue
		}
		if id, ok := b.byName[b.over.Arg(oid).Name]; ok {
			out = append(out, id)
			continue
		}
		out = append(out, b.take(oid))
	}
	return out
}
