package wrap

import (
	"fmt"
	"slices"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
)

// Procedure is an assembled wrapper. Role lists hold arena handles in
// their own order; a handle may appear in several lists.
type Procedure struct {
	// Name is the host-visible name, CallName the routine invoked and
	// NativeName the native routine being wrapped.
	Name       string
	CallName   string
	NativeName string
	Kind       native.ProcKind
	Language   native.Language
	Opts       Options

	Args     *Arena
	InArgs   []ArgID
	OutArgs  []ArgID
	CallArgs []ArgID
	AuxArgs  []ArgID
	// Return is the synthetic result argument of a function.
	Return ArgID
	// Status is the status flag added by Assemble, NoArg when the native
	// routine declares its own or the binding has none.
	Status ArgID

	// CallStatement is the override's explicit call expression, if any.
	CallStatement string

	Checks []*expr.Expr
	// Verbatim code around the call, carried from an override call
	// statement; emitted as manual-fixup comments.
	PreCallCode  string
	PostCallCode string

	// DTypes are the element types used, for the module type listing.
	DTypes []native.DType

	// Template is set on a procedure standing in for several others.
	Template *Template
}

// Names returns every host-visible name the procedure provides.
func (p *Procedure) Names() []string {
	if p.Template != nil {
		return slices.Clone(p.Template.Names)
	}
	return []string{p.Name}
}

// Arg resolves a handle.
func (p *Procedure) Arg(id ArgID) *Arg { return p.Args.Get(id) }

// Resolve maps handles to arguments.
func (p *Procedure) Resolve(ids []ArgID) []*Arg {
	out := make([]*Arg, len(ids))
	for i, id := range ids {
		out[i] = p.Args.Get(id)
	}
	return out
}

// Clone returns an independent copy: a new arena with copied arguments and
// copied role lists.
func (p *Procedure) Clone() *Procedure {
	cp := *p
	cp.Args = p.Args.Clone()
	cp.InArgs = slices.Clone(p.InArgs)
	cp.OutArgs = slices.Clone(p.OutArgs)
	cp.CallArgs = slices.Clone(p.CallArgs)
	cp.AuxArgs = slices.Clone(p.AuxArgs)
	cp.Checks = slices.Clone(p.Checks)
	cp.DTypes = slices.Clone(p.DTypes)
	if p.Template != nil {
		cp.Template = p.Template.Clone()
	}
	return &cp
}

// Assemble classifies the arguments of np and partitions them into roles.
// Any error is attributed to the procedure and is fatal for it alone.
func Assemble(np *native.Procedure, opts Options) (*Procedure, error) {
	p := &Procedure{
		Name:          native.MangleKeyword(np.Name),
		CallName:      np.NativeName(),
		NativeName:    np.NativeName(),
		Kind:          np.Kind,
		Language:      np.Language,
		Opts:          opts,
		Args:          NewArena(len(np.Args) + 2),
		CallStatement: np.CallStatement,
		DTypes:        np.DTypes(),
	}
	if !opts.F77Binding {
		p.CallName = np.NativeName() + "_c"
	}

	if np.IsFunction() {
		id, err := p.addReturn(np, opts)
		if err != nil {
			return nil, err
		}
		p.Return = id
	}

	var ids []ArgID
	hasStatus := false
	for _, na := range np.Args {
		a, err := Classify(na, na.IsArray(), p.Name)
		if err != nil {
			return nil, forProc(err, p.Name)
		}
		if a.Kind == KindErrorStatus {
			hasStatus = true
		}
		ids = append(ids, p.Args.Add(a))
	}
	if !hasStatus && !opts.F77Binding {
		status := &native.Argument{
			Name:   native.ErrName,
			DType:  native.DType{Type: native.TypeInteger, KTP: "fwi_integer_t"},
			Intent: native.IntentOut,
		}
		a, err := Classify(status, false, p.Name)
		if err != nil {
			return nil, forProc(err, p.Name)
		}
		p.Status = p.Args.Add(a)
		ids = append(ids, p.Status)
	}

	if p.Return != NoArg && !opts.F77Binding {
		p.CallArgs = append(p.CallArgs, p.Return)
	}
	p.CallArgs = append(p.CallArgs, ids...)
	p.Partition()
	if err := p.SynthesizeOverwriteFlags(); err != nil {
		return nil, forProc(err, p.Name)
	}
	return p, nil
}

// addReturn classifies the function result as an output scalar named
// fw_ret_arg.
func (p *Procedure) addReturn(np *native.Procedure, opts Options) (ArgID, error) {
	ret := np.Return.With(func(a *native.Argument) {
		a.Name = native.ReturnArgName
		a.Intent = native.IntentOut
	})
	a, err := Classify(ret, ret.IsArray(), p.Name)
	if err != nil {
		return NoArg, forProc(err, p.Name)
	}
	if opts.F77Binding && !a.Kind.isScalarLike() {
		return NoArg, diag.Errorf(diag.UnsArrayReturn,
			"a %s function result cannot be returned by a direct call", a.Kind).For(p.Name)
	}
	return p.Args.Add(a), nil
}

func forProc(err error, name string) error {
	if e, ok := diag.AsError(err); ok {
		return e.For(name)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Partition recomputes the in/out/aux role lists from the call arguments.
// The synthetic function result always leads the outputs.
func (p *Procedure) Partition() {
	p.InArgs, p.OutArgs, p.AuxArgs = nil, nil, nil
	if p.Return != NoArg {
		p.OutArgs = append(p.OutArgs, p.Return)
	}
	for _, id := range p.CallArgs {
		if id == p.Return {
			continue
		}
		a := p.Args.Get(id)
		if a.Hide {
			p.AuxArgs = append(p.AuxArgs, id)
			continue
		}
		if a.Kind == KindErrorStatus {
			continue
		}
		if a.Kind.IsArray() || a.Intent.IsIn() {
			p.InArgs = append(p.InArgs, id)
		}
		if !a.NoReturn && a.Intent.IsOut() {
			p.OutArgs = append(p.OutArgs, id)
		}
	}
}

// SynthesizeOverwriteFlags appends one boolean overwrite_<name> input per
// argument requesting it. Existing flags are reused.
func (p *Procedure) SynthesizeOverwriteFlags() error {
	for _, id := range slices.Clone(p.InArgs) {
		a := p.Args.Get(id)
		if !a.OverwriteFlag {
			continue
		}
		flagName := "overwrite_" + a.CyName
		if a.OverwriteFlagName == "" {
			na, err := a.With(func(x *Arg) { x.OverwriteFlagName = flagName })
			if err != nil {
				return err
			}
			p.Args.Set(id, na)
		}
		if fid := p.Args.Find(flagName); fid != NoArg {
			if !slices.Contains(p.InArgs, fid) {
				p.InArgs = append(p.InArgs, fid)
			}
			continue
		}
		p.InArgs = append(p.InArgs, p.Args.Add(NewOverwriteFlag(flagName, a.OverwriteDefault)))
	}
	return nil
}

// NewOverwriteFlag builds the boolean input controlling whether an array
// may be modified in place.
func NewOverwriteFlag(name string, def bool) *Arg {
	lit := "False"
	if def {
		lit = "True"
	}
	return &Arg{
		Kind:    KindScalar,
		Name:    name,
		CyName:  name,
		KTP:     "bint",
		PyType:  "bool",
		Intent:  native.IntentIn,
		Default: expr.Literal(lit),
	}
}

// OptionalMask reports per input whether it keeps its default. An optional
// input followed by a mandatory one loses it, so the optional inputs are
// always a trailing run.
func (p *Procedure) OptionalMask() []bool {
	mask := make([]bool, len(p.InArgs))
	for i, id := range p.InArgs {
		mask[i] = p.Args.Get(id).IsOptional()
	}
	for i := len(mask) - 1; i >= 0; i-- {
		if !mask[i] {
			for j := 0; j < i; j++ {
				mask[j] = false
			}
			break
		}
	}
	return mask
}

// needsInit lists each argument once: inputs, then auxiliaries, then
// call-only arguments.
func (p *Procedure) needsInit() []ArgID {
	var out []ArgID
	seen := make(map[ArgID]bool)
	for _, list := range [][]ArgID{p.InArgs, p.AuxArgs, p.CallArgs} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	if p.Return != NoArg && !seen[p.Return] {
		out = append(out, p.Return)
	}
	return out
}

// allArgs lists every argument referenced by a role, each once.
func (p *Procedure) allArgs() []ArgID {
	var out []ArgID
	seen := make(map[ArgID]bool)
	for _, list := range [][]ArgID{p.InArgs, p.CallArgs, p.AuxArgs, p.OutArgs} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// VarNames returns the substitution maps over all role arguments.
func (p *Procedure) VarNames() Names {
	return namesFor(p.Resolve(p.allArgs()))
}

// BodySnippets gathers the initialization and check code of every argument
// (each visited once) and of the procedure checks, in scheduled order.
func (p *Procedure) BodySnippets(ctx *Context) ([]*code.Snippet, error) {
	names := p.VarNames()
	var snippets []*code.Snippet
	for _, c := range p.Checks {
		s, err := checkSnippet(c, names)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	for _, id := range p.allArgs() {
		ss, err := p.Args.Get(id).Snippets(ctx, names)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, ss...)
	}
	return code.Schedule(snippets), nil
}
