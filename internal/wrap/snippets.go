package wrap

import (
	"fmt"
	"strings"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
)

// Names maps native argument names to generated names; Intern is used for
// executable code, Doc for user-facing text.
type Names struct {
	Intern map[string]string
	Doc    map[string]string
}

func (n Names) substitute(e *expr.Expr) (expr.Rendered, error) {
	return e.Substitute(n.Intern, n.Doc)
}

func requiresInit(names []string) []code.Key {
	keys := make([]code.Key, len(names))
	for i, r := range names {
		keys[i] = code.Init(r)
	}
	return keys
}

// Snippets returns the initialization (and, for arrays, check) code of the
// argument.
func (a *Arg) Snippets(ctx *Context, names Names) ([]*code.Snippet, error) {
	switch a.Kind {
	case KindScalar, KindComplex:
		s, err := a.scalarInit(names)
		if err != nil {
			return nil, err
		}
		return []*code.Snippet{s}, nil
	case KindArray:
		return a.arraySnippets(ctx, names)
	}
	return []*code.Snippet{code.NewSnippet(code.Init(a.InternName()))}, nil
}

func (a *Arg) scalarInit(names Names) (*code.Snippet, error) {
	intern := a.InternName()
	s := code.NewSnippet(code.Init(intern))
	if a.isLogicalIn() && !a.DeferInit {
		s.Putln("%s = 1 if %s else 0", intern, a.CyName)
	}
	if a.Default == nil {
		return s, nil
	}
	r, err := names.substitute(a.Default)
	if err != nil {
		return nil, diag.Errorf(diag.ExprUntranslatable, "default of %q: %v", a.Name, err)
	}
	s.AddRequires(requiresInit(r.Requires)...)
	switch {
	case a.Hide:
		s.Putln("%s = %s", intern, r.Code)
	case a.DeferInit:
		s.Putln("%s = %s if (%s is not None) else %s", intern, a.CyName, a.CyName, r.Code)
	}
	return s, nil
}

func (a *Arg) arraySnippets(ctx *Context, names Names) ([]*code.Snippet, error) {
	intern, extern := a.InternName(), a.CyName
	exprs := a.shapeExprs()

	canAllocate := a.IsOptional()
	if canAllocate {
		for i, e := range exprs {
			if e == nil {
				ctx.warn(diag.ExprCannotAllocate, fmt.Sprintf(
					"cannot automatically allocate explicit-shape array %q: size expression %s is too complicated",
					a.Name, a.Dimension[i].SizeExpr()))
				canAllocate = false
				break
			}
		}
	}

	shapes := make([]*expr.Rendered, len(exprs))
	var requires []string
	for i, e := range exprs {
		if e == nil {
			continue
		}
		r, err := names.substitute(e)
		if err != nil {
			return nil, diag.Errorf(diag.ExprUntranslatable, "shape of %q: %v", a.Name, err)
		}
		shapes[i] = &r
		if canAllocate {
			requires = append(requires, r.Requires...)
		}
	}

	copyFlag := "False"
	if a.OverwriteFlag && a.OverwriteFlagName != "" {
		copyFlag = "not " + a.OverwriteFlagName
	}

	if ctx.Opts.EmulateF2Py {
		ctx.UseUtility(asFortranArrayF2PyUtility)
	} else {
		ctx.UseUtility(asFortranArrayUtility)
	}

	init := code.NewSnippet(code.Init(intern), requiresInit(requires)...)
	ndim := len(a.Dimension)
	if canAllocate {
		ctx.UseUtility(explicitShapeArrayUtility)
		from := extern
		if a.Hide {
			from = "None"
		}
		codes := make([]string, len(shapes))
		for i, r := range shapes {
			codes[i] = r.Code
		}
		init.Putln("%s, %s = fw_explicitshapearray(%s, %s, %d, [%s], %s)",
			intern, extern, from, a.NpyEnum, ndim, strings.Join(codes, ", "), copyFlag)
	} else {
		init.Putln("%s, %s = fw_asfortranarray(%s, %s, %d, %s)",
			intern, extern, extern, a.NpyEnum, ndim, copyFlag)
	}
	if a.Align > 0 {
		ctx.UseUtility(ensureAlignedUtility)
		init.Putln("%s, %s = fw_ensurealigned(%s, %s, %d)", intern, extern, intern, extern, a.Align)
	}

	arrShape := "np.PyArray_DIMS(" + intern + ")"
	if a.needsShapeCopy(ctx) {
		ctx.UseUtility(copyShapeUtility)
		init.Putln("fw_copyshape(%s, np.PyArray_DIMS(%s), %d)", a.shapeVarName(), intern, ndim)
		arrShape = a.shapeVarName()
	}
	if a.MemOffset != "" {
		if ndim != 1 {
			return nil, diag.Errorf(diag.UnsMultiDimOffset,
				"memory offset on %d-dimensional array %q is not supported", ndim, a.Name)
		}
		init.Putln("%s[0] -= %s", a.shapeVarName(), a.MemOffset)
	}
	out := []*code.Snippet{init}

	if !ctx.Opts.F77Binding {
		return out, nil
	}
	check := code.NewSnippet(code.Check(intern), code.Init(intern))
	offsetDoc := ""
	if a.MemOffset != "" {
		offsetDoc = " - " + a.MemOffset
	}
	for idx, r := range shapes {
		if r == nil {
			continue
		}
		check.AddRequires(requiresInit(r.Requires)...)
		if !a.NoTruncation && idx == len(shapes)-1 {
			check.Putln("if not (0 <= %s <= %s[%d]):", r.Code, arrShape, idx)
			check.Putln("    raise ValueError(\"(0 <= %s <= %s.shape[%d]%s) not satisfied\")", r.Doc, extern, idx, offsetDoc)
		} else {
			check.Putln("if %s != %s[%d]:", r.Code, arrShape, idx)
			check.Putln("    raise ValueError(\"(%s == %s.shape[%d]) not satisfied\")", r.Doc, extern, idx)
		}
	}
	if !check.Empty() {
		out = append(out, check)
	}
	return out, nil
}

// checkSnippet renders one procedure-level check expression.
func checkSnippet(e *expr.Expr, names Names) (*code.Snippet, error) {
	r, err := names.substitute(e)
	if err != nil {
		return nil, diag.Errorf(diag.ExprUntranslatable, "check %s: %v", e, err)
	}
	s := code.NewSnippet(code.Check(""), requiresInit(r.Requires)...)
	s.Putln("if not (%s):", r.Code)
	s.Putln("    raise ValueError('Condition on arguments not satisfied: %s')", strings.ReplaceAll(r.Doc, "'", "\\'"))
	return s, nil
}

// namesFor builds the substitution maps over the given arguments.
func namesFor(args []*Arg) Names {
	n := Names{Intern: make(map[string]string, len(args)), Doc: make(map[string]string, len(args))}
	for _, a := range args {
		n.Intern[a.Name] = a.InternName()
		n.Doc[a.Name] = a.CyName
	}
	// The status sentinels are referenced by name from override code.
	n.Intern[native.ErrName] = native.ErrName
	n.Doc[native.ErrName] = native.ErrName
	return n
}
