package wrap

import (
	"fmt"
	"strings"

	"fwrap/internal/native"
)

// ExternDecl is a host-visible parameter declaration. Default is the
// signature default ("None" or a literal) when the parameter is optional.
type ExternDecl struct {
	Decl    string
	Default string
}

// ExternDecl returns the host-visible parameter, or false when the argument
// is not host-visible.
func (a *Arg) ExternDecl() (ExternDecl, bool) {
	switch a.Kind {
	case KindErrorStatus:
		return ExternDecl{}, false
	case KindArray, KindCharArray:
		d := ExternDecl{Decl: "object " + a.CyName}
		if a.IsOptional() {
			d.Default = "None"
		}
		return d, true
	case KindCallback:
		return ExternDecl{Decl: "object " + a.CyName}, true
	case KindString:
		if a.Intent == native.IntentOut && !a.isAssumedLen() {
			return ExternDecl{}, false
		}
	}
	d := ExternDecl{Decl: a.externType() + " " + a.CyName}
	switch {
	case a.Default != nil && a.DeferInit:
		d.Default = "None"
	case a.Default != nil:
		if lit, err := a.Default.AsLiteral(); err == nil {
			d.Default = lit
		} else {
			d.Default = "None"
		}
	case a.RawDefault != "":
		d.Default = "None"
	}
	return d, true
}

// InternDecls lists local declarations. externMade reports whether the
// host-visible parameter already declares the name.
func (a *Arg) InternDecls(ctx *Context, externMade bool) []string {
	switch a.Kind {
	case KindScalar, KindComplex:
		it := a.internType()
		if it == "" && externMade {
			return nil
		}
		if it == "" {
			it = a.externType()
		}
		return []string{fmt.Sprintf("cdef %s %s", it, a.InternName())}
	case KindSingleChar:
		return []string{fmt.Sprintf("cdef char *%s = [0, 0]", a.bufName())}
	case KindString:
		decls := []string{
			fmt.Sprintf("cdef fw_bytes %s", a.InternName()),
			fmt.Sprintf("cdef fw_shape_t %s", a.lenName()),
		}
		if a.Intent.IsOut() {
			decls = append(decls, fmt.Sprintf("cdef char *%s", a.bufName()))
		}
		return decls
	case KindErrorStatus:
		if a.Name == native.ErrStrName {
			return []string{fmt.Sprintf("cdef fw_character_t %s[%s]", a.CyName, native.ErrStrLen)}
		}
		return []string{fmt.Sprintf("cdef %s %s", a.KTP, a.CyName)}
	case KindArray, KindCharArray:
		decls := []string{"cdef np.ndarray " + a.InternName()}
		if a.needsShapeCopy(ctx) {
			decls = append(decls, fmt.Sprintf("cdef fw_shape_t %s[%d]", a.shapeVarName(), len(a.Dimension)))
		}
		if a.Kind == KindCharArray {
			decls = append(decls,
				fmt.Sprintf("cdef fw_shape_t %s[%d]", a.charShapeName(), len(a.Dimension)+1),
				fmt.Sprintf("cdef object %s", a.odtypeName()))
		}
		return decls
	case KindCallback:
		return []string{
			fmt.Sprintf("cdef object %s", a.cbSavedName()),
			fmt.Sprintf("cdef jmp_buf %s", a.cbSavedJmpName()),
		}
	}
	return nil
}

func (a *Arg) needsShapeCopy(ctx *Context) bool {
	return a.Kind == KindArray && (ctx.Opts.F77Binding || a.MemOffset != "")
}

// PreCall returns statements run after initialization, right before the call.
func (a *Arg) PreCall(ctx *Context) []string {
	switch a.Kind {
	case KindSingleChar:
		ctx.UseUtility(asCharUtility)
		if !a.Intent.IsIn() {
			return nil
		}
		return []string{
			fmt.Sprintf("%s[0] = fw_aschar(%s)", a.bufName(), a.CyName),
			fmt.Sprintf("if %s[0] == 0:", a.bufName()),
			fmt.Sprintf("    raise ValueError(\"len(%s) != 1\")", a.CyName),
		}
	case KindString:
		return a.stringPreCall()
	case KindCharArray:
		name, shape := a.CyName, a.charShapeName()
		return []string{
			fmt.Sprintf("%s = %s.dtype", a.odtypeName(), name),
			fmt.Sprintf("for i in range(%d): %s[i+1] = %s.shape[i]", len(a.Dimension), shape, name),
			fmt.Sprintf("%s.dtype = 'b'", name),
			fmt.Sprintf("%s = %s", a.InternName(), name),
			fmt.Sprintf("%s[0] = <fw_shape_t>(%s.shape[0]/%s[1])", shape, name, shape),
		}
	case KindCallback:
		return a.callbackPreCall(ctx)
	}
	return nil
}

func (a *Arg) stringPreCall() []string {
	intern, ln, buf := a.InternName(), a.lenName(), a.bufName()
	if a.Intent == native.IntentIn {
		return []string{
			fmt.Sprintf("%s = len(%s)", ln, a.CyName),
			fmt.Sprintf("%s = %s", intern, a.CyName),
		}
	}
	out := []string{
		fmt.Sprintf("%s = %s", ln, a.stringLen()),
		fmt.Sprintf("%s = PyBytes_FromStringAndSize(NULL, %s)", intern, ln),
		fmt.Sprintf("%s = <char*>%s", buf, intern),
	}
	if a.Intent != native.IntentOut {
		out = append(out, fmt.Sprintf("memcpy(%s, <char*>%s, %s+1)", buf, a.CyName, ln))
	}
	return out
}

// Fragments are the call-expression pieces contributed by one argument.
// Trailing fragments go after all positional arguments (string lengths in
// the direct-call convention).
type Fragments struct {
	Positional []string
	Trailing   []string
}

func (a *Arg) CallFragments(ctx *Context) Fragments {
	f77 := ctx.Opts.F77Binding
	switch a.Kind {
	case KindScalar, KindComplex:
		if a.ByValue {
			return Fragments{Positional: []string{a.InternName()}}
		}
		return Fragments{Positional: []string{"&" + a.InternName()}}
	case KindSingleChar:
		fr := Fragments{Positional: []string{a.bufName()}}
		if f77 {
			fr.Trailing = []string{"1"}
		}
		return fr
	case KindString:
		ptr := a.bufName()
		if a.Intent == native.IntentIn {
			ptr = "<char*>" + a.InternName()
		}
		if f77 {
			return Fragments{Positional: []string{ptr}, Trailing: []string{a.lenName()}}
		}
		return Fragments{Positional: []string{"&" + a.lenName(), ptr}}
	case KindErrorStatus:
		if a.Name == native.ErrStrName {
			return Fragments{Positional: []string{a.CyName}}
		}
		return Fragments{Positional: []string{"&" + a.CyName}}
	case KindArray:
		offset := ""
		if a.MemOffset != "" {
			offset = " + " + a.MemOffset
		}
		data := fmt.Sprintf("<%s*>np.PyArray_DATA(%s)%s", a.KTP, a.InternName(), offset)
		if f77 {
			return Fragments{Positional: []string{data}}
		}
		shape := "np.PyArray_DIMS(" + a.InternName() + ")"
		if a.needsShapeCopy(ctx) {
			shape = a.shapeVarName()
		}
		return Fragments{Positional: []string{shape, data}}
	case KindCharArray:
		data := fmt.Sprintf("<%s*>%s.data", a.KTP, a.InternName())
		if f77 {
			return Fragments{Positional: []string{data}, Trailing: []string{a.charShapeName() + "[0]"}}
		}
		var pos []string
		for i := 0; i <= len(a.Dimension); i++ {
			pos = append(pos, fmt.Sprintf("&%s[%d]", a.charShapeName(), i))
		}
		return Fragments{Positional: append(pos, data)}
	case KindCallback:
		return Fragments{Positional: []string{a.cbTrampolineName()}}
	}
	return Fragments{}
}

// PostCall returns cleanup statements; they run even when the call fails.
func (a *Arg) PostCall(ctx *Context) []string {
	switch a.Kind {
	case KindCharArray:
		return []string{fmt.Sprintf("%s.dtype = %s", a.CyName, a.odtypeName())}
	case KindCallback:
		return a.callbackPostCall()
	}
	return nil
}

// ReturnFragments lists what the argument contributes to the result tuple.
func (a *Arg) ReturnFragments() []string {
	if !a.Intent.IsOut() {
		return nil
	}
	switch a.Kind {
	case KindScalar, KindComplex, KindString:
		return []string{a.InternName()}
	case KindSingleChar:
		return []string{a.bufName()}
	case KindArray, KindCharArray:
		return []string{a.CyName}
	}
	return nil
}

// DocReturns lists host-visible names of returned values.
func (a *Arg) DocReturns() []string {
	if len(a.ReturnFragments()) == 0 {
		return nil
	}
	return []string{a.CyName}
}

func (a *Arg) docLine() string {
	parts := []string{a.CyName + " : " + a.PyType}
	switch a.Kind {
	case KindString:
		parts = append(parts, "len "+a.DType.Len)
	case KindArray:
		parts = append(parts, fmt.Sprintf("%dD array", len(a.Dimension)), a.Dimension.AttrSpec())
	case KindCharArray:
		parts = append(parts, "len "+a.DType.Len, fmt.Sprintf("%dD array", len(a.Dimension)), a.Dimension.AttrSpec())
	case KindCallback:
		parts = append(parts, a.callbackSignatureDoc())
	}
	if s := a.Intent.String(); s != "" {
		parts = append(parts, "intent "+s)
	}
	return strings.Join(parts, ", ")
}

// DocIn is the Parameters docstring entry.
func (a *Arg) DocIn() []string {
	switch a.Kind {
	case KindErrorStatus:
		return nil
	case KindArray, KindCharArray, KindCallback:
		return []string{a.docLine()}
	case KindString:
		if a.isAssumedLen() {
			return []string{a.docLine()}
		}
	}
	if !a.Intent.IsIn() {
		return nil
	}
	return []string{a.docLine()}
}

// DocOut is the Returns docstring entry.
func (a *Arg) DocOut() []string {
	if a.Kind == KindErrorStatus || a.Kind == KindCallback || !a.Intent.IsOut() {
		return nil
	}
	return []string{a.docLine()}
}
