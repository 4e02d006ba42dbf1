package wrap

import (
	"fmt"
	"strings"

	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
)

// A callback argument is bridged through a module-level trampoline with C
// linkage. The host callable and the jump buffer used to unwind a raised
// exception live in module globals; the wrapper saves and restores them
// around the call so nested and re-entrant calls see their own state.

func (a *Arg) cbPrefix() string { return "fw_cb_" + a.ProcName + "_" + a.Name }

func (a *Arg) cbTrampolineName() string { return a.cbPrefix() }
func (a *Arg) cbFuncVar() string        { return a.cbPrefix() + "_fn" }
func (a *Arg) cbExcVar() string         { return a.cbPrefix() + "_exc" }
func (a *Arg) cbJmpVar() string         { return a.cbPrefix() + "_jmp" }
func (a *Arg) cbSavedName() string      { return "fw_saved_" + a.CyName }
func (a *Arg) cbSavedJmpName() string   { return "fw_savedjmp_" + a.CyName }

// checkCallback rejects signatures the trampoline cannot convert.
func checkCallback(name string, cb *native.Procedure) *diag.Error {
	for i, p := range cb.Args {
		pname := cbParamName(p, i)
		switch {
		case p.DType.IsCallback() || p.DType.Callback != nil:
			return diag.Errorf(diag.UnsCallbackArgument,
				"callback %q: procedure argument %q is not supported", name, pname)
		case p.DType.IsCharacter() && p.DType.Len == "*":
			return diag.Errorf(diag.UnsAssumedLenCallback,
				"callback %q: assumed-length character argument %q is not supported", name, pname)
		case p.IsArray():
			for _, s := range p.Dimension.SizeExprs() {
				if s == "" || expr.ParseSize(s) == nil {
					return diag.Errorf(diag.UnsCallbackShape,
						"callback %q: array %q needs a simple explicit shape, got %s",
						name, pname, p.Dimension.AttrSpec())
				}
			}
		}
	}
	return nil
}

func cbParamName(p *native.Argument, i int) string {
	if p.Name != "" {
		return native.MangleKeyword(p.Name)
	}
	return fmt.Sprintf("arg%d", i+1)
}

func (a *Arg) callbackPreCall(ctx *Context) []string {
	ctx.UseUtility(a.trampolineUtility())
	fn, jmp := a.cbFuncVar(), a.cbJmpVar()
	saved, savedJmp := a.cbSavedName(), a.cbSavedJmpName()
	return []string{
		fmt.Sprintf("global %s", fn),
		fmt.Sprintf("%s = %s", saved, fn),
		fmt.Sprintf("memcpy(%s, %s, sizeof(jmp_buf))", savedJmp, jmp),
		fmt.Sprintf("%s = %s", fn, a.CyName),
		fmt.Sprintf("if setjmp(%s) != 0:", jmp),
		fmt.Sprintf("    %s = %s", fn, saved),
		fmt.Sprintf("    memcpy(%s, %s, sizeof(jmp_buf))", jmp, savedJmp),
		fmt.Sprintf("    raise %s", a.cbExcVar()),
	}
}

func (a *Arg) callbackPostCall() []string {
	return []string{
		fmt.Sprintf("%s = %s", a.cbFuncVar(), a.cbSavedName()),
		fmt.Sprintf("memcpy(%s, %s, sizeof(jmp_buf))", a.cbJmpVar(), a.cbSavedJmpName()),
	}
}

func (a *Arg) callbackSignatureDoc() string {
	var ins, outs []string
	for i, p := range a.Callback.Args {
		n := cbParamName(p, i)
		if p.Intent.IsIn() {
			ins = append(ins, n)
		}
		if p.Intent.IsOut() && !p.IsArray() {
			outs = append(outs, n)
		}
	}
	sig := fmt.Sprintf("%s(%s)", a.CyName, strings.Join(ins, ", "))
	switch len(outs) {
	case 0:
	case 1:
		sig += " -> " + outs[0]
	default:
		sig += " -> (" + strings.Join(outs, ", ") + ")"
	}
	return sig
}

// trampolineUtility renders the C-callable bridge for the argument's
// signature. Scalars arrive by reference; arrays are viewed in place.
func (a *Arg) trampolineUtility() Utility {
	cb := a.Callback
	deref := make(map[string]string, len(cb.Args))
	for i, p := range cb.Args {
		if !p.IsArray() {
			deref[p.Name] = cbParamName(p, i) + "[0]"
		}
	}

	var params, decls, body, inArgs, outTargets, trailing []string
	for i, p := range cb.Args {
		n := cbParamName(p, i)
		switch {
		case p.DType.IsCharacter() && !p.IsArray():
			params = append(params, "char *"+n)
			trailing = append(trailing, "size_t "+n+"_len_")
			if p.Intent.IsIn() {
				inArgs = append(inArgs, fmt.Sprintf("%s[:%s]", n, p.DType.Len))
			}
			continue
		case p.IsArray():
			params = append(params, fmt.Sprintf("%s *%s", p.DType.KTP, n))
			dims := n + "_dims"
			rank := len(p.Dimension)
			decls = append(decls, fmt.Sprintf("cdef np.npy_intp %s[%d]", dims, rank))
			for j, s := range p.Dimension.SizeExprs() {
				e := expr.ParseSize(s)
				r, err := e.Substitute(deref, nil)
				extent := s
				if err == nil {
					extent = r.Code
				}
				body = append(body, fmt.Sprintf("%s[%d] = %s", dims, rank-1-j, extent))
			}
			body = append(body, fmt.Sprintf(
				"%s_arr = np.PyArray_SimpleNewFromData(%d, %s, %s, <void*>%s).T",
				n, rank, dims, p.DType.NpyEnum(), n))
			inArgs = append(inArgs, n+"_arr")
			continue
		}
		params = append(params, fmt.Sprintf("%s *%s", p.DType.KTP, n))
		if p.Intent.IsIn() {
			inArgs = append(inArgs, n+"[0]")
		}
		if p.Intent.IsOut() {
			outTargets = append(outTargets, n+"[0]")
		}
	}
	params = append(params, trailing...)

	call := fmt.Sprintf("%s(%s)", a.cbFuncVar(), strings.Join(inArgs, ", "))
	if len(outTargets) > 0 {
		call = strings.Join(outTargets, ", ") + " = " + call
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\ncdef object %s = None\n", a.cbFuncVar())
	fmt.Fprintf(&sb, "cdef object %s = None\n", a.cbExcVar())
	fmt.Fprintf(&sb, "cdef jmp_buf %s\n\n", a.cbJmpVar())
	fmt.Fprintf(&sb, "cdef void %s(%s) with gil:\n", a.cbTrampolineName(), strings.Join(params, ", "))
	fmt.Fprintf(&sb, "    global %s\n", a.cbExcVar())
	for _, d := range decls {
		sb.WriteString("    " + d + "\n")
	}
	sb.WriteString("    try:\n")
	for _, l := range body {
		sb.WriteString("        " + l + "\n")
	}
	sb.WriteString("        " + call + "\n")
	sb.WriteString("    except BaseException as e:\n")
	fmt.Fprintf(&sb, "        %s = e\n", a.cbExcVar())
	fmt.Fprintf(&sb, "        longjmp(%s, 1)\n", a.cbJmpVar())
	return Utility{Name: a.cbTrampolineName(), Code: sb.String()}
}
