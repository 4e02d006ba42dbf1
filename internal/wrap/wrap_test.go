package wrap

import (
	"slices"
	"strings"
	"testing"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/native"
)

const wrapDoc = `
procedures:
  - name: setflag
    args:
      - {name: x, type: logical, intent: [in]}
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, kind: "8", dimension: ["n"], intent: [out]}
  - name: strproc
    args:
      - {name: s, type: character, len: "*", intent: [in]}
      - {name: k, type: integer, intent: [in]}
  - name: fdot
    kind: function
    return: {type: real}
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [in]}
  - name: mixed
    args:
      - {name: arr, type: real, dimension: ["n"], intent: [out]}
      - {name: n, type: integer, intent: [in]}
      - {name: c, type: character, intent: [in]}
      - {name: z, type: complex, intent: [inout]}
      - {name: fw_iserr__, type: integer, intent: [out]}
      - {name: names, type: character, len: "8", dimension: ["n"], intent: [in]}
  - name: apply
    args:
      - {name: n, type: integer, intent: [in]}
      - name: f
        type: callback
        callback:
          args:
            - {name: x, type: real, intent: [in]}
            - {name: y, type: real, intent: [out]}
  - name: scale
    args:
      - {name: v, type: real, dimension: ["*"], intent: [inout, overwrite]}
  - name: strout
    args:
      - {name: o, type: character, len: "16", intent: [out]}
      - {name: io, type: character, len: "*", intent: [inout]}
  - name: chars
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: c, type: character, intent: [in]}
      - {name: names, type: character, len: "8", dimension: ["n"], intent: [in]}
`

func decodeProc(t *testing.T, name string) *native.Procedure {
	t.Helper()
	bag := diag.NewBag(16)
	mod, err := native.DecodeString(wrapDoc, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(bag.Items()))
	}
	p := mod.Lookup(name)
	if p == nil {
		t.Fatalf("procedure %q not found", name)
	}
	return p
}

func assemble(t *testing.T, name string, opts Options) *Procedure {
	t.Helper()
	p, err := Assemble(decodeProc(t, name), opts)
	if err != nil {
		t.Fatalf("assemble %s: %v", name, err)
	}
	return p
}

func generate(t *testing.T, p *Procedure) (string, *Context) {
	t.Helper()
	ctx := NewContext(p.Opts, nil)
	b := code.NewBuffer()
	if err := p.Generate(ctx, b); err != nil {
		t.Fatalf("generate %s: %v", p.Name, err)
	}
	return b.String(), ctx
}

func mustContain(t *testing.T, out string, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if !strings.Contains(out, l) {
			t.Errorf("missing %q in:\n%s", l, out)
		}
	}
}

func TestClassifyKinds(t *testing.T) {
	proc := decodeProc(t, "mixed")
	want := map[string]ArgKind{
		"arr":        KindArray,
		"n":          KindScalar,
		"c":          KindSingleChar,
		"z":          KindComplex,
		"fw_iserr__": KindErrorStatus,
		"names":      KindCharArray,
	}
	for _, na := range proc.Args {
		a, err := Classify(na, na.IsArray(), proc.Name)
		if err != nil {
			t.Fatalf("classify %s: %v", na.Name, err)
		}
		if a.Kind != want[na.Name] {
			t.Errorf("%s: got %s, want %s", na.Name, a.Kind, want[na.Name])
		}
		again, _ := Classify(na, na.IsArray(), proc.Name)
		d1, ok1 := a.ExternDecl()
		d2, ok2 := again.ExternDecl()
		if again.Kind != a.Kind || d1 != d2 || ok1 != ok2 {
			t.Errorf("%s: classification is not deterministic", na.Name)
		}
	}
}

func TestBooleanScalarConversion(t *testing.T) {
	p := assemble(t, "setflag", Options{})
	x := p.Arg(p.Args.Find("x"))
	d, ok := x.ExternDecl()
	if !ok || d.Decl != "bint x" {
		t.Fatalf("extern decl = %+v", d)
	}
	if got := x.InternDecls(NewContext(Options{}, nil), true); !slices.Equal(got, []string{"cdef fwl_logical_t x_"}) {
		t.Fatalf("intern decls = %v", got)
	}
	snips, err := x.Snippets(NewContext(Options{}, nil), p.VarNames())
	if err != nil {
		t.Fatalf("snippets: %v", err)
	}
	if len(snips) != 1 || !slices.Equal(snips[0].Lines, []string{"x_ = 1 if x else 0"}) {
		t.Fatalf("unexpected init code %+v", snips)
	}
	if f := x.CallFragments(NewContext(Options{}, nil)); !slices.Equal(f.Positional, []string{"&x_"}) {
		t.Fatalf("call fragments = %+v", f)
	}
}

func TestOptionalInputsAreTrailing(t *testing.T) {
	p := assemble(t, "setflag", Options{})
	if got := p.OptionalMask(); !slices.Equal(got, []bool{false, false, true}) {
		t.Fatalf("mask = %v", got)
	}
	m := assemble(t, "mixed", Options{})
	mask := m.OptionalMask()
	if mask[0] {
		t.Fatalf("leading optional array kept its default: %v", mask)
	}
	for i := 1; i < len(mask); i++ {
		if mask[i-1] && !mask[i] {
			t.Fatalf("optionality increases at %d: %v", i, mask)
		}
	}
	if !m.Arg(m.InArgs[0]).IsOptional() {
		t.Fatalf("arr should be optional on its own")
	}
}

func TestErrorStatusIsHidden(t *testing.T) {
	p := assemble(t, "setflag", Options{})
	id := p.Args.Find(native.ErrName)
	if id == NoArg {
		t.Fatalf("status argument not synthesized")
	}
	if !slices.Contains(p.CallArgs, id) || !slices.Contains(p.AuxArgs, id) {
		t.Fatalf("status argument must be a hidden call argument")
	}
	if slices.Contains(p.InArgs, id) || slices.Contains(p.OutArgs, id) {
		t.Fatalf("status argument must not be host-visible")
	}
	if _, ok := p.Arg(id).ExternDecl(); ok {
		t.Fatalf("status argument has an extern declaration")
	}

	m := assemble(t, "mixed", Options{})
	count := 0
	for _, a := range m.Resolve(m.CallArgs) {
		if a.Kind == KindErrorStatus {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("explicit status argument duplicated: %d", count)
	}
}

func TestGenerateSubroutine(t *testing.T) {
	p := assemble(t, "setflag", Options{})
	out, ctx := generate(t, p)
	mustContain(t, out,
		"cpdef api object setflag(bint x, fwi_integer_t n, object a=None):",
		`    """setflag(x, n[, a]) -> a`,
		"    cdef fwl_logical_t x_",
		"    cdef np.ndarray a_",
		"    cdef fwi_integer_t fw_iserr__",
		"    x_ = 1 if x else 0",
		"    a_, a = fw_explicitshapearray(a, fwr_real_8_t_enum, 1, [n], False)",
		"    setflag_c(&x_, &n, np.PyArray_DIMS(a_), <fwr_real_8_t*>np.PyArray_DATA(a_), &fw_iserr__)",
		"    if fw_iserr__ != FW_NO_ERR__:",
		"    return a\n",
	)
	if strings.Contains(out, "try:") {
		t.Fatalf("try block without cleanup code:\n%s", out)
	}
	var names []string
	for _, u := range ctx.Utilities() {
		names = append(names, u.Name)
	}
	if !slices.Equal(names, []string{"fw_asfortranarray", "fw_explicitshapearray"}) {
		t.Fatalf("utilities = %v", names)
	}
	if got := p.Prototype(true); got != "cpdef api object setflag(bint x, fwi_integer_t n, object a=*)" {
		t.Fatalf("pxd prototype = %q", got)
	}
}

func TestGenerateDirectCall(t *testing.T) {
	s := assemble(t, "strproc", Options{F77Binding: true})
	out, _ := generate(t, s)
	mustContain(t, out,
		"    fw_s_len = len(s)",
		"    fw_s = s",
		"    strproc(<char*>fw_s, &k, fw_s_len)",
	)
	if strings.Contains(out, "fw_iserr__") {
		t.Fatalf("direct call must not use a status flag:\n%s", out)
	}

	f := assemble(t, "fdot", Options{F77Binding: true})
	out, _ = generate(t, f)
	mustContain(t, out,
		"    cdef fwr_real_t fw_ret_arg",
		"    fw_copyshape(x_shape_, np.PyArray_DIMS(x_), 1)",
		"    if not (0 <= n <= x_shape_[0]):",
		`        raise ValueError("(0 <= n <= x.shape[0]) not satisfied")`,
		"    fw_ret_arg = fdot(&n, <fwr_real_t*>np.PyArray_DATA(x_))",
		"    return fw_ret_arg\n",
	)
	if strings.Index(out, "fw_copyshape(") > strings.Index(out, "if not (0 <= n") {
		t.Fatalf("check emitted before initialization:\n%s", out)
	}
}

func TestGenerateStringOutputs(t *testing.T) {
	p := assemble(t, "strout", Options{})
	out, _ := generate(t, p)
	mustContain(t, out,
		"    fw_o_len = 16",
		"    fw_o = PyBytes_FromStringAndSize(NULL, fw_o_len)",
		"    fw_o_buf = <char*>fw_o",
		"    fw_io_len = len(io)",
		"    fw_io = PyBytes_FromStringAndSize(NULL, fw_io_len)",
		"    fw_io_buf = <char*>fw_io",
		"    memcpy(fw_io_buf, <char*>io, fw_io_len+1)",
		"strout_c(&fw_o_len, fw_o_buf, &fw_io_len, fw_io_buf, &fw_iserr__)",
		"    return (fw_o, fw_io,)\n",
	)
	if strings.Contains(out, "memcpy(fw_o_buf") {
		t.Fatalf("out-only string must not copy its input:\n%s", out)
	}
}

func TestGenerateCharacters(t *testing.T) {
	p := assemble(t, "chars", Options{})
	out, ctx := generate(t, p)
	mustContain(t, out,
		"    fw_c[0] = fw_aschar(c)",
		"    if fw_c[0] == 0:",
		`        raise ValueError("len(c) != 1")`,
		"    names__odtype = names.dtype",
		"    names.dtype = 'b'",
		"    names_ = names",
		"*>names_.data",
		"    try:\n        if fw_iserr__ != FW_NO_ERR__:",
		"    finally:\n        names.dtype = names__odtype\n",
	)
	if strings.Index(out, "names.dtype = 'b'") > strings.Index(out, "chars_c(") {
		t.Fatalf("dtype must be reinterpreted before the call:\n%s", out)
	}
	found := false
	for _, u := range ctx.Utilities() {
		found = found || u.Name == "fw_aschar"
	}
	if !found {
		t.Fatalf("fw_aschar utility not registered")
	}
}

func TestGenerateFunctionReturnsFirst(t *testing.T) {
	p := assemble(t, "fdot", Options{})
	if p.OutArgs[0] != p.Return || p.CallArgs[0] != p.Return {
		t.Fatalf("function result must lead outputs and call arguments")
	}
	out, _ := generate(t, p)
	mustContain(t, out, "fdot_c(&fw_ret_arg, &n, np.PyArray_DIMS(x_), <fwr_real_t*>np.PyArray_DATA(x_), &fw_iserr__)")
}

func TestGenerateCallback(t *testing.T) {
	p := assemble(t, "apply", Options{})
	out, ctx := generate(t, p)
	mustContain(t, out,
		"    cdef object fw_saved_f",
		"    if setjmp(fw_cb_apply_f_jmp) != 0:",
		"    apply_c(&n, fw_cb_apply_f, &fw_iserr__)",
		"    try:",
		"    finally:",
		"        fw_cb_apply_f_fn = fw_saved_f",
	)
	utils := ctx.Utilities()
	if len(utils) != 1 || utils[0].Name != "fw_cb_apply_f" {
		t.Fatalf("utilities = %+v", utils)
	}
	mustContain(t, utils[0].Code,
		"cdef void fw_cb_apply_f(fwr_real_t *x, fwr_real_t *y) with gil:",
		"        y[0] = fw_cb_apply_f_fn(x[0])",
	)
	if doc := p.Arg(p.Args.Find("f")).DocIn(); len(doc) != 1 || !strings.Contains(doc[0], "f(x) -> y") {
		t.Fatalf("callback doc = %v", doc)
	}
}

func TestOverwriteFlagSynthesis(t *testing.T) {
	p := assemble(t, "scale", Options{})
	ins := p.Resolve(p.InArgs)
	if len(ins) != 2 || ins[1].Name != "overwrite_v" || ins[1].KTP != "bint" {
		t.Fatalf("in args = %v", ins)
	}
	if ins[0].OverwriteFlagName != "overwrite_v" {
		t.Fatalf("array not linked to its flag")
	}
	if err := p.SynthesizeOverwriteFlags(); err != nil || len(p.InArgs) != 2 {
		t.Fatalf("synthesis is not idempotent: %v %d", err, len(p.InArgs))
	}
	out, _ := generate(t, p)
	mustContain(t, out,
		"object v, bint overwrite_v=True",
		"v_, v = fw_asfortranarray(v, fwr_real_t_enum, 1, not overwrite_v)",
	)
}

func TestOptionalArrayNeedsExplicitShape(t *testing.T) {
	na := &native.Argument{
		Name:        "w",
		DType:       native.DType{Type: native.TypeReal, KTP: "fwr_real_t"},
		Dimension:   native.Dimension{{Upper: "*"}},
		Intent:      native.IntentIn,
		Annotations: native.Annotations{Optional: true},
	}
	_, err := Classify(na, true, "p")
	if diag.CodeOf(err) != diag.CfgOptionalArrayShape {
		t.Fatalf("expected optional-shape error, got %v", err)
	}
	if e, _ := diag.AsError(err); e.Subject != "p" {
		t.Fatalf("error not attributed to procedure: %v", err)
	}
}

func TestTemplateLoop(t *testing.T) {
	tp := &Template{
		Names: []string{"sfoo", "dfoo"},
		Vars: []TemplateVar{
			{Name: "name", Values: []string{"sfoo", "dfoo"}},
			{Name: "ktp", Values: []string{"fwr_real_t", "fwr_dbl_t"}},
		},
	}
	b := code.NewBuffer()
	tp.StartLoop(b)
	tp.EndLoop(b)
	want := "{{for ktp, name\n" +
		"      in zip(['fwr_real_t', 'fwr_dbl_t'],\n" +
		"             ['sfoo', 'dfoo'])}}\n" +
		"{{endfor}}\n"
	if b.String() != want {
		t.Fatalf("loop:\n%s\nwant:\n%s", b.String(), want)
	}
}
