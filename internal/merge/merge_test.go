package merge

import (
	"slices"
	"strings"
	"testing"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

const nativeDoc = `
procedures:
  - name: axpy
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [in]}
      - {name: y, type: real, dimension: ["n"], intent: [inout]}
  - name: shift
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, dimension: ["*"], intent: [inout]}
  - name: other
    args:
      - {name: k, type: integer, intent: [in]}
`

const overrideDoc = `
language: override
procedures:
  - name: axpy
    args:
      - {name: n, type: integer, intent: [in, hide], depend: [x]}
      - {name: a, type: real, intent: [in], default: "1.0"}
      - {name: x, type: real, dimension: ["n"], intent: [in]}
      - {name: y, type: real, dimension: ["n"], intent: [in, out], check: ["len(y) >= n"]}
  - name: axpy_short
    fortranname: axpy
    args:
      - {name: x, type: real, dimension: ["*"], intent: [in]}
  - name: shift_tail
    fortranname: shift
    callstatement: "(*f2py_func)(&m, x+k)"
    args:
      - {name: x, type: real, dimension: ["*"], intent: [in, out]}
      - {name: k, type: integer, intent: [in]}
  - name: ghost
    args:
      - {name: q, type: integer, intent: [in]}
`

func assembleAll(t *testing.T, src string) map[string]*wrap.Procedure {
	t.Helper()
	return assembleWith(t, src, wrap.Options{})
}

func assembleWith(t *testing.T, src string, opts wrap.Options) map[string]*wrap.Procedure {
	t.Helper()
	mod, err := native.DecodeString(src, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := make(map[string]*wrap.Procedure)
	for _, np := range mod.Procedures {
		p, err := wrap.Assemble(np, opts)
		if err != nil {
			t.Fatalf("assemble %s: %v", np.Name, err)
		}
		out[p.Name] = p
	}
	return out
}

func argNames(p *wrap.Procedure, ids []wrap.ArgID) []string {
	var out []string
	for _, a := range p.Resolve(ids) {
		out = append(out, a.Name)
	}
	return out
}

func TestPositionalMerge(t *testing.T) {
	canon := assembleAll(t, nativeDoc)["axpy"]
	over := assembleAll(t, overrideDoc)["axpy"]

	res, err := MergeProcedure(canon, over, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Name != "axpy" || res.CallName != "axpy_c" || res.Language != native.LangOverride {
		t.Fatalf("unexpected identity %s/%s/%v", res.Name, res.CallName, res.Language)
	}
	if got := argNames(res, res.CallArgs); !slices.Equal(got, []string{"n", "a", "x", "y", native.ErrName}) {
		t.Fatalf("call args = %v", got)
	}
	if got := argNames(res, res.InArgs); !slices.Equal(got, []string{"x", "y", "a"}) {
		t.Fatalf("in args = %v", got)
	}
	if got := argNames(res, res.OutArgs); !slices.Equal(got, []string{"y"}) {
		t.Fatalf("out args = %v", got)
	}

	n := res.Arg(res.Args.Find("n"))
	if n.Default == nil || !n.DeferInit || n.RawDefault != "" {
		t.Fatalf("n default not derived from x: %+v", n)
	}
	a := res.Arg(res.Args.Find("a"))
	if a.Default == nil || a.DeferInit {
		t.Fatalf("literal default should stay in the signature: %+v", a)
	}
	if len(res.Checks) != 1 || len(res.Arg(res.Args.Find("y")).RawChecks) != 0 {
		t.Fatalf("checks not moved to the procedure: %d", len(res.Checks))
	}

	ctx := wrap.NewContext(res.Opts, nil)
	b := code.NewBuffer()
	if err := res.Generate(ctx, b); err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"n = np.PyArray_DIMS(x_)[0]",
		"axpy_c(&n, &a, np.PyArray_DIMS(x_), <fwr_real_t*>np.PyArray_DATA(x_), np.PyArray_DIMS(y_), <fwr_real_t*>np.PyArray_DATA(y_), &fw_iserr__)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "x_, x = ") > strings.Index(out, "n = np.PyArray_DIMS(x_)[0]") {
		t.Errorf("x must be converted before n is derived from it:\n%s", out)
	}
}

func TestPositionalCountMismatch(t *testing.T) {
	canon := assembleAll(t, nativeDoc)["axpy"]
	over := assembleAll(t, overrideDoc)["axpy_short"]
	_, err := MergeProcedure(canon, over, nil)
	if diag.CodeOf(err) != diag.MisArgCount {
		t.Fatalf("got %v, want an argument count mismatch", err)
	}
	if e, ok := diag.AsError(err); !ok || e.Subject != "axpy_short" {
		t.Fatalf("error not attributed to the override: %v", err)
	}
}

const fillNative = `
procedures:
  - name: fill
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [inout]}
`

const fillOverride = `
language: override
procedures:
  - name: fill
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [in, out], depend: [n]}
  - name: fill_loose
    fortranname: fill
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [in, out]}
`

func TestExplicitDependDisablesTruncation(t *testing.T) {
	opts := wrap.Options{F77Binding: true}
	canon := assembleWith(t, fillNative, opts)["fill"]
	overs := assembleWith(t, fillOverride, opts)

	for _, tc := range []struct {
		name  string
		exact bool
		want  string
	}{
		{"fill", true, "if n != x_shape_[0]:"},
		{"fill_loose", false, "if not (0 <= n <= x_shape_[0]):"},
	} {
		res, err := MergeProcedure(canon, overs[tc.name], nil)
		if err != nil {
			t.Fatalf("%s: merge: %v", tc.name, err)
		}
		x := res.Arg(res.Args.Find("x"))
		if x.NoTruncation != tc.exact {
			t.Errorf("%s: NoTruncation = %v, want %v", tc.name, x.NoTruncation, tc.exact)
		}
		ctx := wrap.NewContext(res.Opts, nil)
		b := code.NewBuffer()
		if err := res.Generate(ctx, b); err != nil {
			t.Fatalf("%s: generate: %v", tc.name, err)
		}
		if out := b.String(); !strings.Contains(out, tc.want) {
			t.Errorf("%s: missing %q in:\n%s", tc.name, tc.want, out)
		}
	}
}

func TestCallStatementMerge(t *testing.T) {
	canon := assembleAll(t, nativeDoc)["shift"]
	over := assembleAll(t, overrideDoc)["shift_tail"]

	res, err := MergeProcedure(canon, over, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	calls := res.Resolve(res.CallArgs)
	if len(calls) != 3 {
		t.Fatalf("call args = %v", argNames(res, res.CallArgs))
	}
	if calls[0].Name != "n_f" || !calls[0].Hide || calls[0].Default == nil || !calls[0].Default.Manual {
		t.Fatalf("unknown name should yield a placeholder temporary, got %+v", calls[0])
	}
	if calls[1].Name != "x" || calls[1].MemOffset != "k" {
		t.Fatalf("offset not applied: %+v", calls[1])
	}
	if got := argNames(res, res.InArgs); !slices.Equal(got, []string{"x", "k"}) {
		t.Fatalf("in args = %v", got)
	}
}

func TestCallStatementErrors(t *testing.T) {
	canon := assembleAll(t, nativeDoc)["shift"]
	tests := []struct {
		stmt string
		want diag.Code
	}{
		{"(*f2py_func)(&k+1, x)", diag.MisAddressWithOffset},
		{"(*f2py_func)(k+1, x)", diag.MisScalarOffset},
		{"(*f2py_func)(k)", diag.MisArgCount},
		{"f(k, x)", diag.MisCallStatement},
	}
	for _, tc := range tests {
		over := assembleAll(t, overrideDoc)["shift_tail"]
		over.CallStatement = tc.stmt
		if _, err := MergeProcedure(canon, over, nil); diag.CodeOf(err) != tc.want {
			t.Errorf("%s: got %v, want %s", tc.stmt, err, tc.want)
		}
	}
}

func TestParseCallStatement(t *testing.T) {
	cs, err := ParseCallStatement("{int k = 2; (*f2py_func)(&n, f(a, b), x+k); free(w);}")
	if err != nil {
		t.Fatal(err)
	}
	if cs.PreCall != "int k = 2;" || cs.PostCall != "free(w)" {
		t.Fatalf("pre %q post %q", cs.PreCall, cs.PostCall)
	}
	if !slices.Equal(cs.Args, []string{"&n", "f(a, b)", "x+k"}) {
		t.Fatalf("args = %q", cs.Args)
	}
}

func TestMergeAllIsolatesFailures(t *testing.T) {
	natives := assembleAll(t, nativeDoc)
	overs := assembleAll(t, overrideDoc)
	canonical := []*wrap.Procedure{natives["axpy"], natives["shift"], natives["other"]}
	overrides := []*wrap.Procedure{overs["axpy_short"], overs["axpy"], overs["shift_tail"], overs["ghost"]}

	bag := diag.NewBag(32)
	out := MergeAll(canonical, overrides, diag.BagReporter{Bag: bag})

	var names []string
	for _, p := range out {
		names = append(names, p.Name)
	}
	if !slices.Equal(names, []string{"axpy", "axpy", "shift_tail", "other"}) {
		t.Fatalf("merged names = %v", names)
	}
	if out[0].Language != native.LangNative {
		t.Fatalf("failed merge should keep the native wrapper")
	}
	if out[0] == natives["axpy"] {
		t.Fatalf("failed merge should yield a copy")
	}
	if out[1].Language != native.LangOverride {
		t.Fatalf("override after a failed one was not merged: %v", out[1].Language)
	}
	if bag.Count(diag.MisArgCount) != 1 || bag.Count(diag.PipMerged) != 2 || bag.Count(diag.PipSkipped) != 1 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(bag.Items()))
	}
}

func TestMergeAllKeepsOneCopyPerRoutine(t *testing.T) {
	natives := assembleAll(t, nativeDoc)
	overs := assembleAll(t, overrideDoc)
	canonical := []*wrap.Procedure{natives["axpy"]}
	overrides := []*wrap.Procedure{overs["axpy_short"], overs["axpy_short"]}

	bag := diag.NewBag(32)
	out := MergeAll(canonical, overrides, diag.BagReporter{Bag: bag})
	if len(out) != 1 || out[0].Language != native.LangNative {
		t.Fatalf("expected a single native copy, got %d procedures", len(out))
	}
	if bag.Count(diag.MisArgCount) != 2 {
		t.Fatalf("each failed override should be reported:\n%s", diag.FormatGolden(bag.Items()))
	}
}

func TestStandalone(t *testing.T) {
	over := assembleAll(t, overrideDoc)["axpy"]
	res, err := Standalone(over, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := argNames(res, res.InArgs); !slices.Equal(got, []string{"x", "y", "a"}) {
		t.Fatalf("in args = %v", got)
	}
	if a := res.Arg(res.Args.Find("a")); a.Default == nil || a.RawDefault != "" {
		t.Fatalf("default not translated: %+v", a)
	}
	if over.Arg(over.Args.Find("a")).RawDefault != "1.0" {
		t.Fatalf("input procedure was modified")
	}
}
