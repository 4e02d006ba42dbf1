package dedup

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/native"
	"fwrap/internal/wrap"
)

const scalDoc = `
procedures:
  - name: sscal
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [inout]}
  - name: dscal
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, kind: "8", intent: [in]}
      - {name: x, type: real, kind: "8", dimension: ["n"], intent: [inout]}
  - name: cscal
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: complex, intent: [in]}
      - {name: x, type: complex, dimension: ["n"], intent: [inout]}
  - name: zscal
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: complex, kind: "16", intent: [in]}
      - {name: x, type: complex, kind: "16", dimension: ["n"], intent: [inout]}
  - name: sfoo
    args:
      - {name: n, type: integer, intent: [in]}
  - name: dfoo
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: m, type: integer, intent: [in]}
  - name: other
    args:
      - {name: s, type: character, len: "*", intent: [in]}
`

func assembleAll(t *testing.T) []*wrap.Procedure {
	t.Helper()
	mod, err := native.DecodeString(scalDoc, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var out []*wrap.Procedure
	for _, np := range mod.Procedures {
		p, err := wrap.Assemble(np, wrap.Options{})
		if err != nil {
			t.Fatalf("assemble %s: %v", np.Name, err)
		}
		out = append(out, p)
	}
	return out
}

func TestFindCandidateGroups(t *testing.T) {
	names := []string{"sdot", "cdotc", "ddot", "zdotu", "cdotu", "zdotc", "sgemm", "dgemm", "xerbla", "cgemm", "scopy"}
	got := FindCandidateGroups(names, DefaultConvention())
	want := [][]string{
		{"sdot", "ddot", "cdotc", "zdotc", "cdotu", "zdotu"},
		{"sgemm", "dgemm", "cgemm"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
}

func TestFindCandidateGroupsConfigurable(t *testing.T) {
	conv := Convention{Prefixes: "sd", RealPrefixes: "sd"}
	got := FindCandidateGroups([]string{"sdot", "ddot", "cdotc", "zdotc"}, conv)
	if len(got) != 1 || !slices.Equal(got[0], []string{"sdot", "ddot"}) {
		t.Fatalf("groups = %v", got)
	}
	if FindCandidateGroups([]string{"sdot", "ddot"}, Convention{}) != nil {
		t.Fatalf("empty convention must not group")
	}
}

func TestTemplateManagerNames(t *testing.T) {
	m := NewTemplateManager()
	if got := m.AddVariable([]string{"a", "b"}, "ktp"); got != "ktp" {
		t.Fatalf("first = %q", got)
	}
	if got := m.AddVariable([]string{"a", "c"}, "ktp"); got != "ktp2" {
		t.Fatalf("second = %q", got)
	}
	if got := m.CodeForValues([]string{"a", "b"}, "other"); got != "{{ktp}}" {
		t.Fatalf("reuse = %q", got)
	}
}

func TestMergeExpandRoundTrip(t *testing.T) {
	procs := assembleAll(t)
	pair := procs[:2]
	tp, err := Merge(pair)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if tp.Name != "{{name}}" || tp.CallName != "{{fc_name}}" {
		t.Fatalf("names not templated: %q %q", tp.Name, tp.CallName)
	}
	var vars []string
	for _, v := range tp.Template.Vars {
		vars = append(vars, v.Name)
	}
	slices.Sort(vars)
	if !slices.Equal(vars, []string{"fc_name", "kind", "ktp", "name", "npy_enum", "py_type"}) {
		t.Fatalf("vars = %v", vars)
	}
	for i, orig := range pair {
		got, err := Expand(tp, i)
		if err != nil {
			t.Fatalf("expand %d: %v", i, err)
		}
		if got.Name != orig.Name || got.CallName != orig.CallName {
			t.Fatalf("expand %d: names %q %q", i, got.Name, got.CallName)
		}
		if !reflect.DeepEqual(got.Resolve(got.CallArgs), orig.Resolve(orig.CallArgs)) {
			t.Fatalf("expand %d: call arguments differ", i)
		}
	}
}

func TestMergeScalarAndComplex(t *testing.T) {
	procs := assembleAll(t)
	tp, err := Merge(procs[:4])
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	z, err := Expand(tp, 3)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if a := z.Arg(z.Args.Find("a")); a.Kind != wrap.KindComplex || a.KTP != "fwc_complex_16_t" {
		t.Fatalf("a = %s", a)
	}

	ctx := wrap.NewContext(wrap.Options{}, nil)
	b := code.NewBuffer()
	if err := tp.Generate(ctx, b); err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"{{for fc_name, kind, ktp, name, npy_enum, py_type, type",
		"cpdef api object {{name}}(fwi_integer_t n, {{ktp}} a, object x):",
		"{{endfor}}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestDeduplicateIsolatesFailures(t *testing.T) {
	procs := assembleAll(t)
	bag := diag.NewBag(16)
	out := Deduplicate(procs, [][]string{{"other", "missing"}}, DefaultConvention(), diag.BagReporter{Bag: bag})

	var names []string
	for _, p := range out {
		names = append(names, strings.Join(p.Names(), "+"))
	}
	want := []string{"sscal+dscal+cscal+zscal", "sfoo", "dfoo", "other"}
	if !slices.Equal(names, want) {
		t.Fatalf("output = %v, want %v", names, want)
	}
	if bag.Count(diag.MisRoleLayout) != 1 || bag.Count(diag.CfgUnknownTemplateMember) != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatGolden(bag.Items()))
	}
	if bag.Count(diag.PipTemplate) != 1 {
		t.Fatalf("template not reported:\n%s", diag.FormatGolden(bag.Items()))
	}
}
