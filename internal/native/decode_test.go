package native

import (
	"testing"

	"fwrap/internal/diag"
)

const sampleDoc = `
module: blas
procedures:
  - name: ddot
    kind: function
    return: {type: real, kind: "8"}
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: x, type: real, kind: "8", dimension: ["n"], intent: [in]}
      - {name: y, type: real, kind: "8", dimension: ["0:n-1"], intent: [in]}
  - name: broken
    args:
      - {name: a, type: integer, intent: [in, out]}
  - name: derived
    args:
      - {name: t, type: type}
  - name: flags
    args:
      - {name: flag, type: logical, intent: [in]}
      - {name: label, type: character, len: "*", intent: [inout]}
`

func TestDecodeSkipsBadProcedures(t *testing.T) {
	bag := diag.NewBag(16)
	mod, err := DecodeString(sampleDoc, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mod.Name != "blas" {
		t.Fatalf("unexpected module name %q", mod.Name)
	}
	if len(mod.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(mod.Procedures))
	}
	if bag.Count(diag.CfgAmbiguousIntent) != 1 || bag.Count(diag.UnsDerivedType) != 1 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(bag.Items()))
	}
	for _, d := range bag.Items() {
		if d.Subject != "broken" && d.Subject != "derived" {
			t.Fatalf("diagnostic without procedure subject: %+v", d)
		}
	}

	ddot := mod.Lookup("DDOT")
	if ddot == nil || !ddot.IsFunction() || ddot.Return == nil {
		t.Fatalf("ddot not decoded as function: %+v", ddot)
	}
	if ddot.Return.DType.KTP != "fwr_real_8_t" || ddot.Return.Intent != IntentOut {
		t.Fatalf("unexpected return arg %+v", ddot.Return)
	}
	y := ddot.Arg("y")
	if got := y.Dimension.SizeExprs()[0]; got != "((n-1) - (0) + 1)" {
		t.Fatalf("unexpected size expression %q", got)
	}
	if got := y.Dimension.AttrSpec(); got != "dimension(0:n-1)" {
		t.Fatalf("unexpected attrspec %q", got)
	}
	if deps := y.Dimension.DepNames(); len(deps) != 1 || deps[0] != "n" {
		t.Fatalf("unexpected deps %v", deps)
	}

	flags := mod.Lookup("flags")
	if flags.Args[0].DType.KTP != "fwl_logical_t" {
		t.Fatalf("unexpected logical ktp %q", flags.Args[0].DType.KTP)
	}
	if flags.Args[1].DType.Len != "*" || flags.Args[1].DType.KTP != "fw_character_xX_t" {
		t.Fatalf("unexpected character dtype %+v", flags.Args[1].DType)
	}
}

func TestOverrideIntents(t *testing.T) {
	cases := []struct {
		intents  []string
		want     Intent
		hide     bool
		noReturn bool
	}{
		{[]string{"in", "out"}, IntentInOut, false, false},
		{[]string{"inout"}, IntentInOut, false, true},
		{[]string{"in"}, IntentIn, false, false},
		{[]string{"out", "hide"}, IntentOut, false, false},
		{[]string{"hide"}, IntentNone, true, false},
		{nil, IntentInOut, false, false},
	}
	for _, tc := range cases {
		arg := &Argument{Name: "x"}
		if err := resolveOverrideIntent(arg, tc.intents); err != nil {
			t.Fatalf("%v: %v", tc.intents, err)
		}
		if arg.Intent != tc.want || arg.Hide != tc.hide || arg.NoReturn != tc.noReturn {
			t.Errorf("%v: got intent=%v hide=%v noreturn=%v", tc.intents, arg.Intent, arg.Hide, arg.NoReturn)
		}
	}
}

func TestCopyOverwriteConflict(t *testing.T) {
	arg := &Argument{Name: "a"}
	err := resolveOverrideIntent(arg, []string{"in", "copy", "overwrite"})
	if diag.CodeOf(err) != diag.CfgConflictingOverwrite {
		t.Fatalf("expected conflicting overwrite, got %v", err)
	}
	arg = &Argument{Name: "a"}
	if err := resolveOverrideIntent(arg, []string{"in", "overwrite", "aligned8"}); err != nil {
		t.Fatal(err)
	}
	if !arg.OverwriteFlag || !arg.OverwriteDefault || arg.Align != 8 {
		t.Fatalf("unexpected annotations %+v", arg.Annotations)
	}
}

func TestWithDoesNotAlias(t *testing.T) {
	orig := &Argument{Name: "a", Dimension: Dimension{{Upper: "n"}}, Annotations: Annotations{Depend: []string{"n"}}}
	cp := orig.With(func(a *Argument) {
		a.Dimension[0].Upper = "m"
		a.Depend[0] = "m"
	})
	if orig.Dimension[0].Upper != "n" || orig.Depend[0] != "n" {
		t.Fatalf("With mutated the original: %+v", orig)
	}
	if cp.Dimension[0].Upper != "m" {
		t.Fatalf("With did not apply: %+v", cp)
	}
}

func TestMangleKeyword(t *testing.T) {
	if MangleKeyword("class") != "class__" || MangleKeyword("x") != "x" {
		t.Fatalf("keyword mangling broken")
	}
	if FoldName("DGEMM") != FoldName("dgemm") {
		t.Fatalf("FoldName must be case-insensitive")
	}
}
