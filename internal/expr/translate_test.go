package expr

import (
	"errors"
	"testing"

	"fwrap/internal/diag"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		src  string
		code string
		doc  string
		req  []string
	}{
		{"n", "{n}", "{n}", []string{"n"}},
		{"len(x)", "np.PyArray_DIMS({x})[0]", "{x}.shape[0]", []string{"x"}},
		{"shape(a,1)", "np.PyArray_DIMS({a})[1]", "{a}.shape[1]", []string{"a"}},
		{"size(a)", "np.PyArray_SIZE({a})", "{a}.size", []string{"a"}},
		{"rank(a)==2", "np.PyArray_NDIM({a}) == 2", "{a}.ndim == 2", []string{"a"}},
		{"n*2+1", "({n} * 2) + 1", "({n} * 2) + 1", []string{"n"}},
		{"n/2", "{n} // 2", "{n} // 2", []string{"n"}},
		{"n/2.0", "{n} / 2.0", "{n} / 2.0", []string{"n"}},
		{"(float)n/m", "<float>{n} / {m}", "<float>{n} / {m}", []string{"n", "m"}},
		{"a>0 && b>0 || c", "(({a} > 0) and ({b} > 0)) or {c}", "(({a} > 0) and ({b} > 0)) or {c}", []string{"a", "b", "c"}},
		{"!flag", "not {flag}", "not {flag}", []string{"flag"}},
		{"n>0?n:1", "{n} if ({n} > 0) else 1", "{n} if ({n} > 0) else 1", []string{"n"}},
		{"MAX(n,1)", "max({n}, 1)", "max({n}, 1)", []string{"n"}},
		{"n%2==0", "({n} % 2) == 0", "({n} % 2) == 0", []string{"n"}},
		{"-1", "-1", "-1", nil},
		{"1d0", "1e0", "1e0", nil},
		{"(1.0, 0.0)", "1.0", "1.0", nil},
		{"(1.0, 2.5)", "1.0 + 2.5*1j", "1.0 + 2.5*1j", nil},
		{"old_shape(a,0)", "##TODO Get shape before broadcasting: np.PyArray_DIMS({a})[0]", "##TODO Get shape before broadcasting: {a}.shape[0]", []string{"a"}},
		{"old_rank(a)", "##TODO Get ndim before broadcasting: np.PyArray_NDIM({a})", "##TODO Get ndim before broadcasting: {a}.ndim", []string{"a"}},
		{"a ? b : c ? d : e", "{b} if {a} else ({d} if {c} else {e})", "{b} if {a} else ({d} if {c} else {e})", []string{"a", "b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			e, err := Translate(tc.src)
			if err != nil {
				t.Fatalf("translate: %v", err)
			}
			if got := e.Code.String(); got != tc.code {
				t.Errorf("code: got %q want %q", got, tc.code)
			}
			if got := e.Doc.String(); got != tc.doc {
				t.Errorf("doc: got %q want %q", got, tc.doc)
			}
			if len(e.Requires) != len(tc.req) {
				t.Fatalf("requires: got %v want %v", e.Requires, tc.req)
			}
			for i := range tc.req {
				if e.Requires[i] != tc.req[i] {
					t.Fatalf("requires: got %v want %v", e.Requires, tc.req)
				}
			}
		})
	}
}

func TestTranslateFailures(t *testing.T) {
	for _, src := range []string{"foo(x)", "x_capi + 1", "a +", "a ? b", "a[0]", "(n", "min(a)"} {
		_, err := Translate(src)
		if err == nil {
			t.Errorf("%q: expected failure", src)
			continue
		}
		var te *TranslationError
		if !errors.As(err, &te) || te.Source != src {
			t.Errorf("%q: expected TranslationError, got %v", src, err)
		}
		if !diag.IsExpression(err) {
			t.Errorf("%q: error should be in the expression category", src)
		}
	}
	_, err := Translate("a[0]")
	var te *TranslationError
	errors.As(err, &te)
	if te.Offending != "[0]" {
		t.Fatalf("unexpected offending substring %q", te.Offending)
	}
}

func TestTranslateOrPlaceholder(t *testing.T) {
	bag := diag.NewBag(4)
	e := TranslateOrPlaceholder("a[0]", "proc", diag.BagReporter{Bag: bag})
	if !e.Manual || e.IsLiteral() {
		t.Fatalf("placeholder must be manual and non-literal")
	}
	if got := e.Code.String(); got != PlaceholderPrefix+"a[0]" {
		t.Fatalf("unexpected placeholder %q", got)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ExprUntranslatable || bag.Items()[0].Subject != "proc" {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(bag.Items()))
	}
}

func TestSubstitute(t *testing.T) {
	e, err := Translate("len(x) + n")
	if err != nil {
		t.Fatal(err)
	}
	r, err := e.Substitute(map[string]string{"x": "x_", "n": "n"}, map[string]string{"x": "x", "n": "n"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Code != "np.PyArray_DIMS(x_)[0] + n" || r.Doc != "x.shape[0] + n" {
		t.Fatalf("unexpected rendering %+v", r)
	}
	if len(r.Requires) != 2 || r.Requires[0] != "x_" || r.Requires[1] != "n" {
		t.Fatalf("unexpected requires %v", r.Requires)
	}
	if _, err := e.Substitute(map[string]string{}, nil); err == nil {
		t.Fatalf("expected missing name error")
	}
	if e.IsLiteral() {
		t.Fatalf("expression with variables is not literal")
	}
}
