package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"fwrap/internal/diag"
)

func sampleBag() *diag.Bag {
	b := diag.NewBag(10)
	b.Add(diag.NewError(diag.MisArgCount, "axpy_short", "argument counts differ: 1 vs 4").WithFile("blas.yaml"))
	b.Add(diag.NewWarning(diag.ExprUntranslatable, "norm", "cannot translate 'shape(x,3)'").WithNote("placeholder emitted"))
	b.Add(diag.New(diag.SevInfo, diag.PipMerged, "axpy", "merged override"))
	return b
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	err := Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true, Summary: true, MinSeverity: diag.SevWarning})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"blas.yaml:axpy_short: ERROR MIS4001: argument counts differ: 1 vs 4",
		"norm: WARNING EXP3001: cannot translate 'shape(x,3)'",
		"  note: placeholder emitted",
		"1 error, 1 warning",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyColorAndMax(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{Color: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected escape sequences in %q", out)
	}
	if strings.Contains(out, "norm") || !strings.Contains(out, "... 2 more not shown") {
		t.Fatalf("max not applied:\n%s", out)
	}
}

func TestWrap(t *testing.T) {
	msg := "the quick brown fox jumps over the lazy dog again and again"
	got := wrap(msg, 30, 4)
	for i, line := range strings.Split(got, "\n") {
		if i > 0 && !strings.HasPrefix(line, "    ") {
			t.Errorf("line %d not indented: %q", i, line)
		}
		if len(line) > 30 {
			t.Errorf("line %d too long: %q", i, line)
		}
	}
	if wrap(msg, 0, 4) != msg {
		t.Error("width 0 must not wrap")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true, MinSeverity: diag.SevWarning}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("unexpected counts %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Code != "MIS4001" || first.File != "blas.yaml" || first.Title != "Argument count mismatch" {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if len(out.Diagnostics[1].Notes) != 1 {
		t.Fatalf("notes dropped: %+v", out.Diagnostics[1])
	}
}

func TestJSONEmptyBag(t *testing.T) {
	out := BuildDiagnosticsOutput(diag.NewBag(1), JSONOpts{})
	if out.Diagnostics == nil || out.Count != 0 {
		t.Fatalf("expected an empty list, got %+v", out)
	}
}
