package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fwrap/internal/diag"
	"fwrap/internal/pipeline"
)

const blasSrc = `
module: blas
procedures:
  - name: saxpy
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, intent: [in]}
      - {name: x, type: real, dimension: ["n"], intent: [in]}
  - name: daxpy
    args:
      - {name: n, type: integer, intent: [in]}
      - {name: a, type: real, kind: "8", intent: [in]}
      - {name: x, type: real, kind: "8", dimension: ["n"], intent: [in]}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenWritesFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blas.yaml")
	if err := os.WriteFile(src, []byte(blasSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "fwrap.toml")
	if err := os.WriteFile(cfgPath, []byte("[output]\nmodule = \"blas\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	snap := filepath.Join(dir, "blas.mp")

	out, err := execute(t, "gen", src, "--config", cfgPath, "--out", outDir,
		"--snapshot", snap, "--ui", "off", "--color", "off")
	if err != nil {
		t.Fatalf("gen: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote ") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"blas.pyx.in", "blas.pxd"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	s, err := pipeline.LoadSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if s.Module != "blas" || len(s.Procedures) != 1 {
		t.Fatalf("snapshot: module %q, %d procedures", s.Module, len(s.Procedures))
	}
}

func TestTranslateCommand(t *testing.T) {
	out, err := execute(t, "translate", "--var", "x=x_", "len(x)")
	if err != nil {
		t.Fatalf("translate: %v\n%s", err, out)
	}
	for _, want := range []string{"code:     np.PyArray_DIMS(x_)[0]", "doc:      x_.shape[0]", "requires: x"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTranslateOne(t *testing.T) {
	got := translateOne("n/2", nil)
	if got.Code != "{n} // 2" || got.Error != "" {
		t.Fatalf("unexpected %+v", got)
	}
	if bad := translateOne("n +", nil); bad.Error == "" {
		t.Fatal("expected an error")
	}
}

func TestParseBindings(t *testing.T) {
	vars, err := parseBindings([]string{"n=n_", "x=x_"})
	if err != nil || vars["n"] != "n_" || vars["x"] != "x_" {
		t.Fatalf("got %v, %v", vars, err)
	}
	for _, bad := range []string{"n", "=x", "n="} {
		if _, err := parseBindings([]string{bad}); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected an error")
	}
	if !useProgressUI(uiModeOn, false) || useProgressUI(uiModeOn, true) || useProgressUI(uiModeOff, false) {
		t.Error("explicit ui modes not honoured")
	}
}

func TestPrintGroups(t *testing.T) {
	var buf bytes.Buffer
	if err := printGroups(&buf, [][]string{{"sgemm", "dgemm"}}, "pretty"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "sgemm, dgemm\n" {
		t.Fatalf("got %q", buf.String())
	}
	buf.Reset()
	if err := printGroups(&buf, nil, "json"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestPrintStageTimings(t *testing.T) {
	var timings pipeline.Timings
	timings.Set(pipeline.StageAssemble, 1500000)
	timings.Set(pipeline.StageEmit, 500000)
	var buf bytes.Buffer
	if err := printStageTimings(&buf, timings); err != nil {
		t.Fatal(err)
	}
	want := "assemble 1.5 ms\nemit     0.5 ms\ntotal    2.0 ms\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFileReporterStampsPath(t *testing.T) {
	bag := diag.NewBag(4)
	r := fileReporter{next: diag.BagReporter{Bag: bag}, path: "in.yaml"}
	r.Report(diag.NewWarning(diag.CfgBadInput, "p", "bad"))
	r.Report(diag.NewWarning(diag.CfgBadInput, "q", "bad").WithFile("other.yaml"))
	if got := bag.Items()[0].File; got != "in.yaml" {
		t.Errorf("file = %q", got)
	}
	if got := bag.Items()[1].File; got != "other.yaml" {
		t.Errorf("file = %q", got)
	}
}

func TestExitError(t *testing.T) {
	var err error = &exitError{code: 2}
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Fatal("exitError not recovered")
	}
}
