package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(`
[wrap]
f77binding = true

[[template]]
names = ["sfoo", "dfoo"]

[output]
module = "blas"
`)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Wrap.F77Binding || !cfg.Wrap.DetectTemplates {
		t.Fatalf("wrap = %+v", cfg.Wrap)
	}
	if cfg.Output.Module != "blas" || !cfg.Output.Declarations {
		t.Fatalf("output = %+v", cfg.Output)
	}
	if got := cfg.ExplicitGroups(); len(got) != 1 || !slices.Equal(got[0], []string{"sfoo", "dfoo"}) {
		t.Fatalf("groups = %v", got)
	}
	if conv := cfg.Convention(); conv.Prefixes != "sdcz" || conv.RealPrefixes != "sd" {
		t.Fatalf("convention = %+v", conv)
	}
	if !cfg.WrapOptions().F77Binding {
		t.Fatal("wrap options lost f77binding")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown key", "[wrap]\nf77 = true\n", ErrUnknownKey},
		{"unknown table", "[extra]\nx = 1\n", ErrUnknownKey},
		{"bad module", "[output]\nmodule = \"1x\"\n", ErrInvalid},
		{"real prefix", "[naming]\nprefixes = \"sd\"\nreal-prefixes = \"q\"\n", ErrInvalid},
		{"lonely template", "[[template]]\nnames = [\"a\"]\n", ErrInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.src); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNamingPrefixesResetRealPrefixes(t *testing.T) {
	cfg, err := Parse("[naming]\nprefixes = \"hs\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Naming.RealPrefixes != "" {
		t.Fatalf("real prefixes = %q", cfg.Naming.RealPrefixes)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := Find(nested); err != nil || ok {
		t.Fatalf("unexpected config found: %v", err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte("[output]\nmodule = \"m\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, found, err := LoadOrDefault(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != path || cfg.Output.Module != "m" {
		t.Fatalf("found %q module %q", found, cfg.Output.Module)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Default().Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[wrap]") {
		t.Fatalf("encoded:\n%s", data)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, data)
	}
	if cfg.Output.Module != "fwrapped" || !cfg.Wrap.DetectTemplates {
		t.Fatalf("round trip lost values: %+v", cfg)
	}
}
