package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredPlain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
	}
	for _, tc := range tests {
		if got := Colored(tc.in); got != tc.want {
			t.Errorf("Colored(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColoredHighlights(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	got := Colored("1.2.3-rc1")
	if got == "1.2.3-rc1" {
		t.Fatal("expected escape sequences")
	}
	if len(got) <= len("1.2.3-rc1") {
		t.Fatalf("unexpected rendering %q", got)
	}
}
