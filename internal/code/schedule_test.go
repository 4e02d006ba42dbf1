package code

import (
	"strings"
	"testing"
)

func names(snips []*Snippet) string {
	parts := make([]string, len(snips))
	for i, s := range snips {
		parts[i] = s.Provides.String()
	}
	return strings.Join(parts, " ")
}

func TestScheduleBucketsByPhase(t *testing.T) {
	in := []*Snippet{
		NewSnippet(Check("a")),
		NewSnippet(Init("a")),
		NewSnippet(Check("")),
		NewSnippet(Init("b")),
	}
	got := names(Schedule(in))
	if got != "init:a init:b check:a check:" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestScheduleHonoursRequires(t *testing.T) {
	// x depends on n, which comes later in input order.
	in := []*Snippet{
		NewSnippet(Init("x_"), Init("n")),
		NewSnippet(Init("y_")),
		NewSnippet(Init("n")),
	}
	got := names(Schedule(in))
	if got != "init:y_ init:n init:x_" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestScheduleIgnoresUnknownAndBreaksCycles(t *testing.T) {
	in := []*Snippet{
		NewSnippet(Init("a"), Init("b"), Init("missing")),
		NewSnippet(Init("b"), Init("a")),
		NewSnippet(Init("c")),
	}
	out := Schedule(in)
	if len(out) != 3 {
		t.Fatalf("scheduler dropped snippets: %d", len(out))
	}
	// c is ready first; then the a<->b cycle is broken in input order.
	if got := names(out); got != "init:c init:a init:b" {
		t.Fatalf("unexpected order %q", got)
	}
	if again := names(Schedule(in)); again != names(out) {
		t.Fatalf("scheduling is not deterministic")
	}
}

func TestSnippetPutDedents(t *testing.T) {
	s := NewSnippet(Check("x"))
	s.Put(`
        if n != 3:
            raise ValueError("bad")
    `)
	b := NewBuffer()
	b.Indent()
	s.Emit(b)
	want := "    if n != 3:\n        raise ValueError(\"bad\")\n"
	if b.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", b.String(), want)
	}
}
