package diag

import (
	"fmt"
	"strings"
	"testing"
)

func TestBagLimitAndMerge(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewWarning(PipSkipped, "a", "x")) || !b.Add(NewWarning(PipSkipped, "b", "y")) {
		t.Fatalf("expected first two adds to succeed")
	}
	if b.Add(NewWarning(PipSkipped, "c", "z")) {
		t.Fatalf("expected add past limit to fail")
	}
	other := NewBag(4)
	other.Add(NewError(MisArgCount, "d", "w"))
	b.Merge(other)
	if b.Len() != 3 || !b.HasErrors() {
		t.Fatalf("unexpected bag after merge: len=%d errors=%v", b.Len(), b.HasErrors())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewWarning(ExprUntranslatable, "zfoo", "bad"))
	b.Add(NewError(MisArgCount, "afoo", "count"))
	b.Add(NewWarning(ExprUntranslatable, "zfoo", "bad"))
	b.Add(NewWarning(PipSkipped, "afoo", "skip"))
	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("expected 3 after dedup, got %d", b.Len())
	}
	b.Sort()
	got := FormatGolden(b.Items())
	want := strings.Join([]string{
		"ERROR MIS4001 afoo: count",
		"WARNING PIP5001 afoo: skip",
		"WARNING EXP3001 zfoo: bad",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected golden output:\n%s\nwant:\n%s", got, want)
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	for range 3 {
		ReportWarning(r, UnsDerivedType, "foo", "derived type").WithNote("skipped").Emit()
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", b.Len())
	}
	if n := b.Items()[0].Notes; len(n) != 1 || n[0] != "skipped" {
		t.Fatalf("unexpected notes: %v", n)
	}
}

func TestErrorCategories(t *testing.T) {
	err := fmt.Errorf("wrapping: %w", Errorf(CfgMissingIntent, "argument %q has no intent", "x").For("foo"))
	if !IsConfiguration(err) || IsMismatch(err) {
		t.Fatalf("wrong category for %v", err)
	}
	if CodeOf(err) != CfgMissingIntent {
		t.Fatalf("unexpected code %v", CodeOf(err))
	}
	if !strings.Contains(err.Error(), `foo: argument "x" has no intent`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if CodeOf(fmt.Errorf("plain")) != UnknownCode {
		t.Fatalf("plain error must map to UnknownCode")
	}
	if CfgMissingIntent.ID() != "CFG1004" || !UnsArrayReturn.IsUnsupported() {
		t.Fatalf("unexpected ID/category")
	}
}

func TestReportErrKeepsSubject(t *testing.T) {
	b := NewBag(4)
	ReportErr(BagReporter{Bag: b}, SevWarning, "outer", Errorf(MisCallStatement, "cannot parse").For("inner"))
	d := b.Items()[0]
	if d.Subject != "inner" || d.Code != MisCallStatement {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}
