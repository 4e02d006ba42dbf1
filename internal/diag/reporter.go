package diag

import "sync"

// Reporter is the minimal contract passes use to emit diagnostics.
// Implementations: BagReporter, LockedReporter, DedupReporter, NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, subject, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, subject, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, subject, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, subject, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, subject, msg)
}

func (b *ReportBuilder) WithNote(msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(msg)
	return b
}

func (b *ReportBuilder) WithFile(path string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.File = path
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// ReportErr converts err into a diagnostic. Typed *Error values keep their
// code; anything else is reported as UnknownCode.
func ReportErr(r Reporter, sev Severity, subject string, err error) {
	if r == nil || err == nil {
		return
	}
	code := CodeOf(err)
	if e, ok := AsError(err); ok && e.Subject != "" {
		subject = e.Subject
	}
	r.Report(New(sev, code, subject, err.Error()))
}

// BagReporter writes into *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// LockedReporter serialises Report calls for use from worker goroutines.
type LockedReporter struct {
	mu   sync.Mutex
	next Reporter
}

func NewLockedReporter(next Reporter) *LockedReporter {
	return &LockedReporter{next: next}
}

func (r *LockedReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	r.mu.Lock()
	r.next.Report(d)
	r.mu.Unlock()
}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}

// NopReporter discards everything.
var NopReporter Reporter = nopReporter{}
