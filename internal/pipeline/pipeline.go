// Package pipeline runs the generator over a whole module: assemble every
// native procedure, merge overrides, detect templates and render the
// output files. A failing procedure is reported and left out; the run
// itself only fails on cancellation or I/O errors.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"fwrap/internal/config"
	"fwrap/internal/dedup"
	"fwrap/internal/diag"
	"fwrap/internal/merge"
	"fwrap/internal/native"
	"fwrap/internal/trace"
	"fwrap/internal/wrap"
)

// DefaultMaxDiagnostics bounds the diagnostics kept per run.
const DefaultMaxDiagnostics = 1000

// Request configures one generation run.
type Request struct {
	Native *native.Module
	// Overrides are hand-authored interfaces merged into the native
	// procedures. Without native procedures they are wrapped standalone.
	Overrides      *native.Module
	Config         *config.Config
	Version        string
	Progress       ProgressSink
	Jobs           int
	MaxDiagnostics int
}

// Result holds the generated text and what went into it.
type Result struct {
	Procedures []*wrap.Procedure
	Utilities  []wrap.Utility

	Module           []byte
	Declarations     []byte
	ModuleFile       string
	DeclarationsFile string

	Diagnostics *diag.Bag
	Timings     Timings
}

// Run executes every stage for req.
func Run(ctx context.Context, req *Request) (Result, error) {
	var res Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return res, fmt.Errorf("missing generation request")
	}
	if moduleLen(req.Native) == 0 && moduleLen(req.Overrides) == 0 {
		return res, fmt.Errorf("no procedures to wrap")
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.Default()
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}
	res.Diagnostics = diag.NewBag(maxDiag)
	rep := diag.NewLockedReporter(diag.NewDedupReporter(diag.BagReporter{Bag: res.Diagnostics}))
	opts := cfg.WrapOptions()

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "generate", trace.CurrentSpan(ctx).SpanID)
	defer root.End("")

	items := procNames(req.Native)
	standalone := moduleLen(req.Native) == 0
	if standalone {
		items = procNames(req.Overrides)
	}
	notifyAll(req.Progress, items, StageAssemble, StatusQueued)

	// assemble
	start := time.Now()
	span := trace.Begin(tracer, trace.ScopePass, string(StageAssemble), root.ID())
	sink := req.Progress
	if standalone {
		sink = nil
	}
	canonical, err := assembleAll(ctx, req.Native, opts, req.Jobs, rep, sink, tracer, span.ID())
	if err != nil {
		span.End("cancelled")
		return res, err
	}
	overrides, err := assembleAll(ctx, req.Overrides, opts, req.Jobs, rep, progressIf(standalone, req.Progress), tracer, span.ID())
	if err != nil {
		span.End("cancelled")
		return res, err
	}
	span.End(fmt.Sprintf("%d native, %d override", len(canonical), len(overrides)))
	res.Timings.Set(StageAssemble, time.Since(start))

	// merge
	start = time.Now()
	span = trace.Begin(tracer, trace.ScopePass, string(StageMerge), root.ID())
	notify(req.Progress, Event{Stage: StageMerge, Status: StatusWorking})
	procs := canonical
	switch {
	case len(overrides) == 0:
	case standalone:
		procs = nil
		for _, o := range overrides {
			p, err := merge.Standalone(o, rep)
			if err != nil {
				diag.ReportErr(rep, diag.SevWarning, o.Name, err)
				continue
			}
			procs = append(procs, p)
		}
	default:
		procs = merge.MergeAll(canonical, overrides, rep)
	}
	span.End(fmt.Sprintf("%d procedures", len(procs)))
	res.Timings.Set(StageMerge, time.Since(start))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// dedup
	start = time.Now()
	span = trace.Begin(tracer, trace.ScopePass, string(StageDedup), root.ID())
	notify(req.Progress, Event{Stage: StageDedup, Status: StatusWorking})
	conv := cfg.Convention()
	if !cfg.Wrap.DetectTemplates {
		conv = dedup.Convention{}
	}
	procs = dedup.Deduplicate(procs, cfg.ExplicitGroups(), conv, rep)
	span.End(fmt.Sprintf("%d procedures", len(procs)))
	res.Timings.Set(StageDedup, time.Since(start))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// emit
	start = time.Now()
	span = trace.Begin(tracer, trace.ScopePass, string(StageEmit), root.ID())
	notify(req.Progress, Event{Stage: StageEmit, Status: StatusWorking})
	if err := render(&res, procs, cfg, req.Version, rep); err != nil {
		span.End("error")
		return res, err
	}
	span.End(fmt.Sprintf("%d wrappers, %d utilities", len(res.Procedures), len(res.Utilities)))
	res.Timings.Set(StageEmit, time.Since(start))

	reached := make(map[string]bool)
	for _, p := range res.Procedures {
		reached[native.FoldName(p.NativeName)] = true
		for _, n := range p.Names() {
			reached[native.FoldName(n)] = true
		}
	}
	for _, n := range items {
		status := StatusDone
		if !reached[native.FoldName(n)] {
			status = StatusSkipped
		}
		notify(req.Progress, Event{Procedure: n, Stage: StageEmit, Status: status})
	}
	res.Diagnostics.Sort()
	return res, nil
}

func progressIf(ok bool, sink ProgressSink) ProgressSink {
	if ok {
		return sink
	}
	return nil
}

func moduleLen(m *native.Module) int {
	if m == nil {
		return 0
	}
	return len(m.Procedures)
}

func procNames(m *native.Module) []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.Procedures))
	for i, p := range m.Procedures {
		names[i] = p.Name
	}
	return names
}

// assembleAll assembles the procedures of mod in parallel. Results keep
// the input order; failed procedures are reported and dropped.
func assembleAll(ctx context.Context, mod *native.Module, opts wrap.Options, jobs int,
	rep diag.Reporter, sink ProgressSink, t trace.Tracer, parent uint64) ([]*wrap.Procedure, error) {
	n := moduleLen(mod)
	if n == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]*wrap.Procedure, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i, np := range mod.Procedures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(sink, Event{Procedure: np.Name, Stage: StageAssemble, Status: StatusWorking})
			span := trace.Begin(t, trace.ScopeProcedure, np.Name, parent)
			start := time.Now()
			p, err := wrap.Assemble(np, opts)
			if err != nil {
				diag.ReportErr(rep, diag.SevWarning, np.Name, err)
				span.End("skipped")
				notify(sink, Event{Procedure: np.Name, Stage: StageAssemble, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			results[i] = p
			span.End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(results, func(p *wrap.Procedure) bool { return p == nil }), nil
}
