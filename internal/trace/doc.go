// Package trace records what the generator does and how long it takes.
//
// A run opens a driver span; every pipeline pass (assemble, merge, dedup,
// emit) is a pass span below it, and each assembled procedure is a
// procedure span below its pass:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//	span := trace.Begin(t, trace.ScopePass, "merge", parentID)
//	defer span.End("")
//
// The level decides the deepest scope written: "phase" stops at passes,
// "detail" adds procedures. Events are streamed as text or NDJSON, kept in
// a ring buffer for a post-mortem dump, or both.
package trace
