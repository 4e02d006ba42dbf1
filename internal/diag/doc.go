// Package diag defines the diagnostic model shared by all wrapper passes.
//
// Diagnostics carry a Severity, a numeric Code, the Subject they are about
// (usually a procedure name) and a short message. Codes are grouped in
// ranges that mirror the error categories of the generator:
//
//   - CFG1xxx configuration errors, fatal to one procedure's assembly.
//   - UNS2xxx unsupported constructs, the item is skipped with a warning.
//   - EXP3xxx expression translation failures, recovered with a placeholder.
//   - MIS4xxx structural mismatches, fatal to one merge or template group.
//
// Passes return *Error for failures and emit Diagnostic values through a
// Reporter for everything that does not abort the run. Rendering lives in
// internal/diagfmt.
package diag
