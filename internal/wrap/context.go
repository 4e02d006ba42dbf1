package wrap

import (
	"fwrap/internal/diag"
)

// Options selects the calling convention and array coercion policy.
type Options struct {
	// F77Binding calls the native routine directly: string lengths are
	// passed as trailing by-value arguments and array shapes are checked
	// in the wrapper instead of being passed.
	F77Binding bool
	// EmulateF2Py makes array coercion lenient about rank and type.
	EmulateF2Py bool
}

// Utility is a helper routine emitted once per module.
type Utility struct {
	Name string
	Code string
}

// Context is the per-module generation state: options, the diagnostic
// sink and the utility-code accumulator.
type Context struct {
	Opts     Options
	Reporter diag.Reporter
	// Subject is the procedure currently being generated; used for diagnostics.
	Subject string

	utilities []Utility
	seen      map[string]bool
}

func NewContext(opts Options, rep diag.Reporter) *Context {
	if rep == nil {
		rep = diag.NopReporter
	}
	return &Context{Opts: opts, Reporter: rep, seen: make(map[string]bool)}
}

// Fork returns an empty context with the same options, for generating one
// procedure independently. Join merges it back.
func (c *Context) Fork(subject string) *Context {
	f := NewContext(c.Opts, c.Reporter)
	f.Subject = subject
	return f
}

// UseUtility registers u; registering the same name twice is a no-op.
func (c *Context) UseUtility(u Utility) {
	if c.seen[u.Name] {
		return
	}
	c.seen[u.Name] = true
	c.utilities = append(c.utilities, u)
}

// Join merges the utilities of other into c, keeping first-registration order.
func (c *Context) Join(other *Context) {
	if other == nil {
		return
	}
	for _, u := range other.utilities {
		c.UseUtility(u)
	}
}

// Utilities returns registered utilities in registration order.
func (c *Context) Utilities() []Utility {
	return c.utilities
}

func (c *Context) warn(code diag.Code, msg string) {
	diag.ReportWarning(c.Reporter, code, c.Subject, msg).Emit()
}
