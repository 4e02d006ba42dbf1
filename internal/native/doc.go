// Package native models the procedures the wrapper generator consumes:
// arguments with intent, dtype, dimension and annotations, grouped into
// procedures tagged with the dialect they were described in.
//
// Values are built once by Decode and treated as immutable afterwards.
// Passes that need a variation use Argument.With, which returns a copy.
package native
