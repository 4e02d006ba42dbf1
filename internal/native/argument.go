package native

import "slices"

// Annotations are the optional markers attached to an argument, mostly
// coming from override interfaces.
type Annotations struct {
	Default string
	// Optional marks an argument as optional in the override sense: the
	// caller may omit it and Default (or an allocation) applies.
	Optional bool
	Hide     bool
	// OverwriteFlag requests a synthesized overwrite_<name> argument;
	// OverwriteDefault is its default value.
	OverwriteFlag    bool
	OverwriteDefault bool
	Align            int
	Depend           []string
	Check            []string
	ByValue          bool
	// NoReturn keeps an inout argument out of the result tuple.
	NoReturn bool
}

// Argument is one formal parameter of a native procedure.
type Argument struct {
	Name      string
	DType     DType
	Dimension Dimension
	Intent    Intent
	Annotations
}

func (a *Argument) IsArray() bool { return a.Dimension != nil }

// Clone returns a deep copy of a.
func (a *Argument) Clone() *Argument {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Dimension = slices.Clone(a.Dimension)
	cp.Depend = slices.Clone(a.Depend)
	cp.Check = slices.Clone(a.Check)
	return &cp
}

// With returns a copy of a with fn applied to it; a itself is untouched.
func (a *Argument) With(fn func(*Argument)) *Argument {
	cp := a.Clone()
	if fn != nil {
		fn(cp)
	}
	return cp
}

// DependsOn reports whether name is listed in the argument's depend list.
func (a *Argument) DependsOn(name string) bool {
	return slices.Contains(a.Depend, name)
}
