package native

// Procedure is one native routine (or an override interface for one).
type Procedure struct {
	Name     string
	Kind     ProcKind
	Language Language
	Args     []*Argument
	// Return describes a function result; nil for subroutines.
	Return *Argument

	// Override-only annotations.
	CallStatement string
	FortranName   string
	WrapsC        bool
}

// NativeName is the name of the routine actually called. Overrides may
// rename the routine they wrap.
func (p *Procedure) NativeName() string {
	if p.FortranName != "" {
		return p.FortranName
	}
	return p.Name
}

func (p *Procedure) IsFunction() bool { return p.Kind == Function }

// Arg returns the argument with the given name, or nil.
func (p *Procedure) Arg(name string) *Argument {
	for _, a := range p.Args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// DTypes lists the distinct element types used by the procedure, in order
// of first appearance. Callback arguments contribute their own signature.
func (p *Procedure) DTypes() []DType {
	var out []DType
	seen := make(map[string]bool)
	var walk func(*Procedure)
	add := func(a *Argument) {
		if a == nil {
			return
		}
		if a.DType.Callback != nil {
			walk(a.DType.Callback)
			return
		}
		if a.DType.IsCallback() || seen[a.DType.KTP] {
			return
		}
		seen[a.DType.KTP] = true
		out = append(out, a.DType)
	}
	walk = func(q *Procedure) {
		add(q.Return)
		for _, a := range q.Args {
			add(a)
		}
	}
	walk(p)
	return out
}

// Module is the decoded input: an ordered list of procedures.
type Module struct {
	Name       string
	Procedures []*Procedure
}

// Lookup finds a procedure by case-folded name.
func (m *Module) Lookup(name string) *Procedure {
	key := FoldName(name)
	for _, p := range m.Procedures {
		if FoldName(p.Name) == key {
			return p
		}
	}
	return nil
}
