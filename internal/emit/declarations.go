package emit

import (
	"fmt"
	"io"

	"fwrap/internal/code"
	"fwrap/internal/dedup"
	"fwrap/internal/wrap"
)

// Declarations writes the cpdef prototypes of procs. Templates are
// expanded to one prototype per member since the declaration file is not
// run through the template engine.
func Declarations(w io.Writer, procs []*wrap.Procedure, opts Options) error {
	b := code.NewBuffer()
	b.Putln("cimport numpy as np")
	b.Putln(fmt.Sprintf("from %s cimport *", opts.fcName()))
	b.Putempty()
	for _, p := range procs {
		if p.Template == nil {
			b.Putln(p.Prototype(true))
			continue
		}
		for i := range p.Template.Names {
			member, err := dedup.Expand(p, i)
			if err != nil {
				return fmt.Errorf("declaring %s: %w", p.Name, err)
			}
			b.Putln(member.Prototype(true))
		}
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("writing declarations for %s: %w", opts.Name, err)
	}
	return nil
}

// FileNames returns the extension and declaration file names. Templated
// sources get the ".pyx.in" suffix of the template engine.
func FileNames(name string, procs []*wrap.Procedure) (pyx, pxd string) {
	pyx = name + ".pyx"
	for _, p := range procs {
		if p.Template != nil {
			pyx += ".in"
			break
		}
	}
	return pyx, name + ".pxd"
}
