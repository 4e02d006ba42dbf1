package emit

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"fwrap/internal/code"
	"fwrap/internal/diag"
	"fwrap/internal/wrap"
)

// Options names the generated module.
type Options struct {
	Name    string
	Version string
	// FCName is the declaration module of the native routines; defaults
	// to Name + "_fc".
	FCName string
	// Config is the serialized configuration, appended as comments.
	Config []byte
}

func (o Options) fcName() string {
	if o.FCName != "" {
		return o.FCName
	}
	return o.Name + "_fc"
}

var cimports = []string{
	"cimport numpy as np",
	"import numpy as np",
	"from libc.string cimport memcpy",
	"from libc.setjmp cimport jmp_buf, setjmp, longjmp",
	"from cpython.bytes cimport PyBytes_FromStringAndSize",
}

// Module writes the extension source for procs. A procedure whose wrapper
// cannot be generated is reported through ctx and left out. It returns the
// procedures actually written.
func Module(w io.Writer, procs []*wrap.Procedure, ctx *wrap.Context, opts Options) ([]*wrap.Procedure, error) {
	bodies := make([]string, 0, len(procs))
	written := make([]*wrap.Procedure, 0, len(procs))
	for _, p := range procs {
		sub := ctx.Fork(p.Name)
		b := code.NewBuffer()
		if err := p.Generate(sub, b); err != nil {
			diag.ReportErr(ctx.Reporter, diag.SevWarning, p.Name, err)
			continue
		}
		ctx.Join(sub)
		bodies = append(bodies, b.String())
		written = append(written, p)
	}

	b := code.NewBuffer()
	b.Putln("#cython: ccomplex=True")
	b.Putempty()
	putModuleDocstring(b, written, opts)
	for _, l := range cimports {
		b.Putln(l)
	}
	b.Putln(fmt.Sprintf("from %s cimport *", opts.fcName()))
	b.Putempty()
	b.Putln("np.import_array()")
	b.Putln("include 'fwrap_ktp.pxi'")
	b.Putempty()
	for _, body := range bodies {
		b.Putblock(body)
		b.Putempty()
		b.Putempty()
	}
	for _, u := range ctx.Utilities() {
		b.Putblock(u.Code)
		b.Putempty()
	}
	b.Putempty()
	b.Putln("# Fwrap configuration:")
	for _, l := range strings.Split(strings.TrimRight(string(opts.Config), "\n"), "\n") {
		if l == "" {
			b.Putln("#")
			continue
		}
		b.Putln("# " + l)
	}
	b.Putempty()
	if _, err := w.Write(b.Bytes()); err != nil {
		return nil, fmt.Errorf("writing module %s: %w", opts.Name, err)
	}
	return written, nil
}

// ModuleDocstring lists the functions (one line per template group) and
// the data types of the module.
func ModuleDocstring(procs []*wrap.Procedure, opts Options) []string {
	lines := []string{
		fmt.Sprintf("The %s module was generated with Fwrap v%s.", opts.Name, opts.Version),
		"",
		"Below is a listing of functions and data types.",
		"For usage information see the function docstrings.",
		"",
		"Functions",
		"---------",
	}
	var funcs []string
	for _, p := range procs {
		funcs = append(funcs, strings.Join(p.Names(), ", "))
	}
	slices.Sort(funcs)
	for _, f := range funcs {
		lines = append(lines, f+"(...)")
	}

	lines = append(lines, "", "Data Types", "----------")
	var types []string
	for _, p := range procs {
		for _, dt := range p.DTypes {
			if name := dt.PyTypeName(); name != "" && !slices.Contains(types, name) {
				types = append(types, name)
			}
		}
	}
	slices.Sort(types)
	return append(lines, types...)
}

func putModuleDocstring(b *code.Buffer, procs []*wrap.Procedure, opts Options) {
	doc := ModuleDocstring(procs, opts)
	b.Putln(`"""` + doc[0])
	for _, l := range doc[1:] {
		b.Putln(l)
	}
	b.Putempty()
	b.Putln(`"""`)
}
