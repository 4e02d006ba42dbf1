package wrap

import (
	"fmt"
	"strings"
)

// Prototype renders the cpdef signature. Declarations (inPxd) mark defaults
// with "*" instead of repeating them.
func (p *Procedure) Prototype(inPxd bool) string {
	mask := p.OptionalMask()
	decls := make([]string, 0, len(p.InArgs))
	for i, id := range p.InArgs {
		d, ok := p.Args.Get(id).ExternDecl()
		if !ok {
			continue
		}
		decl := d.Decl
		if mask[i] {
			def := d.Default
			if def == "" {
				def = "None"
			}
			if inPxd {
				def = "*"
			}
			decl += "=" + def
		}
		decls = append(decls, decl)
	}
	return fmt.Sprintf("cpdef api object %s(%s)", p.Name, strings.Join(decls, ", "))
}

// signatureDoc is the first docstring line: name(a, b[, c]) -> (x, y).
func (p *Procedure) signatureDoc() string {
	mask := p.OptionalMask()
	var mandatory, optional []string
	for i, a := range p.Resolve(p.InArgs) {
		if mask[i] {
			optional = append(optional, a.CyName)
		} else {
			mandatory = append(mandatory, a.CyName)
		}
	}
	in := strings.Join(mandatory, ", ")
	if len(optional) > 0 {
		in += "[, " + strings.Join(optional, ", ") + "]"
	}
	sig := fmt.Sprintf("%s(%s)", p.Name, in)

	var rets []string
	for _, a := range p.Resolve(p.OutArgs) {
		rets = append(rets, a.DocReturns()...)
	}
	switch len(rets) {
	case 0:
	case 1:
		sig += " -> " + rets[0]
	default:
		sig += " -> (" + strings.Join(rets, ", ") + ")"
	}
	return sig
}

// Docstring returns the procedure docstring lines.
func (p *Procedure) Docstring() []string {
	lines := []string{p.signatureDoc(), "", "Parameters", "----------"}
	var params []string
	for _, a := range p.Resolve(p.InArgs) {
		params = append(params, a.DocIn()...)
	}
	if len(params) == 0 {
		params = []string{"None"}
	}
	lines = append(lines, params...)

	var rets []string
	for _, a := range p.Resolve(p.OutArgs) {
		rets = append(rets, a.DocOut()...)
	}
	if len(rets) > 0 {
		lines = append(lines, "", "Returns", "-------")
		lines = append(lines, rets...)
	}
	return lines
}
