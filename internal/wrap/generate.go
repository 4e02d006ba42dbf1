package wrap

import (
	"strings"

	"fwrap/internal/code"
	"fwrap/internal/native"
)

// Generate writes the wrapper for p into b, registering utilities in ctx.
// A templated procedure is wrapped in its Tempita loop.
func (p *Procedure) Generate(ctx *Context, b *code.Buffer) error {
	body := code.NewBuffer()
	if err := p.generateBody(ctx, body); err != nil {
		return err
	}
	if p.Template != nil {
		p.Template.StartLoop(b)
	}
	b.Putlines(body.String())
	if p.Template != nil {
		p.Template.EndLoop(b)
	}
	return nil
}

func (p *Procedure) generateBody(ctx *Context, b *code.Buffer) error {
	snippets, err := p.BodySnippets(ctx)
	if err != nil {
		return err
	}

	b.Putln(p.Prototype(false) + ":")
	b.Indent()
	p.putDocstring(b)
	for _, line := range p.internDecls(ctx) {
		b.Putln(line)
	}
	code.EmitAll(snippets, b)

	calls := p.Resolve(p.CallArgs)
	for _, a := range calls {
		for _, line := range a.PreCall(ctx) {
			b.Putln(line)
		}
	}
	if p.PreCallCode != "" {
		b.Putln("#TODO: " + p.PreCallCode)
	}
	b.Putln(p.callExpr(ctx, calls))

	var post []string
	for _, a := range calls {
		post = append(post, a.PostCall(ctx)...)
	}
	if p.PostCallCode != "" {
		post = append(post, "#TODO: "+p.PostCallCode)
	}
	p.putErrorCheck(b, post)

	var rets []string
	for _, a := range p.Resolve(p.OutArgs) {
		rets = append(rets, a.ReturnFragments()...)
	}
	switch len(rets) {
	case 0:
	case 1:
		b.Putln("return " + rets[0])
	default:
		b.Putln("return (" + strings.Join(rets, ", ") + ",)")
	}
	b.Dedent()
	return nil
}

func (p *Procedure) putDocstring(b *code.Buffer) {
	doc := p.Docstring()
	b.Putln(`"""` + doc[0])
	for _, l := range doc[1:] {
		b.Putln(l)
	}
	b.Putempty()
	b.Putln(`"""`)
}

func (p *Procedure) internDecls(ctx *Context) []string {
	var decls []string
	for _, id := range p.needsInit() {
		externMade := false
		for _, in := range p.InArgs {
			if in == id {
				externMade = true
				break
			}
		}
		decls = append(decls, p.Args.Get(id).InternDecls(ctx, externMade)...)
	}
	return decls
}

func (p *Procedure) callExpr(ctx *Context, calls []*Arg) string {
	var positional, trailing []string
	for _, a := range calls {
		f := a.CallFragments(ctx)
		positional = append(positional, f.Positional...)
		trailing = append(trailing, f.Trailing...)
	}
	call := p.CallName + "(" + strings.Join(append(positional, trailing...), ", ") + ")"
	if p.Opts.F77Binding && p.Return != NoArg {
		call = p.Arg(p.Return).InternName() + " = " + call
	}
	return call
}

// hasStatus reports whether the call writes an integer status flag.
func (p *Procedure) hasStatus() bool {
	for _, a := range p.Resolve(p.CallArgs) {
		if a.Kind == KindErrorStatus && a.Name == native.ErrName {
			return true
		}
	}
	return false
}

// putErrorCheck raises on a non-zero status; post-call cleanup runs in a
// finally clause when there is any.
func (p *Procedure) putErrorCheck(b *code.Buffer, post []string) {
	status := p.hasStatus()
	useTry := status && len(post) > 0
	if useTry {
		b.Putln("try:")
		b.Indent()
	}
	if status {
		b.Putln("if " + native.ErrName + " != FW_NO_ERR__:")
		b.Putln(`    raise RuntimeError("an error was encountered when calling the '` + p.Name + `' wrapper.")`)
	}
	if useTry {
		b.Dedent()
		b.Putln("finally:")
		b.Indent()
	}
	for _, l := range post {
		b.Putln(l)
	}
	if useTry {
		b.Dedent()
	}
}
