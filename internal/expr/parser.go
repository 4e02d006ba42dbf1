package expr

import (
	"fmt"
	"strings"
)

// Operator precedence for the C-like call-statement dialect.
// Higher binds tighter.
const (
	precTernary    = 1 // ?:
	precLogicalOr  = 2 // ||
	precLogicalAnd = 3 // &&
	precComparison = 4 // == != < <= > >=
	precAdditive   = 5 // + -
	precMultiply   = 6 // * / %
)

// binaryPrec returns precedence and right-associativity of op, or -1.
func binaryPrec(op string) (int, bool) {
	switch op {
	case "?":
		return precTernary, true
	case "||":
		return precLogicalOr, false
	case "&&":
		return precLogicalAnd, false
	case "==", "!=", "<", "<=", ">", ">=":
		return precComparison, false
	case "+", "-":
		return precAdditive, false
	case "*", "/", "%":
		return precMultiply, false
	}
	return -1, false
}

type parser struct {
	src  string
	toks []token
	pos  int
}

type parseError struct {
	msg string
	pos int
}

func (e *parseError) Error() string { return e.msg }

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(off int) token {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+off]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF && t.kind != tokInvalid {
		p.pos++
	}
	return t
}

func (p *parser) fail(t token, format string, args ...any) *parseError {
	return &parseError{msg: fmt.Sprintf(format, args...), pos: t.pos}
}

func (p *parser) expectOp(op string) error {
	t := p.peek()
	if t.kind != tokOp || t.text != op {
		return p.fail(t, "expected %q", op)
	}
	p.advance()
	return nil
}

func parse(src string) (*node, error) {
	p := &parser{src: src, toks: lex(src)}
	n, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.fail(t, "unexpected %q", t.text)
	}
	return n, nil
}

// parseBinary is a Pratt loop over binary operators; the ternary is
// handled as a right-associative operator with a mandatory ':' part.
func (p *parser) parseBinary(minPrec int) (*node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			break
		}
		prec, rightAssoc := binaryPrec(t.text)
		if prec < 0 || prec < minPrec {
			break
		}
		p.advance()
		next := prec + 1
		if rightAssoc {
			next = prec
		}
		if t.text == "?" {
			then, err := p.parseBinary(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(":"); err != nil {
				return nil, err
			}
			els, err := p.parseBinary(next)
			if err != nil {
				return nil, err
			}
			left = &node{kind: nodeTernary, args: []*node{left, then, els}}
			continue
		}
		right, err := p.parseBinary(next)
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeBinary, text: t.text, args: []*node{left, right}}
	}
	return left, nil
}

func (p *parser) isCast() bool {
	open, typ, closing := p.peek(), p.peekAt(1), p.peekAt(2)
	if open.kind != tokOp || open.text != "(" || typ.kind != tokIdent || closing.kind != tokOp || closing.text != ")" {
		return false
	}
	if typ.text != "int" && typ.text != "float" {
		return false
	}
	switch next := p.peekAt(3); next.kind {
	case tokIdent, tokNumber:
		return true
	case tokOp:
		return next.text == "(" || next.text == "!" || next.text == "-"
	}
	return false
}

func (p *parser) parseUnary() (*node, error) {
	t := p.peek()
	switch {
	case t.kind == tokOp && t.text == "!":
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeNot, args: []*node{operand}}, nil
	case t.kind == tokOp && t.text == "-":
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if operand.kind == nodeLit && !strings.HasPrefix(operand.text, "-") && operand.text[0] != '"' && operand.text[0] != '\'' {
			operand.text = "-" + operand.text
			return operand, nil
		}
		return &node{kind: nodeNeg, args: []*node{operand}}, nil
	case p.isCast():
		p.advance()
		typ := p.advance()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeCast, text: typ.text, args: []*node{operand}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.advance()
		return &node{kind: nodeLit, text: t.text}, nil
	case tokString:
		p.advance()
		return &node{kind: nodeLit, text: t.text}, nil
	case tokIdent:
		p.advance()
		if next := p.peek(); next.kind == tokOp && next.text == "(" {
			return p.parseCall(t)
		}
		if strings.HasSuffix(t.text, "_capi") {
			return nil, p.fail(t, "references internal C-API variable %q", t.text)
		}
		return &node{kind: nodeVar, text: t.text}, nil
	case tokOp:
		if t.text == "(" {
			p.advance()
			inner, err := p.parseBinary(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
		return nil, p.fail(t, "unexpected %q", t.text)
	case tokEOF:
		return nil, p.fail(t, "unexpected end of expression")
	}
	return nil, p.fail(t, "unrecognized input")
}

var funcArity = map[string][2]int{
	"len":       {1, 1},
	"shape":     {2, 2},
	"old_shape": {2, 2},
	"size":      {1, 1},
	"rank":      {1, 1},
	"old_rank":  {1, 1},
	"abs":       {1, 1},
	"min":       {2, -1},
	"max":       {2, -1},
}

func (p *parser) parseCall(name token) (*node, error) {
	fn := strings.ToLower(name.text)
	arity, ok := funcArity[fn]
	if !ok {
		return nil, p.fail(name, "unknown function %q", name.text)
	}
	p.advance() // (
	var args []*node
	for {
		arg, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.peek()
		if t.kind == tokOp && t.text == "," {
			p.advance()
			continue
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		break
	}
	if len(args) < arity[0] || (arity[1] >= 0 && len(args) > arity[1]) {
		return nil, p.fail(name, "wrong number of arguments to %s", fn)
	}
	return &node{kind: nodeCall, text: fn, args: args}, nil
}
