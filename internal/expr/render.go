package expr

import "strings"

// renderer writes a node tree into a Template. Code mode targets the
// compiled extension (numpy C-API accessors); doc mode targets the
// human-readable rendering used in docstrings and error messages.
type renderer struct {
	doc bool
	b   builder
}

func (r *renderer) root(n *node) {
	switch n.kind {
	case nodeBinary, nodeTernary:
		r.bare(n)
	default:
		r.node(n)
	}
}

func (r *renderer) node(n *node) {
	switch n.kind {
	case nodeBinary, nodeTernary:
		r.b.text("(")
		r.bare(n)
		r.b.text(")")
	default:
		r.bare(n)
	}
}

func (r *renderer) bare(n *node) {
	switch n.kind {
	case nodeVar:
		r.b.hole(n.text)
	case nodeLit:
		r.b.text(pyLiteral(n.text))
	case nodeNot:
		r.b.text("not ")
		r.node(n.args[0])
	case nodeNeg:
		r.b.text("-")
		r.node(n.args[0])
	case nodeCast:
		r.b.text("<" + n.text + ">")
		r.node(n.args[0])
	case nodeBinary:
		r.node(n.args[0])
		r.b.text(" " + r.binaryOp(n) + " ")
		r.node(n.args[1])
	case nodeTernary:
		r.node(n.args[1])
		r.b.text(" if ")
		r.node(n.args[0])
		r.b.text(" else ")
		r.node(n.args[2])
	case nodeCall:
		r.call(n)
	}
}

func (r *renderer) binaryOp(n *node) string {
	switch n.text {
	case "&&":
		return "and"
	case "||":
		return "or"
	case "/":
		if n.args[0].isFloat() || n.args[1].isFloat() {
			return "/"
		}
		return "//"
	}
	return n.text
}

const (
	shapeTodo = "##TODO Get shape before broadcasting: "
	ndimTodo  = "##TODO Get ndim before broadcasting: "
)

func (r *renderer) call(n *node) {
	old := strings.HasPrefix(n.text, "old_")
	switch n.text {
	case "len":
		if r.doc {
			r.node(n.args[0])
			r.b.text(".shape[0]")
		} else {
			r.b.text("np.PyArray_DIMS(")
			r.node(n.args[0])
			r.b.text(")[0]")
		}
	case "shape", "old_shape":
		if old {
			r.b.text(shapeTodo)
		}
		if r.doc {
			r.node(n.args[0])
			r.b.text(".shape[")
		} else {
			r.b.text("np.PyArray_DIMS(")
			r.node(n.args[0])
			r.b.text(")[")
		}
		r.node(n.args[1])
		r.b.text("]")
	case "size":
		if r.doc {
			r.node(n.args[0])
			r.b.text(".size")
		} else {
			r.b.text("np.PyArray_SIZE(")
			r.node(n.args[0])
			r.b.text(")")
		}
	case "rank", "old_rank":
		if old {
			r.b.text(ndimTodo)
		}
		if r.doc {
			r.node(n.args[0])
			r.b.text(".ndim")
		} else {
			r.b.text("np.PyArray_NDIM(")
			r.node(n.args[0])
			r.b.text(")")
		}
	default: // abs, min, max
		r.b.text(n.text + "(")
		for i, a := range n.args {
			if i > 0 {
				r.b.text(", ")
			}
			r.node(a)
		}
		r.b.text(")")
	}
}

// pyLiteral rewrites native exponent markers (1d0) into host syntax.
func pyLiteral(s string) string {
	if s == "" || s[0] == '"' || s[0] == '\'' {
		return s
	}
	return strings.NewReplacer("d", "e", "D", "e").Replace(s)
}

func vars(n *node, seen map[string]bool, out *[]string) {
	if n.kind == nodeVar && !seen[n.text] {
		seen[n.text] = true
		*out = append(*out, n.text)
	}
	for _, a := range n.args {
		vars(a, seen, out)
	}
}
