package expr

type nodeKind uint8

const (
	nodeVar nodeKind = iota
	nodeLit
	nodeCall
	nodeNot
	nodeNeg
	nodeCast
	nodeBinary
	nodeTernary
)

type node struct {
	kind nodeKind
	// var name, literal text, function name, cast type or operator
	text string
	args []*node
}

func (n *node) isFloat() bool {
	switch n.kind {
	case nodeLit:
		return isFloatLiteral(n.text)
	case nodeCast:
		return n.text == "float"
	case nodeNeg:
		return n.args[0].isFloat()
	}
	return false
}
