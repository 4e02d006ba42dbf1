package native

import (
	"regexp"
	"strings"
)

// Dim is one axis of an array declaration. An empty Upper is assumed shape
// (":"), "*" is assumed size. An empty Lower means the default of 1.
type Dim struct {
	Lower string
	Upper string
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ParseDim parses "n", "0:n", ":", "*" or "1:*".
func ParseDim(spec string) Dim {
	spec = strings.TrimSpace(spec)
	lo, hi, found := strings.Cut(spec, ":")
	if !found {
		return Dim{Upper: spec}
	}
	return Dim{Lower: strings.TrimSpace(lo), Upper: strings.TrimSpace(hi)}
}

func (d Dim) IsAssumedShape() bool { return d.Upper == "" }
func (d Dim) IsAssumedSize() bool  { return d.Upper == "*" }
func (d Dim) IsExplicitShape() bool {
	return !d.IsAssumedShape() && !d.IsAssumedSize()
}

// SizeExpr is the extent of the axis as a parenthesised native expression,
// or "" when the extent is not known from the declaration.
func (d Dim) SizeExpr() string {
	if !d.IsExplicitShape() {
		return ""
	}
	if d.Lower == "" || d.Lower == "1" {
		return "(" + d.Upper + ")"
	}
	return "((" + d.Upper + ") - (" + d.Lower + ") + 1)"
}

func (d Dim) String() string {
	switch {
	case d.IsAssumedShape():
		if d.Lower != "" {
			return d.Lower + ":"
		}
		return ":"
	case d.Lower != "":
		return d.Lower + ":" + d.Upper
	}
	return d.Upper
}

// Dimension is the ordered list of axes of an array argument.
type Dimension []Dim

func (ds Dimension) Rank() int { return len(ds) }

func (ds Dimension) IsExplicitShape() bool {
	for _, d := range ds {
		if !d.IsExplicitShape() {
			return false
		}
	}
	return true
}

func (ds Dimension) SizeExprs() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.SizeExpr()
	}
	return out
}

// DepNames lists, in order of first appearance, the names the bounds refer to.
func (ds Dimension) DepNames() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range ds {
		for _, part := range []string{d.Lower, d.Upper} {
			for _, name := range identRe.FindAllString(part, -1) {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// LastDepNames lists the names the extent of the last axis refers to.
func (ds Dimension) LastDepNames() []string {
	if len(ds) == 0 {
		return nil
	}
	return ds[len(ds)-1:].DepNames()
}

// AttrSpec renders the declaration as "dimension(n, 0:m)".
func (ds Dimension) AttrSpec() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return "dimension(" + strings.Join(parts, ", ") + ")"
}
