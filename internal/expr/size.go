package expr

import "regexp"

var (
	plainSizeRe = regexp.MustCompile(`^\(([A-Za-z0-9_]+)\)$`)
	literalRe   = regexp.MustCompile(`^-?[0-9]+$`)
)

// ParseSize handles the simple native size expression "(name)" or "(10)".
// Anything else is not parseable and yields nil; callers then fall back to
// not allocating the array themselves.
func ParseSize(sizeexpr string) *Expr {
	m := plainSizeRe.FindStringSubmatch(sizeexpr)
	if m == nil {
		return nil
	}
	if literalRe.MatchString(m[1]) {
		return Literal(m[1])
	}
	return Var(m[1])
}
