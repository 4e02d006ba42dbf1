package wrap

// ArgKind is the marshaling strategy selected for an argument. The set is
// closed: every switch over ArgKind in this package is exhaustive.
type ArgKind uint8

const (
	KindScalar ArgKind = iota
	KindComplex
	KindSingleChar
	KindString
	KindErrorStatus
	KindArray
	KindCharArray
	KindCallback
)

var kindNames = [...]string{
	KindScalar:      "scalar",
	KindComplex:     "complex",
	KindSingleChar:  "single-char",
	KindString:      "string",
	KindErrorStatus: "error-status",
	KindArray:       "array",
	KindCharArray:   "char-array",
	KindCallback:    "callback",
}

func (k ArgKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k ArgKind) IsArray() bool { return k == KindArray || k == KindCharArray }

// isScalarLike groups the kinds that share the plain scalar code paths and
// may stand in for each other inside a template.
func (k ArgKind) isScalarLike() bool { return k == KindScalar || k == KindComplex }
