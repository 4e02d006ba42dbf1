package wrap

import (
	"regexp"
	"slices"
	"strings"

	"fwrap/internal/diag"
	"fwrap/internal/expr"
	"fwrap/internal/native"
)

// Arg is a classified argument. Fields set by Classify describe the native
// argument; everything else (internal names, declarations, code) is derived
// from them on demand, so a copy made with With is always consistent.
type Arg struct {
	Kind ArgKind

	// Name is the native name, CyName the host-visible one.
	Name   string
	CyName string
	// ProcName is the enclosing procedure, used to name per-argument helpers.
	ProcName string

	Intent  native.Intent
	DType   native.DType
	KTP     string
	NpyEnum string
	PyType  string

	Dimension native.Dimension

	Hide     bool
	NoReturn bool
	Optional bool
	ByValue  bool
	Align    int
	Depend   []string

	// Untranslated override annotations; consumed by the merge pass.
	RawDefault string
	RawChecks  []string

	// Default is the translated default value. DeferInit means it is
	// computed in the wrapper body instead of the signature.
	Default   *expr.Expr
	DeferInit bool

	OverwriteFlag     bool
	OverwriteDefault  bool
	OverwriteFlagName string

	// ShapeExprs overrides the per-axis extents derived from Dimension.
	ShapeExprs   []*expr.Expr
	MemOffset    string
	NoTruncation bool

	Callback *native.Procedure
}

// Clone returns a deep copy; expressions are shared since they are immutable.
func (a *Arg) Clone() *Arg {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Dimension = slices.Clone(a.Dimension)
	cp.Depend = slices.Clone(a.Depend)
	cp.RawChecks = slices.Clone(a.RawChecks)
	cp.ShapeExprs = slices.Clone(a.ShapeExprs)
	return &cp
}

// With returns a validated copy of a with fn applied.
func (a *Arg) With(fn func(*Arg)) (*Arg, error) {
	cp := a.Clone()
	if fn != nil {
		fn(cp)
	}
	if err := cp.validate(); err != nil {
		return nil, err
	}
	return cp, nil
}

var zeroValueRe = regexp.MustCompile(`^[()0.,\s]+$`)

func (a *Arg) validate() error {
	if !a.Kind.IsArray() {
		return nil
	}
	if a.Optional && !a.Dimension.IsExplicitShape() {
		return diag.Errorf(diag.CfgOptionalArrayShape,
			"optional array %q must have an explicit shape, got %s", a.Name, a.Dimension.AttrSpec())
	}
	if def := a.arrayDefault(); def != nil {
		lit, err := def.AsLiteral()
		if err != nil || !zeroValueRe.MatchString(lit) {
			return diag.Errorf(diag.UnsArrayDefault,
				"only zero default array values are supported, not %s for %q", def, a.Name)
		}
	}
	return nil
}

// arrayDefault is the effective default of an array; hidden arrays are
// zero-filled.
func (a *Arg) arrayDefault() *expr.Expr {
	if a.Default == nil && a.Hide {
		return expr.Literal("0")
	}
	return a.Default
}

func (a *Arg) isLogicalIn() bool {
	return a.DType.IsLogical() && a.Intent.IsIn()
}

// InternName is the local variable holding the converted value.
func (a *Arg) InternName() string {
	switch a.Kind {
	case KindScalar, KindComplex:
		switch {
		case a.DeferInit:
			if a.Hide {
				return a.CyName
			}
			return a.CyName + "_"
		case a.isLogicalIn():
			return a.CyName + "_"
		}
		return a.CyName
	case KindString:
		return "fw_" + a.CyName
	case KindArray, KindCharArray:
		return a.CyName + "_"
	}
	return a.CyName
}

func (a *Arg) bufName() string {
	switch a.Kind {
	case KindSingleChar:
		return "fw_" + a.CyName
	case KindString:
		return a.InternName() + "_buf"
	}
	return ""
}

func (a *Arg) lenName() string { return a.InternName() + "_len" }

func (a *Arg) shapeVarName() string { return a.CyName + "_shape_" }

func (a *Arg) charShapeName() string { return a.InternName() + "_shape" }

func (a *Arg) odtypeName() string { return a.InternName() + "_odtype" }

// externType is the type of the host-visible parameter.
func (a *Arg) externType() string {
	switch a.Kind {
	case KindScalar, KindComplex:
		switch {
		case a.DeferInit:
			return "object"
		case a.isLogicalIn():
			return "bint"
		}
		return a.KTP
	case KindSingleChar, KindArray, KindCharArray, KindCallback:
		return "object"
	case KindString:
		return "fw_bytes"
	}
	return ""
}

// internType is the type of a separate internal variable, or "".
func (a *Arg) internType() string {
	if a.Kind.isScalarLike() && (a.DeferInit || a.isLogicalIn()) {
		return a.KTP
	}
	return ""
}

func (a *Arg) stringLen() string {
	if a.DType.Len == "*" {
		return "len(" + a.CyName + ")"
	}
	return a.DType.Len
}

func (a *Arg) isAssumedLen() bool { return a.DType.Len == "*" }

// IsOptional reports whether the host caller may omit the argument.
func (a *Arg) IsOptional() bool {
	switch a.Kind {
	case KindArray, KindCharArray:
		return a.Optional || (a.Dimension.IsExplicitShape() &&
			(a.Intent == native.IntentOut || a.arrayDefault() != nil))
	case KindErrorStatus:
		return false
	}
	return a.Default != nil || a.RawDefault != ""
}

// shapeExprs returns per-axis extents; nil entries are not parseable.
func (a *Arg) shapeExprs() []*expr.Expr {
	if a.ShapeExprs != nil {
		return a.ShapeExprs
	}
	out := make([]*expr.Expr, len(a.Dimension))
	for i, s := range a.Dimension.SizeExprs() {
		if s != "" {
			out[i] = expr.ParseSize(s)
		}
	}
	return out
}

// EqualUpToType compares everything except the type identity attributes
// (dtype, ktp, numpy enum, names). Scalar and complex scalar are
// interchangeable; all other kinds must match exactly.
func (a *Arg) EqualUpToType(b *Arg) bool {
	if a.Kind != b.Kind && !(a.Kind.isScalarLike() && b.Kind.isScalarLike()) {
		return false
	}
	if a.Intent != b.Intent || a.Hide != b.Hide || a.NoReturn != b.NoReturn ||
		a.Optional != b.Optional || a.ByValue != b.ByValue || a.Align != b.Align ||
		a.DeferInit != b.DeferInit || a.OverwriteFlag != b.OverwriteFlag ||
		a.OverwriteDefault != b.OverwriteDefault || a.OverwriteFlagName != b.OverwriteFlagName ||
		a.MemOffset != b.MemOffset || a.NoTruncation != b.NoTruncation ||
		a.RawDefault != b.RawDefault {
		return false
	}
	if a.DType.Len != b.DType.Len || a.DType.IsLogical() != b.DType.IsLogical() {
		return false
	}
	if !slices.Equal(a.Dimension, b.Dimension) || !slices.Equal(a.Depend, b.Depend) ||
		!slices.Equal(a.RawChecks, b.RawChecks) {
		return false
	}
	if !a.Default.Equal(b.Default) {
		return false
	}
	if !slices.EqualFunc(a.ShapeExprs, b.ShapeExprs, func(x, y *expr.Expr) bool { return x.Equal(y) }) {
		return false
	}
	return a.Callback == nil && b.Callback == nil
}

func (a *Arg) String() string {
	var sb strings.Builder
	sb.WriteString(a.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(a.CyName)
	if a.KTP != "" {
		sb.WriteString(" ")
		sb.WriteString(a.KTP)
	}
	if len(a.Dimension) > 0 {
		sb.WriteString(" ")
		sb.WriteString(a.Dimension.AttrSpec())
	}
	if s := a.Intent.String(); s != "" {
		sb.WriteString(" intent(" + s + ")")
	}
	return sb.String()
}
