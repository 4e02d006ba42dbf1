package native

import (
	"strings"

	"fwrap/internal/diag"
)

// Type tags understood by the classifier.
const (
	TypeInteger   = "integer"
	TypeReal      = "real"
	TypeComplex   = "complex"
	TypeLogical   = "logical"
	TypeCharacter = "character"
	TypeCallback  = "callback"
)

// DType describes the element type of an argument.
//
// KTP is the kind-type-parameter typedef name used in generated code
// (fwi_integer_t, fwr_dbl_t, ...). Len is only meaningful for characters;
// "*" means assumed length.
type DType struct {
	Type     string
	Kind     string
	Len      string
	KTP      string
	Callback *Procedure
}

var ktpPrefix = map[string]string{
	TypeInteger:   "fwi",
	TypeReal:      "fwr",
	TypeComplex:   "fwc",
	TypeLogical:   "fwl",
	TypeCharacter: "fw",
}

var defaultKTP = map[string]string{
	TypeInteger:       "fwi_integer_t",
	TypeReal:          "fwr_real_t",
	"doubleprecision": "fwr_dbl_t",
	TypeComplex:       "fwc_complex_t",
	"doublecomplex":   "fwc_dbl_complex_t",
	TypeLogical:       "fwl_logical_t",
	TypeCharacter:     "fw_character_t",
}

// NewDType resolves a type name plus optional kind/length selector into a
// DType with its KTP filled in.
func NewDType(name, kind, length string) (DType, error) {
	name = strings.ToLower(strings.ReplaceAll(name, " ", ""))
	switch name {
	case "doubleprecision":
		return DType{Type: TypeReal, Kind: "8", KTP: defaultKTP[name]}, nil
	case "doublecomplex":
		return DType{Type: TypeComplex, Kind: "16", KTP: defaultKTP[name]}, nil
	case TypeCallback:
		return DType{Type: TypeCallback, KTP: "object"}, nil
	case "type", "derived", "record":
		return DType{}, diag.Errorf(diag.UnsDerivedType, "derived or aggregate types are not supported")
	}
	prefix, ok := ktpPrefix[name]
	if !ok {
		return DType{}, diag.Errorf(diag.UnsUnknownType, "unknown type %q", name)
	}
	dt := DType{Type: name, Kind: kind, Len: length}
	switch {
	case name == TypeCharacter:
		if length == "" {
			dt.Len = "1"
		}
		if dt.Len == "*" {
			dt.KTP = prefix + "_character_xX_t"
		} else if length == "" && kind == "" {
			dt.KTP = defaultKTP[name]
		} else {
			dt.KTP = prefix + "_character_x" + dt.Len + "_t"
		}
	case kind == "" && length == "":
		dt.KTP = defaultKTP[name]
	case kind != "" && length != "":
		return DType{}, diag.Errorf(diag.CfgBadInput, "both length and kind given for %s", name)
	case length != "":
		dt.KTP = prefix + "_" + name + "_x" + length + "_t"
	default:
		dt.KTP = prefix + "_" + name + "_" + kind + "_t"
	}
	return dt, nil
}

// NpyEnum is the numpy type-number symbol for the KTP.
func (d DType) NpyEnum() string {
	return d.KTP + "_enum"
}

// PyTypeName is the user-facing type name used in docstrings.
func (d DType) PyTypeName() string {
	return strings.TrimSuffix(d.KTP, "_t")
}

func (d DType) IsComplex() bool   { return d.Type == TypeComplex }
func (d DType) IsLogical() bool   { return d.Type == TypeLogical }
func (d DType) IsCharacter() bool { return d.Type == TypeCharacter }
func (d DType) IsCallback() bool  { return d.Type == TypeCallback }
