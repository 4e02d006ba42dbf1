package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration errors: fatal to a single procedure's assembly.
	CfgInfo                   Code = 1000
	CfgOptionalArrayShape     Code = 1001
	CfgConflictingOverwrite   Code = 1002
	CfgAmbiguousIntent        Code = 1003
	CfgMissingIntent          Code = 1004
	CfgDependsOnMultipleArray Code = 1005
	CfgUnknownTemplateMember  Code = 1006
	CfgBadInput               Code = 1007

	// Unsupported constructs: the procedure or merge attempt is skipped.
	UnsInfo               Code = 2000
	UnsDerivedType        Code = 2001
	UnsArrayDefault       Code = 2002
	UnsArrayReturn        Code = 2003
	UnsTemplateArgument   Code = 2004
	UnsMultiDimOffset     Code = 2005
	UnsCallbackArgument   Code = 2006
	UnsUnknownType        Code = 2007
	UnsCallbackShape      Code = 2008
	UnsAssumedLenCallback Code = 2009

	// Expression translation: recovered with a manual-fixup placeholder.
	ExprInfo            Code = 3000
	ExprUntranslatable  Code = 3001
	ExprCannotAllocate  Code = 3002
	ExprCapiReference   Code = 3003
	ExprUnknownFunction Code = 3004

	// Structural mismatches: fatal to one merge or one template group.
	MisInfo              Code = 4000
	MisArgCount          Code = 4001
	MisArgStrategy       Code = 4002
	MisReturnArg         Code = 4003
	MisCallStatement     Code = 4004
	MisScalarOffset      Code = 4005
	MisNonStringAttr     Code = 4006
	MisRoleLayout        Code = 4007
	MisProcedureKind     Code = 4008
	MisAddressWithOffset Code = 4009

	// Pipeline/reporting.
	PipInfo     Code = 5000
	PipSkipped  Code = 5001
	PipTemplate Code = 5002
	PipMerged   Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		CfgInfo:                   "Configuration information",
		CfgOptionalArrayShape:     "Optional array without explicit shape",
		CfgConflictingOverwrite:   "Conflicting copy/overwrite annotations",
		CfgAmbiguousIntent:        "Ambiguous multiple intents",
		CfgMissingIntent:          "Argument has no intent",
		CfgDependsOnMultipleArray: "Argument depends on multiple arrays",
		CfgUnknownTemplateMember:  "Configured template names an unknown procedure",
		CfgBadInput:               "Malformed procedure description",
		UnsInfo:                   "Unsupported construct",
		UnsDerivedType:            "Derived or aggregate type",
		UnsArrayDefault:           "Non-zero default array value",
		UnsArrayReturn:            "Array-valued function result",
		UnsTemplateArgument:       "Argument strategy cannot be templated",
		UnsMultiDimOffset:         "Memory offset on multi-dimensional array",
		UnsCallbackArgument:       "Unsupported callback argument",
		UnsUnknownType:            "Unknown scalar type",
		UnsCallbackShape:          "Callback array without explicit shape",
		UnsAssumedLenCallback:     "Assumed-length string in callback",
		ExprInfo:                  "Expression information",
		ExprUntranslatable:        "Expression could not be translated",
		ExprCannotAllocate:        "Cannot auto-allocate explicit-shape array",
		ExprCapiReference:         "Expression references a C-API variable",
		ExprUnknownFunction:       "Unknown function in expression",
		MisInfo:                   "Structural mismatch",
		MisArgCount:               "Argument count mismatch",
		MisArgStrategy:            "Argument strategies differ",
		MisReturnArg:              "Return arguments differ",
		MisCallStatement:          "Unparseable call statement",
		MisScalarOffset:           "Offset applied to a scalar",
		MisNonStringAttr:          "Non-string attribute differs",
		MisRoleLayout:             "Argument role layout differs",
		MisProcedureKind:          "Procedure kinds differ",
		MisAddressWithOffset:      "Arithmetic on scalar pointer",
		PipInfo:                   "Pipeline information",
		PipSkipped:                "Item skipped",
		PipTemplate:               "Template created",
		PipMerged:                 "Override merged",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("UNS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MIS%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PIP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// IsConfiguration reports whether c belongs to the configuration-error range.
func (c Code) IsConfiguration() bool { return c >= 1000 && c < 2000 }

// IsUnsupported reports whether c belongs to the unsupported-construct range.
func (c Code) IsUnsupported() bool { return c >= 2000 && c < 3000 }

// IsExpression reports whether c belongs to the expression-translation range.
func (c Code) IsExpression() bool { return c >= 3000 && c < 4000 }

// IsMismatch reports whether c belongs to the structural-mismatch range.
func (c Code) IsMismatch() bool { return c >= 4000 && c < 5000 }
