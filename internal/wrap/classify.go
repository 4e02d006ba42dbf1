package wrap

import (
	"fwrap/internal/diag"
	"fwrap/internal/native"
)

// Classify selects the marshaling strategy for one native argument. It is a
// pure function of its inputs. procName names the enclosing procedure.
func Classify(na *native.Argument, isArray bool, procName string) (*Arg, error) {
	if na == nil {
		return nil, diag.Errorf(diag.CfgBadInput, "nil argument")
	}
	a := &Arg{
		Name:             na.Name,
		CyName:           native.MangleKeyword(na.Name),
		ProcName:         procName,
		Intent:           na.Intent,
		DType:            na.DType,
		KTP:              na.DType.KTP,
		NpyEnum:          na.DType.NpyEnum(),
		PyType:           na.DType.PyTypeName(),
		Hide:             na.Hide,
		NoReturn:         na.NoReturn,
		Optional:         na.Optional,
		ByValue:          na.ByValue,
		Align:            na.Align,
		Depend:           append([]string(nil), na.Depend...),
		RawDefault:       na.Default,
		RawChecks:        append([]string(nil), na.Check...),
		OverwriteFlag:    na.OverwriteFlag,
		OverwriteDefault: na.OverwriteDefault,
	}
	a.Kind = selectKind(na, isArray)
	switch a.Kind {
	case KindArray, KindCharArray:
		a.Dimension = append(native.Dimension(nil), na.Dimension...)
	case KindErrorStatus:
		a.Hide = true
	case KindCallback:
		if isArray {
			return nil, diag.Errorf(diag.UnsCallbackArgument, "arrays of procedures are not supported (%q)", na.Name).For(procName)
		}
		a.Callback = na.DType.Callback
		a.KTP, a.NpyEnum, a.PyType = "object", "", "callable"
		if a.Callback == nil {
			return nil, diag.Errorf(diag.UnsCallbackArgument, "callback %q has no signature", na.Name).For(procName)
		}
		if err := checkCallback(na.Name, a.Callback); err != nil {
			return nil, err.For(procName)
		}
	case KindString:
		a.PyType = "bytes"
		if a.KTP == "" {
			a.KTP = "fw_character_t"
		}
	case KindSingleChar:
		a.PyType = "bytes"
	}
	if err := a.validate(); err != nil {
		if e, ok := diag.AsError(err); ok {
			return nil, e.For(procName)
		}
		return nil, err
	}
	return a, nil
}

// selectKind applies the strategy table; first match wins.
func selectKind(na *native.Argument, isArray bool) ArgKind {
	dt := na.DType
	switch {
	case isArray && dt.IsCharacter():
		return KindCharArray
	case isArray:
		return KindArray
	case native.IsErrorSentinel(na.Name):
		return KindErrorStatus
	case dt.IsComplex():
		return KindComplex
	case dt.IsCharacter() && dt.Len == "1":
		return KindSingleChar
	case dt.IsCharacter():
		return KindString
	case dt.IsCallback() || dt.Callback != nil:
		return KindCallback
	}
	return KindScalar
}
