package native

import "fmt"

// Intent is the declared directionality of an argument.
type Intent uint8

const (
	// IntentNone means no intent was given; it behaves like inout
	// everywhere except docstrings.
	IntentNone Intent = iota
	IntentIn
	IntentOut
	IntentInOut
)

func (i Intent) String() string {
	switch i {
	case IntentIn:
		return "in"
	case IntentOut:
		return "out"
	case IntentInOut:
		return "inout"
	}
	return ""
}

// IsIn reports in, inout and unspecified intents.
func (i Intent) IsIn() bool { return i != IntentOut }

// IsOut reports out, inout and unspecified intents.
func (i Intent) IsOut() bool { return i != IntentIn }

// ProcKind distinguishes functions from subroutines.
type ProcKind uint8

const (
	Subroutine ProcKind = iota
	Function
)

func (k ProcKind) String() string {
	if k == Function {
		return "function"
	}
	return "subroutine"
}

// Language is the dialect a procedure was described in.
type Language uint8

const (
	// LangNative is a procedure read from native source.
	LangNative Language = iota
	// LangOverride is a hand-authored interface that customises a native one.
	LangOverride
)

func (l Language) String() string {
	if l == LangOverride {
		return "override"
	}
	return "native"
}

func parseLanguage(s string) (Language, error) {
	switch s {
	case "", "native", "fortran":
		return LangNative, nil
	case "override", "pyf":
		return LangOverride, nil
	}
	return LangNative, fmt.Errorf("unknown language %q", s)
}

func parseProcKind(s string) (ProcKind, error) {
	switch s {
	case "", "subroutine":
		return Subroutine, nil
	case "function":
		return Function, nil
	}
	return Subroutine, fmt.Errorf("unknown procedure kind %q", s)
}
