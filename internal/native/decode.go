package native

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"fwrap/internal/diag"
)

// File layout of a procedure description document.
type fileDoc struct {
	Module     string    `yaml:"module,omitempty"`
	Language   string    `yaml:"language,omitempty"`
	Procedures []procDoc `yaml:"procedures"`
}

type procDoc struct {
	Name          string   `yaml:"name"`
	Kind          string   `yaml:"kind,omitempty"`
	Language      string   `yaml:"language,omitempty"`
	Args          []argDoc `yaml:"args,omitempty"`
	Return        *argDoc  `yaml:"return,omitempty"`
	CallStatement string   `yaml:"callstatement,omitempty"`
	FortranName   string   `yaml:"fortranname,omitempty"`
	Intent        []string `yaml:"intent,omitempty"`
}

type argDoc struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Kind      string   `yaml:"kind,omitempty"`
	Len       string   `yaml:"len,omitempty"`
	Dimension []string `yaml:"dimension,omitempty"`
	Intent    []string `yaml:"intent,omitempty"`
	Default   string   `yaml:"default,omitempty"`
	Optional  bool     `yaml:"optional,omitempty"`
	Depend    []string `yaml:"depend,omitempty"`
	Check     []string `yaml:"check,omitempty"`
	Callback  *procDoc `yaml:"callback,omitempty"`
}

// Decode reads a procedure description document. A procedure that cannot
// be resolved is reported through rep and left out; only malformed YAML is
// returned as an error.
func Decode(r io.Reader, rep diag.Reporter) (*Module, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Module{}, nil
		}
		return nil, fmt.Errorf("decoding procedures: %w", err)
	}
	if rep == nil {
		rep = diag.NopReporter
	}
	mod := &Module{Name: doc.Module}
	for i := range doc.Procedures {
		pd := &doc.Procedures[i]
		if pd.Language == "" {
			pd.Language = doc.Language
		}
		proc, err := buildProc(pd)
		if err != nil {
			diag.ReportErr(rep, diag.SevWarning, pd.Name, err)
			continue
		}
		mod.Procedures = append(mod.Procedures, proc)
	}
	return mod, nil
}

// DecodeString is Decode over an in-memory document.
func DecodeString(src string, rep diag.Reporter) (*Module, error) {
	return Decode(strings.NewReader(src), rep)
}

func buildProc(pd *procDoc) (*Procedure, error) {
	if pd.Name == "" {
		return nil, diag.Errorf(diag.CfgBadInput, "procedure without a name")
	}
	lang, err := parseLanguage(pd.Language)
	if err != nil {
		return nil, diag.Errorf(diag.CfgBadInput, "%v", err).For(pd.Name)
	}
	kind, err := parseProcKind(pd.Kind)
	if err != nil {
		return nil, diag.Errorf(diag.CfgBadInput, "%v", err).For(pd.Name)
	}
	proc := &Procedure{
		Name:          pd.Name,
		Kind:          kind,
		Language:      lang,
		CallStatement: pd.CallStatement,
		FortranName:   pd.FortranName,
	}
	for _, s := range pd.Intent {
		if strings.EqualFold(s, "c") {
			proc.WrapsC = true
		}
	}
	seen := make(map[string]bool, len(pd.Args))
	for i := range pd.Args {
		arg, err := buildArg(&pd.Args[i], lang)
		if err != nil {
			return nil, wrapArgErr(err, pd.Name, pd.Args[i].Name)
		}
		if seen[arg.Name] {
			return nil, diag.Errorf(diag.CfgBadInput, "duplicate argument %q", arg.Name).For(pd.Name)
		}
		seen[arg.Name] = true
		proc.Args = append(proc.Args, arg)
	}
	if kind == Function {
		if pd.Return == nil {
			return nil, diag.Errorf(diag.CfgBadInput, "function without a return type").For(pd.Name)
		}
		ret, err := buildArg(pd.Return, lang)
		if err != nil {
			return nil, wrapArgErr(err, pd.Name, "return value")
		}
		if ret.IsArray() {
			return nil, diag.Errorf(diag.UnsArrayReturn, "array-valued function results are not supported").For(pd.Name)
		}
		if ret.Name == "" {
			ret.Name = pd.Name
		}
		ret.Intent = IntentOut
		proc.Return = ret
	}
	return proc, nil
}

func wrapArgErr(err error, proc, arg string) error {
	if e, ok := diag.AsError(err); ok {
		cp := *e
		cp.Subject = proc
		cp.Msg = fmt.Sprintf("argument %q: %s", arg, e.Msg)
		return &cp
	}
	return fmt.Errorf("%s: argument %q: %w", proc, arg, err)
}

func buildArg(ad *argDoc, lang Language) (*Argument, error) {
	dt, err := NewDType(ad.Type, ad.Kind, ad.Len)
	if err != nil {
		return nil, err
	}
	arg := &Argument{Name: ad.Name, DType: dt}
	if ad.Callback != nil {
		if ad.Callback.Name == "" {
			ad.Callback.Name = ad.Name
		}
		if ad.Callback.Language == "" {
			ad.Callback.Language = "native"
		}
		cb, err := buildCallbackProc(ad.Callback)
		if err != nil {
			return nil, err
		}
		arg.DType = DType{Type: TypeCallback, KTP: "object", Callback: cb}
		arg.Intent = IntentIn
		return arg, nil
	}
	if dt.IsCallback() {
		return nil, diag.Errorf(diag.UnsCallbackArgument, "callback without a signature")
	}
	if len(ad.Dimension) > 0 {
		arg.Dimension = make(Dimension, len(ad.Dimension))
		for i, d := range ad.Dimension {
			arg.Dimension[i] = ParseDim(d)
		}
	}
	arg.Default = ad.Default
	arg.Depend = ad.Depend
	arg.Check = ad.Check
	switch lang {
	case LangOverride:
		err = resolveOverrideIntent(arg, ad.Intent)
		arg.Optional = ad.Optional
	default:
		err = resolveNativeIntent(arg, ad.Intent)
		arg.Optional = ad.Optional
	}
	if err != nil {
		return nil, err
	}
	return arg, nil
}

// Callback signatures only carry types and names; names may be empty.
func buildCallbackProc(pd *procDoc) (*Procedure, error) {
	kind, err := parseProcKind(pd.Kind)
	if err != nil {
		return nil, diag.Errorf(diag.CfgBadInput, "%v", err)
	}
	if kind == Function {
		return nil, diag.Errorf(diag.UnsCallbackArgument, "function callbacks are not supported")
	}
	cb := &Procedure{Name: pd.Name, Kind: kind, Language: LangNative}
	for i := range pd.Args {
		ad := &pd.Args[i]
		if ad.Callback != nil {
			return nil, diag.Errorf(diag.UnsCallbackArgument, "nested callbacks are not supported")
		}
		a, err := buildArg(ad, LangNative)
		if err != nil {
			return nil, err
		}
		cb.Args = append(cb.Args, a)
	}
	return cb, nil
}

type intentSet struct {
	in, out, inout, hide, copy, overwrite, byValue bool
	align                                         int
}

func parseIntents(list []string) (intentSet, error) {
	var s intentSet
	for _, raw := range list {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "in":
			s.in = true
		case "out":
			s.out = true
		case "inout":
			s.inout = true
		case "hide":
			s.hide = true
		case "copy":
			s.copy = true
		case "overwrite":
			s.overwrite = true
		case "c":
			s.byValue = true
		case "aligned4":
			s.align = 4
		case "aligned8":
			s.align = 8
		case "aligned16":
			s.align = 16
		default:
			return s, diag.Errorf(diag.CfgBadInput, "unknown intent %q", raw)
		}
	}
	if s.copy && s.overwrite {
		return s, diag.Errorf(diag.CfgConflictingOverwrite, "intent(copy) conflicts with intent(overwrite)")
	}
	return s, nil
}

func (s intentSet) applyAnnotations(arg *Argument) {
	arg.Align = s.align
	arg.ByValue = s.byValue
	switch {
	case s.copy:
		arg.OverwriteFlag, arg.OverwriteDefault = true, false
	case s.overwrite:
		arg.OverwriteFlag, arg.OverwriteDefault = true, true
	}
}

// Native source declares at most one of in/out/inout; no intent means inout.
func resolveNativeIntent(arg *Argument, list []string) error {
	s, err := parseIntents(list)
	if err != nil {
		return err
	}
	var intents []Intent
	if s.in {
		intents = append(intents, IntentIn)
	}
	if s.inout {
		intents = append(intents, IntentInOut)
	}
	if s.out {
		intents = append(intents, IntentOut)
	}
	switch len(intents) {
	case 0:
		arg.Intent = IntentInOut
	case 1:
		arg.Intent = intents[0]
	default:
		return diag.Errorf(diag.CfgAmbiguousIntent, "multiple intents specified: %v", intents)
	}
	arg.Hide = s.hide
	s.applyAnnotations(arg)
	return nil
}

// Override interfaces follow the legacy conventions: "in,out" is inout,
// a bare "inout" is modified in place but not returned, and hide without
// out drops the intent.
func resolveOverrideIntent(arg *Argument, list []string) error {
	s, err := parseIntents(list)
	if err != nil {
		return err
	}
	switch {
	case s.inout:
		arg.Intent = IntentInOut
		arg.NoReturn = true
	case s.in && s.out:
		arg.Intent = IntentInOut
	case s.in:
		arg.Intent = IntentIn
	case s.out:
		arg.Intent = IntentOut
	case s.hide:
		arg.Intent = IntentNone
	default:
		arg.Intent = IntentInOut
	}
	arg.Hide = s.hide && !s.out
	s.applyAnnotations(arg)
	return nil
}
