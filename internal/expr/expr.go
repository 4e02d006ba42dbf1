package expr

import (
	"errors"
	"slices"
)

// PlaceholderPrefix marks generated code that needs manual attention.
const PlaceholderPrefix = "##TODO (watch any dependencies that may be further down!) "

// Expr is a shape, check or default-value expression in template form.
// Code is substituted with internal variable names, Doc with host-visible
// names. Requires lists the native names the expression depends on.
// Values are never mutated after construction.
type Expr struct {
	Code     Template `msgpack:"code"`
	Doc      Template `msgpack:"doc"`
	Requires []string `msgpack:"req,omitempty"`
	Manual   bool     `msgpack:"manual,omitempty"`
}

// Rendered is the result of Substitute.
type Rendered struct {
	Code string
	// Requires holds the mapped names of the expression's dependencies.
	Requires []string
	Doc      string
}

// Literal is an expression without dependencies.
func Literal(s string) *Expr {
	return &Expr{Code: Text(s), Doc: Text(s)}
}

// Var is an expression that is exactly one native variable.
func Var(name string) *Expr {
	return &Expr{Code: Hole(name), Doc: Hole(name), Requires: []string{name}}
}

// Placeholder wraps untranslatable source so the generated code carries an
// explicit manual-fixup marker instead of silently wrong code.
func Placeholder(src string) *Expr {
	return &Expr{Code: Text(PlaceholderPrefix + src), Doc: Text(src), Manual: true}
}

// Substitute renders the expression. docVars defaults to vars when nil.
func (e *Expr) Substitute(vars, docVars map[string]string) (Rendered, error) {
	if docVars == nil {
		docVars = vars
	}
	code, err := e.Code.Render(vars)
	if err != nil {
		return Rendered{}, err
	}
	doc, err := e.Doc.Render(docVars)
	if err != nil {
		return Rendered{}, err
	}
	req := make([]string, 0, len(e.Requires))
	for _, name := range e.Requires {
		v, ok := vars[name]
		if !ok {
			return Rendered{}, &MissingNameError{Name: name}
		}
		req = append(req, v)
	}
	return Rendered{Code: code, Requires: req, Doc: doc}, nil
}

var errNotLiteral = errors.New("expression is not a literal")

// AsLiteral returns the code of a dependency-free expression.
func (e *Expr) AsLiteral() (string, error) {
	if e == nil || e.Manual {
		return "", errNotLiteral
	}
	r, err := e.Substitute(map[string]string{}, nil)
	if err != nil || len(r.Requires) != 0 {
		return "", errNotLiteral
	}
	return r.Code, nil
}

func (e *Expr) IsLiteral() bool {
	_, err := e.AsLiteral()
	return err == nil
}

func (e *Expr) Equal(o *Expr) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.Manual == o.Manual &&
		e.Code.Equal(o.Code) &&
		e.Doc.Equal(o.Doc) &&
		slices.Equal(e.Requires, o.Requires)
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	return e.Code.String()
}
