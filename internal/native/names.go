package native

import (
	"golang.org/x/text/cases"
)

// Reserved names used by generated wrappers.
const (
	ErrName       = "fw_iserr__"
	ErrStrName    = "fw_errstr__"
	ErrStrLen     = "fw_errstr_len"
	ReturnArgName = "fw_ret_arg"
)

// FoldName is the key used to match native names, which are case-insensitive.
// A Caser carries state, so each call gets its own.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

var hostKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "exec": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "not": true, "or": true, "pass": true, "print": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true, "None": true, "True": true, "False": true, "nonlocal": true,
	// extension-language keywords
	"cdef": true, "cpdef": true, "ctypedef": true, "cimport": true,
	"struct": true, "union": true, "enum": true, "extern": true,
	"include": true, "api": true, "public": true, "readonly": true,
	"inline": true, "gil": true, "nogil": true, "object": true,
}

// MangleKeyword renames names that collide with host-language keywords.
func MangleKeyword(name string) string {
	if hostKeywords[name] {
		return name + "__"
	}
	return name
}

// IsErrorSentinel reports the reserved status/message argument names.
func IsErrorSentinel(name string) bool {
	return name == ErrName || name == ErrStrName
}
