package code

import (
	"fmt"
	"slices"
)

// Phase orders snippets inside a wrapper body.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseCheck
)

func (p Phase) String() string {
	if p == PhaseCheck {
		return "check"
	}
	return "init"
}

// Key identifies what a snippet provides or requires. An empty Name is an
// anonymous provider (a procedure-level check).
type Key struct {
	Phase Phase
	Name  string
}

func Init(name string) Key  { return Key{Phase: PhaseInit, Name: name} }
func Check(name string) Key { return Key{Phase: PhaseCheck, Name: name} }

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Phase, k.Name)
}

// Snippet is a fragment of wrapper body code with its dependencies.
type Snippet struct {
	Provides Key
	Requires []Key
	Lines    []string
}

func NewSnippet(provides Key, requires ...Key) *Snippet {
	s := &Snippet{Provides: provides}
	s.AddRequires(requires...)
	return s
}

// AddRequires records dependencies, ignoring duplicates and self-references.
func (s *Snippet) AddRequires(keys ...Key) {
	for _, k := range keys {
		if k == s.Provides || slices.Contains(s.Requires, k) {
			continue
		}
		s.Requires = append(s.Requires, k)
	}
}

// Putln appends one line; args are applied with fmt.Sprintf when present.
func (s *Snippet) Putln(format string, args ...any) {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	s.Lines = append(s.Lines, format)
}

// Put appends an indented multi-line block after removing its common
// indentation.
func (s *Snippet) Put(block string) {
	s.Lines = append(s.Lines, Dedent(block)...)
}

func (s *Snippet) Empty() bool { return len(s.Lines) == 0 }

// Emit writes the snippet lines into b.
func (s *Snippet) Emit(b *Buffer) {
	for _, l := range s.Lines {
		b.Putln(l)
	}
}
