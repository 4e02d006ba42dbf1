package code

import (
	"strings"
)

// Buffer accumulates generated source lines with indentation tracking.
type Buffer struct {
	buf         []byte
	indentLevel int
	indentWidth int
}

func NewBuffer() *Buffer {
	return &Buffer{indentWidth: 4}
}

func (b *Buffer) writeIndent() {
	for range b.indentLevel * b.indentWidth {
		b.buf = append(b.buf, ' ')
	}
}

// Putln writes one line at the current indentation. Blank lines carry no
// trailing whitespace.
func (b *Buffer) Putln(line string) {
	if strings.TrimSpace(line) != "" {
		b.writeIndent()
		b.buf = append(b.buf, line...)
	}
	b.buf = append(b.buf, '\n')
}

// Putlines writes a multi-line block, each line at the current indentation.
func (b *Buffer) Putlines(block string) {
	if block == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(block, "\n"), "\n") {
		b.Putln(line)
	}
}

// Putblock writes block verbatim, ignoring the indentation level.
func (b *Buffer) Putblock(block string) {
	b.buf = append(b.buf, block...)
	if !strings.HasSuffix(block, "\n") {
		b.buf = append(b.buf, '\n')
	}
}

// Putempty writes an empty line.
func (b *Buffer) Putempty() {
	b.buf = append(b.buf, '\n')
}

func (b *Buffer) Indent() {
	b.indentLevel++
}

func (b *Buffer) Dedent() {
	if b.indentLevel > 0 {
		b.indentLevel--
	}
}

func (b *Buffer) Len() int { return len(b.buf) }

func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) String() string { return string(b.buf) }

// Dedent strips the common leading whitespace of all non-blank lines and
// drops leading and trailing blank lines.
func Dedent(block string) []string {
	lines := strings.Split(block, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= prefix && prefix > 0 {
			out[i] = l[prefix:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}
