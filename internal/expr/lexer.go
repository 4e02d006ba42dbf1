package expr

import (
	"strings"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokInvalid
)

type token struct {
	kind tokKind
	text string
	pos  int
}

// twoCharOps must be tried before single-character operators.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const oneCharOps = "()+-*/%<>!?:,"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

// lex splits src into tokens; an unknown character becomes tokInvalid and
// ends the stream.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j], i})
			i = j
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) {
				d := src[j]
				if isDigit(d) || d == '.' {
					j++
					continue
				}
				// exponent: 1e5, 1.5e-3, 2d0
				if (d == 'e' || d == 'E' || d == 'd' || d == 'D') && j+1 < len(src) &&
					(isDigit(src[j+1]) || ((src[j+1] == '-' || src[j+1] == '+') && j+2 < len(src) && isDigit(src[j+2]))) {
					j += 2
					continue
				}
				break
			}
			if j < len(src) && isIdentStart(src[j]) {
				// 10abc
				toks = append(toks, token{tokInvalid, src[i:], i})
				return toks
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				toks = append(toks, token{tokInvalid, src[i:], i})
				return toks
			}
			toks = append(toks, token{tokString, src[i : j+1], i})
			i = j + 1
		default:
			matched := false
			for _, op := range twoCharOps {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{tokOp, op, i})
					i += len(op)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			if strings.IndexByte(oneCharOps, c) >= 0 {
				toks = append(toks, token{tokOp, string(c), i})
				i++
				continue
			}
			toks = append(toks, token{tokInvalid, src[i:], i})
			return toks
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks
}

func isFloatLiteral(s string) bool {
	return strings.ContainsAny(s, ".eEdD")
}
