package ast

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokNumber
	tokText
	tokOpr
	tokLParen
	tokRParen
)

// token is one lexeme of a single source line. pre is the number of spaces
// between the previous token (or the line indentation) and this one.
type token struct {
	kind tokenKind
	text string
	pre  int
	col  int
}

const oprChars = "!$%&*+-/<>=?^~|:@\\"

func isOprChar(c byte) bool { return strings.IndexByte(oprChars, c) >= 0 }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '\''
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// lexLine splits the content of one line (indentation and trailing spaces
// already removed) into tokens. lineNo and indent are used for error
// positions only.
func lexLine(content string, lineNo, indent int) ([]token, error) {
	var toks []token
	pre := 0
	i := 0
	for i < len(content) {
		c := content[i]
		start := i
		switch {
		case c == ' ':
			pre++
			i++
			continue
		case c == '\t':
			return nil, syntaxError(lineNo, indent+i, "tab characters are not allowed")
		case isNameStart(c):
			i = scanName(content, i)
			toks = append(toks, token{kind: tokName, text: content[start:i], pre: pre, col: indent + start})
		case isDigit(c):
			i++
			for i < len(content) && isDigit(content[i]) {
				i++
			}
			if i+1 < len(content) && content[i] == '.' && isDigit(content[i+1]) {
				i++
				for i < len(content) && isDigit(content[i]) {
					i++
				}
			}
			toks = append(toks, token{kind: tokNumber, text: content[start:i], pre: pre, col: indent + start})
		case c == '"' || c == '\'':
			end, ok := scanText(content, i)
			if !ok {
				return nil, syntaxError(lineNo, indent+i, "unterminated text literal")
			}
			i = end
			toks = append(toks, token{kind: tokText, text: content[start:i], pre: pre, col: indent + start})
		case c == '(':
			i++
			toks = append(toks, token{kind: tokLParen, text: "(", pre: pre, col: indent + start})
		case c == ')':
			i++
			toks = append(toks, token{kind: tokRParen, text: ")", pre: pre, col: indent + start})
		case isOprChar(c):
			for i < len(content) && isOprChar(content[i]) {
				i++
			}
			toks = append(toks, token{kind: tokOpr, text: content[start:i], pre: pre, col: indent + start})
		default:
			return nil, syntaxError(lineNo, indent+i, "unexpected character %q", c)
		}
		pre = 0
	}
	return toks, nil
}

// scanName reads an identifier starting at i. Qualified names such as
// "Standard.Base.IO" are a single token, and a trailing ".<operator>"
// names an extension method on an operator ("Int.=").
func scanName(s string, i int) int {
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	for i+1 < len(s) && s[i] == '.' {
		switch {
		case isNameStart(s[i+1]):
			i++
			for i < len(s) && isNameChar(s[i]) {
				i++
			}
		case isOprChar(s[i+1]):
			j := i + 1
			for j < len(s) && isOprChar(s[j]) {
				j++
			}
			if j < len(s) && s[j] != ' ' && s[j] != ')' {
				return i
			}
			return j
		default:
			return i
		}
	}
	return i
}

// scanText reads a quoted literal starting at the opening quote and returns
// the index just past the closing quote.
func scanText(s string, i int) (int, bool) {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1, true
		default:
			i++
		}
	}
	return i, false
}

func syntaxError(line, col int, format string, args ...any) error {
	return errs.New(errs.ErrCodeParse, "%d:%d: %s", line+1, col+1, fmt.Sprintf(format, args...))
}
