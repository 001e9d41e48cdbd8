package ast

import "strings"

// Parse parses a module's source text. Nodes whose span appears in idmap
// take the recorded identity; every other node gets a fresh one.
//
// The grammar is line oriented. Each line is one expression; a line ending
// in an operator (typically "=") takes the following, more deeply indented
// lines as a block for its right operand.
func Parse(code string, idmap IDMap) (*Module, error) {
	p := &fileParser{lines: splitLines(code)}
	lines, next, err := p.body(0, 0, true)
	if err != nil {
		return nil, err
	}
	if next != len(p.lines) {
		return nil, syntaxError(next, p.lines[next].indent, "unexpected indentation")
	}
	m := &Module{Lines: lines}
	assignIDs(m, idmap)
	return m, nil
}

// ParseLine parses a single-line expression, such as the expression of a
// new node. Every node in the result has a fresh identity.
func ParseLine(expr string) (*Ast, error) {
	if strings.ContainsAny(expr, "\r\n") {
		return nil, syntaxError(0, 0, "expression must fit on a single line")
	}
	raw := splitLines(expr)[0]
	if raw.blank {
		return nil, syntaxError(0, 0, "expected expression")
	}
	a, hole, err := parseLine(raw, 0)
	if err != nil {
		return nil, err
	}
	if hole != nil {
		return nil, syntaxError(0, raw.indent+len(raw.content), "expected indented block")
	}
	Walk(a, func(n *Ast) bool {
		n.ID = NewID()
		return true
	})
	return a, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package examples.
func MustParse(code string) *Module {
	m, err := Parse(code, nil)
	if err != nil {
		panic(err)
	}
	return m
}

type rawLine struct {
	indent   int
	content  string
	trailing int
	blank    bool
	spaces   int
}

func splitLines(code string) []rawLine {
	parts := strings.Split(code, "\n")
	out := make([]rawLine, len(parts))
	for i, s := range parts {
		body := strings.TrimLeft(s, " ")
		if body == "" {
			out[i] = rawLine{blank: true, spaces: len(s)}
			continue
		}
		content := strings.TrimRight(body, " ")
		out[i] = rawLine{
			indent:   len(s) - len(body),
			content:  content,
			trailing: len(body) - len(content),
		}
	}
	return out
}

type fileParser struct {
	lines []rawLine
}

// body parses the lines of a block whose lines start at column indent,
// beginning at line start. It returns the block lines and the index of the
// first line that does not belong to the block. Blank lines belong to a
// nested block only when a later line of the same block follows them.
func (p *fileParser) body(start, indent int, top bool) ([]BlockLine, int, error) {
	var out []BlockLine
	i := start
	for i < len(p.lines) {
		l := p.lines[i]
		if l.blank {
			if !top {
				j := p.nextNonBlank(i)
				if j == len(p.lines) || p.lines[j].indent < indent {
					break
				}
			}
			out = append(out, BlockLine{Off: l.spaces})
			i++
			continue
		}
		if l.indent < indent {
			break
		}
		if l.indent > indent {
			return nil, i, syntaxError(i, l.indent, "unexpected indentation")
		}
		elem, hole, err := parseLine(l, i)
		if err != nil {
			return nil, i, err
		}
		i++
		if hole == nil {
			out = append(out, BlockLine{Elem: elem, Off: l.trailing})
			continue
		}
		j := p.nextNonBlank(i)
		if j == len(p.lines) || p.lines[j].indent <= indent {
			return nil, i, syntaxError(i-1, l.indent+len(l.content), "expected indented block")
		}
		childIndent := p.lines[j].indent
		children, next, err := p.body(i, childIndent, false)
		if err != nil {
			return nil, next, err
		}
		*hole = Ast{Kind: KindBlock, Block: &Block{Indent: childIndent, Lines: children}}
		out = append(out, BlockLine{Elem: elem})
		i = next
	}
	return out, i, nil
}

func (p *fileParser) nextNonBlank(i int) int {
	for i < len(p.lines) && p.lines[i].blank {
		i++
	}
	return i
}

// parseLine parses one non-blank line. When the line ends with an operator
// the returned hole is the placeholder for the block that must follow.
func parseLine(l rawLine, lineNo int) (*Ast, *Ast, error) {
	toks, err := lexLine(l.content, lineNo, l.indent)
	if err != nil {
		return nil, nil, err
	}
	lp := &lineParser{toks: toks, line: lineNo, col: l.indent + len(l.content), trailing: l.trailing}
	a, err := lp.expr(0)
	if err != nil {
		return nil, nil, err
	}
	if lp.pos < len(lp.toks) {
		t := lp.toks[lp.pos]
		return nil, nil, syntaxError(lineNo, t.col, "unexpected %q", t.text)
	}
	return a, lp.hole, nil
}

type lineParser struct {
	toks     []token
	pos      int
	line     int
	col      int // column just past the last token
	trailing int
	depth    int
	hole     *Ast
}

func (p *lineParser) peek() (token, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return token{}, false
}

// expr is a Pratt parser over infix operators. Application binds tighter
// than any operator.
func (p *lineParser) expr(minPower int) (*Ast, error) {
	lhs, err := p.application()
	if err != nil {
		return nil, err
	}
	for p.hole == nil {
		t, ok := p.peek()
		if !ok || t.kind != tokOpr {
			break
		}
		lbp, rbp := infixPower(t.text)
		if lbp < minPower {
			break
		}
		p.pos++
		node := &Ast{
			Kind: KindInfix,
			Left: lhs,
			Opr:  &Ast{Kind: KindOpr, Text: t.text},
			LOff: t.pre,
		}
		next, ok := p.peek()
		if !ok {
			if p.depth > 0 {
				return nil, syntaxError(p.line, p.col, "unexpected end of line")
			}
			node.ROff = p.trailing
			p.hole = &Ast{Kind: KindBlock}
			node.Right = p.hole
			return node, nil
		}
		node.ROff = next.pre
		rhs, err := p.expr(rbp)
		if err != nil {
			return nil, err
		}
		node.Right = rhs
		lhs = node
	}
	return lhs, nil
}

func (p *lineParser) application() (*Ast, error) {
	fn, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || !startsPrimary(t) {
			return fn, nil
		}
		arg, err := p.primary()
		if err != nil {
			return nil, err
		}
		fn = &Ast{Kind: KindPrefix, Left: fn, Right: arg, ROff: t.pre}
	}
}

func startsPrimary(t token) bool {
	switch t.kind {
	case tokName, tokNumber, tokText, tokLParen:
		return true
	}
	return false
}

func (p *lineParser) primary() (*Ast, error) {
	t, ok := p.peek()
	if !ok {
		return nil, syntaxError(p.line, p.col, "expected expression")
	}
	switch t.kind {
	case tokName:
		p.pos++
		return &Ast{Kind: KindVar, Text: t.text}, nil
	case tokNumber:
		p.pos++
		return &Ast{Kind: KindNumber, Text: t.text}, nil
	case tokText:
		p.pos++
		return &Ast{Kind: KindText, Text: t.text}, nil
	case tokOpr:
		if t.text == "-" && p.pos+1 < len(p.toks) {
			if n := p.toks[p.pos+1]; n.kind == tokNumber && n.pre == 0 {
				p.pos += 2
				return &Ast{Kind: KindNumber, Text: "-" + n.text}, nil
			}
		}
		return nil, syntaxError(p.line, t.col, "unexpected operator %q", t.text)
	case tokLParen:
		p.pos++
		inner, ok := p.peek()
		if !ok {
			return nil, syntaxError(p.line, p.col, "missing closing parenthesis")
		}
		if inner.kind == tokRParen {
			return nil, syntaxError(p.line, t.col, "empty parentheses")
		}
		p.depth++
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		p.depth--
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, syntaxError(p.line, p.col, "missing closing parenthesis")
		}
		p.pos++
		return &Ast{Kind: KindGroup, Left: e, LOff: inner.pre, ROff: closing.pre}, nil
	default:
		return nil, syntaxError(p.line, t.col, "unexpected %q", t.text)
	}
}

// infixPower returns the left and right binding power of an operator.
// Right-associative operators bind equally on both sides.
func infixPower(op string) (left, right int) {
	prec, rightAssoc := precedence(op)
	if rightAssoc {
		return 2 * prec, 2 * prec
	}
	return 2 * prec, 2*prec + 1
}

func precedence(op string) (int, bool) {
	switch op {
	case "=":
		return 1, true
	case "||":
		return 2, false
	case "&&":
		return 3, false
	case "==", "!=", "<", ">", "<=", ">=":
		return 4, false
	case "+", "-":
		return 5, false
	case "*", "/", "%":
		return 6, false
	case "^":
		return 7, true
	case ".":
		return 9, false
	}
	return 5, false
}
