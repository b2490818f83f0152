package dice

import (
	"fmt"
	"strings"
)

const maxNumber = 1_000_000_000

type parser struct {
	src string
	pos int
}

// Parse parses a dice expression. Supported grammar:
//
//	expression := [sign] term (("+"|"-") term)*
//	term       := INT | group
//	group      := [INT] "d" (INT | "%") modifier*
//	modifier   := ("kh"|"kl"|"dh"|"dl") INT | "r" INT | "!" [INT]
//
// Whitespace is allowed around operators but not inside a group. Anything else,
// including unknown modifiers, is a *ParseError.
func Parse(expr string) (*Expression, error) {
	p := &parser{src: expr}
	return p.parse()
}

func (p *parser) parse() (*Expression, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty expression")
	}

	e := &Expression{Source: strings.TrimSpace(p.src)}
	negative := false
	if c := p.peek(); c == '+' || c == '-' {
		negative = c == '-'
		p.pos++
		p.skipSpace()
	}

	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		t.Negative = negative
		e.Terms = append(e.Terms, t)

		p.skipSpace()
		if p.eof() {
			return e, nil
		}
		switch p.peek() {
		case '+':
			negative = false
		case '-':
			negative = true
		default:
			return nil, p.errorf("unexpected %q", p.peek())
		}
		p.pos++
		p.skipSpace()
	}
}

func (p *parser) term() (Term, error) {
	if p.eof() {
		return Term{}, p.errorf("expected a number or dice after operator")
	}

	start := p.pos
	count := 1
	hasCount := false
	if isDigit(p.peek()) {
		n, err := p.number()
		if err != nil {
			return Term{}, err
		}
		count = n
		hasCount = true
	}

	if p.eof() || (p.peek() != 'd' && p.peek() != 'D') {
		if !hasCount {
			return Term{}, p.errorf("unexpected %q", p.peek())
		}
		return Term{Constant: count}, nil
	}
	p.pos++

	if count < 1 {
		return Term{}, p.errorAt(start, "dice count must be at least 1")
	}
	if count > MaxCount {
		return Term{}, p.errorAt(start, "too many dice (max %d)", MaxCount)
	}

	sidesAt := p.pos
	var sides int
	switch {
	case !p.eof() && p.peek() == '%':
		p.pos++
		sides = 100
	case !p.eof() && isDigit(p.peek()):
		n, err := p.number()
		if err != nil {
			return Term{}, err
		}
		sides = n
	default:
		return Term{}, p.errorf("missing die sides")
	}
	if sides < 1 {
		return Term{}, p.errorAt(sidesAt, "die must have at least 1 side")
	}
	if sides > MaxSides {
		return Term{}, p.errorAt(sidesAt, "die too large (max d%d)", MaxSides)
	}

	g := &Group{Count: count, Sides: sides}
	for {
		m, ok, err := p.modifier()
		if err != nil {
			return Term{}, err
		}
		if !ok {
			break
		}
		g.Modifiers = append(g.Modifiers, m)
	}
	return Term{Group: g}, nil
}

func (p *parser) modifier() (Modifier, bool, error) {
	if p.eof() {
		return Modifier{}, false, nil
	}

	start := p.pos
	c := lower(p.peek())
	switch c {
	case 'k', 'd':
		p.pos++
		if p.eof() {
			return Modifier{}, false, p.errorAt(start, "unknown modifier %q", p.src[start:])
		}
		var kind ModifierKind
		switch next := lower(p.peek()); {
		case c == 'k' && next == 'h':
			kind = KeepHighest
		case c == 'k' && next == 'l':
			kind = KeepLowest
		case c == 'd' && next == 'h':
			kind = DropHighest
		case c == 'd' && next == 'l':
			kind = DropLowest
		default:
			return Modifier{}, false, p.errorAt(start, "unknown modifier %q", p.src[start:p.pos+1])
		}
		p.pos++
		n, err := p.requiredNumber(kind)
		if err != nil {
			return Modifier{}, false, err
		}
		return Modifier{Kind: kind, Value: n}, true, nil
	case 'r':
		p.pos++
		n, err := p.requiredNumber(Reroll)
		if err != nil {
			return Modifier{}, false, err
		}
		return Modifier{Kind: Reroll, Value: n}, true, nil
	case '!':
		p.pos++
		if p.eof() || !isDigit(p.peek()) {
			return Modifier{Kind: Explode}, true, nil
		}
		n, err := p.number()
		if err != nil {
			return Modifier{}, false, err
		}
		if n < 1 {
			return Modifier{}, false, p.errorAt(start, "explode value must be at least 1")
		}
		return Modifier{Kind: Explode, Value: n}, true, nil
	}

	if c >= 'a' && c <= 'z' {
		end := p.pos
		for end < len(p.src) && isLetter(p.src[end]) {
			end++
		}
		return Modifier{}, false, p.errorAt(start, "unknown modifier %q", p.src[start:end])
	}
	return Modifier{}, false, nil
}

func (p *parser) requiredNumber(kind ModifierKind) (int, error) {
	if p.eof() || !isDigit(p.peek()) {
		return 0, p.errorf("modifier %q needs a number", kind.String())
	}
	return p.number()
}

func (p *parser) number() (int, error) {
	start := p.pos
	n := 0
	for !p.eof() && isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		if n > maxNumber {
			return 0, p.errorAt(start, "number too large")
		}
		p.pos++
	}
	return n, nil
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return p.errorAt(p.pos, format, args...)
}

func (p *parser) errorAt(pos int, format string, args ...any) *ParseError {
	return &ParseError{Expr: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	c = lower(c)
	return c >= 'a' && c <= 'z'
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
