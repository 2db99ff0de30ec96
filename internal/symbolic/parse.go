package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Parse reads an expression in x written with + - * / ^ (or **),
// parentheses, decimal or integer literals and the functions sin, cos,
// tan, exp, ln (alias log), sqrt, abs, asin and atan. A number directly
// followed by x, a function or a parenthesis multiplies, so "2x" and
// "3(x+1)" are accepted.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	p.skip()
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

// MustParse is Parse for package-level literals; it panics on error.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

var funcTable = map[string]func(Expr) Expr{
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
	"exp":  ExpOf,
	"ln":   LnOf,
	"log":  LnOf,
	"sqrt": Sqrt,
	"abs":  AbsOf,
	"asin": AsinOf,
	"atan": AtanOf,
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skip() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) accept(tok string) bool {
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		p.skip()
		return true
	}
	return false
}

func (p *parser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for {
		switch {
		case p.accept("+"):
			t, err := p.product()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		case p.accept("-"):
			t, err := p.product()
			if err != nil {
				return nil, err
			}
			terms = append(terms, Neg(t))
		default:
			return AddOf(terms...), nil
		}
	}
}

func (p *parser) product() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		switch c := p.peek(); {
		case c == '*' && !strings.HasPrefix(p.src[p.pos:], "**"):
			p.accept("*")
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		case c == '/':
			p.accept("/")
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, PowOf(f, N(-1)))
		case c == '(' || (c != 0 && unicode.IsLetter(rune(c))):
			f, err := p.power()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		default:
			return MulOf(factors...), nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.accept("-") {
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.accept("^") || p.accept("**") {
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.accept("(")
		e, err := p.sum()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, p.errorf("missing )")
		}
		return e, nil
	case c >= '0' && c <= '9' || c == '.':
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
			p.pos++
		}
		r, ok := new(big.Rat).SetString(p.src[start:p.pos])
		if !ok {
			return nil, p.errorf("bad number %q", p.src[start:p.pos])
		}
		p.skip()
		return RatOf(r), nil
	case c != 0 && unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.src) && unicode.IsLetter(rune(p.src[p.pos])) {
			p.pos++
		}
		name := p.src[start:p.pos]
		p.skip()
		if name == "x" {
			return X, nil
		}
		fn, ok := funcTable[name]
		if !ok {
			return nil, p.errorf("unknown name %q", name)
		}
		if !p.accept("(") {
			return nil, p.errorf("expected ( after %q", name)
		}
		arg, err := p.sum()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, p.errorf("missing )")
		}
		return fn(arg), nil
	}
	return nil, p.errorf("unexpected end of input")
}
