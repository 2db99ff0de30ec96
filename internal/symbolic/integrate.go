package symbolic

import (
	"fmt"
	"math/big"
)

const maxIntegrateDepth = 12

// Integrate returns an antiderivative of e without the constant of
// integration. The integrator is rule based: linearity, the power rule,
// linear substitution, u-substitution, integration by parts for
// polynomial times sin/cos/exp and x^n ln(x), exp times sin/cos, and the
// arctan/arcsin forms. Anything else yields ErrNotIntegrable.
func Integrate(e Expr) (Expr, error) {
	r, ok := integrate(e, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIntegrable, e)
	}
	return r, nil
}

func integrate(e Expr, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth {
		return nil, false
	}
	if freeOfX(e) {
		return MulOf(e, X), true
	}
	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(X, N(2))), true
	case *Add:
		parts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := integrate(t, depth+1)
			if !ok {
				return nil, false
			}
			parts[i] = r
		}
		return AddOf(parts...), true
	case *Pow:
		return integratePow(v, depth)
	case *Func:
		return integrateFunc(v)
	case *Mul:
		return integrateMul(v, depth)
	}
	return nil, false
}

// linearSlope returns a when e = a*x + b with a != 0.
func linearSlope(e Expr) (*Num, bool) {
	if freeOfX(e) {
		return nil, false
	}
	d, ok := e.Diff().(*Num)
	if !ok || d.Sign() == 0 {
		return nil, false
	}
	return d, true
}

func integratePow(p *Pow, depth int) (Expr, bool) {
	if freeOfX(p.exp) {
		if n, ok := p.exp.(*Num); ok && n.IsInt() && n.Sign() > 0 {
			if _, sum := p.base.(*Add); sum {
				return integrate(Expand(p), depth+1)
			}
		}
		if a, ok := linearSlope(p.base); ok {
			if isNum(p.exp, -1) {
				return MulOf(numInv(a), LnOf(p.base)), true
			}
			next := AddOf(p.exp, N(1))
			return MulOf(PowOf(p.base, next), PowOf(MulOf(a, next), N(-1))), true
		}
		if r, ok := inverseTrigForm(p); ok {
			return r, true
		}
		return nil, false
	}

	// b^(a*x + c) for a constant base.
	if freeOfX(p.base) {
		if a, ok := linearSlope(p.exp); ok {
			return MulOf(p, PowOf(MulOf(a, LnOf(p.base)), N(-1))), true
		}
	}
	return nil, false
}

// inverseTrigForm matches 1/(a*x^2 + a) and 1/sqrt(1 - x^2).
func inverseTrigForm(p *Pow) (Expr, bool) {
	q, ok := polyOf(p.base)
	if !ok || q.degree() != 2 || q[1].Sign() != 0 {
		return nil, false
	}
	a, c := q[2], q[0]
	switch {
	case isNum(p.exp, -1) && a.Sign() > 0 && a.Cmp(c) == 0:
		return MulOf(RatOf(new(big.Rat).Inv(a)), AtanOf(X)), true
	case Equal(p.exp, F(-1, 2)) && a.Cmp(big.NewRat(-1, 1)) == 0 && c.Cmp(big.NewRat(1, 1)) == 0:
		return AsinOf(X), true
	}
	return nil, false
}

// integrateFunc handles f(a*x + b) for the elementary functions.
func integrateFunc(f *Func) (Expr, bool) {
	a, ok := linearSlope(f.arg)
	if !ok {
		return nil, false
	}
	u := f.arg
	var r Expr
	switch f.name {
	case "sin":
		r = Neg(CosOf(u))
	case "cos":
		r = SinOf(u)
	case "exp":
		r = ExpOf(u)
	case "ln":
		r = Sub(MulOf(u, LnOf(u)), u)
	case "tan":
		r = Neg(LnOf(CosOf(u)))
	default:
		return nil, false
	}
	return MulOf(numInv(a), r), true
}

func integrateMul(m *Mul, depth int) (Expr, bool) {
	var consts, rest []Expr
	for _, f := range m.factors {
		if freeOfX(f) {
			consts = append(consts, f)
			continue
		}
		rest = append(rest, f)
	}
	if len(consts) > 0 {
		r, ok := integrate(MulOf(rest...), depth+1)
		if !ok {
			return nil, false
		}
		return MulOf(append(consts, r)...), true
	}

	if len(rest) == 2 {
		if r, ok := expTrig(rest[0], rest[1]); ok {
			return r, true
		}
		if r, ok := powerTimesLog(rest[0], rest[1]); ok {
			return r, true
		}
		if r, ok := byParts(rest[0], rest[1], depth); ok {
			return r, true
		}
	}
	if r, ok := substitute(rest); ok {
		return r, true
	}
	if expanded := Expand(m); !Equal(expanded, m) {
		if _, sum := expanded.(*Add); sum {
			return integrate(expanded, depth+1)
		}
	}
	return nil, false
}

// monomialPower returns n when e is x^n with n a rational constant.
func monomialPower(e Expr) (*Num, bool) {
	switch v := e.(type) {
	case *Sym:
		return N(1), true
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				return n, true
			}
		}
	}
	return nil, false
}

// expTrig integrates e^(a*x+b) * sin/cos(c*x+d).
func expTrig(f, g Expr) (Expr, bool) {
	ef, ok := f.(*Func)
	if !ok || ef.name != "exp" {
		f, g = g, f
		ef, ok = f.(*Func)
		if !ok || ef.name != "exp" {
			return nil, false
		}
	}
	tg, ok := g.(*Func)
	if !ok || (tg.name != "sin" && tg.name != "cos") {
		return nil, false
	}
	a, ok := linearSlope(ef.arg)
	if !ok {
		return nil, false
	}
	c, ok := linearSlope(tg.arg)
	if !ok {
		return nil, false
	}
	denom := numAdd(numMul(a, a), numMul(c, c))
	var inner Expr
	if tg.name == "sin" {
		inner = Sub(MulOf(a, SinOf(tg.arg)), MulOf(c, CosOf(tg.arg)))
	} else {
		inner = AddOf(MulOf(a, CosOf(tg.arg)), MulOf(c, SinOf(tg.arg)))
	}
	return Expand(MulOf(numInv(denom), ef, inner)), true
}

// powerTimesLog integrates x^n ln(x) for n != -1.
func powerTimesLog(f, g Expr) (Expr, bool) {
	lf, ok := g.(*Func)
	if !ok || lf.name != "ln" {
		f, g = g, f
		lf, ok = g.(*Func)
		if !ok || lf.name != "ln" {
			return nil, false
		}
	}
	if _, ok := lf.arg.(*Sym); !ok {
		return nil, false
	}
	n, ok := monomialPower(f)
	if !ok || isNum(n, -1) {
		return nil, false
	}
	next := numAdd(n, N(1))
	xp := PowOf(X, next)
	return Sub(
		MulOf(numInv(next), xp, LnOf(X)),
		MulOf(numInv(numMul(next, next)), xp),
	), true
}

// byParts integrates P(x) * T(a*x + b) where P is a positive integer power
// of x and T is sin, cos or exp, reducing the power each round.
func byParts(f, g Expr, depth int) (Expr, bool) {
	p, t := f, g
	n, ok := monomialPower(p)
	if !ok {
		p, t = g, f
		n, ok = monomialPower(p)
	}
	if !ok || !n.IsInt() || n.Sign() <= 0 {
		return nil, false
	}
	tf, ok := t.(*Func)
	if !ok || (tf.name != "sin" && tf.name != "cos" && tf.name != "exp") {
		return nil, false
	}
	v, ok := integrateFunc(tf)
	if !ok {
		return nil, false
	}
	rest, ok := integrate(MulOf(p.Diff(), v), depth+1)
	if !ok {
		return nil, false
	}
	return Sub(MulOf(p, v), rest), true
}

// substitute tries u-substitution: some factor is F(g(x)) and the product
// of the remaining factors is a constant multiple of g'(x).
func substitute(factors []Expr) (Expr, bool) {
	for i, f := range factors {
		g, outer, ok := outerIntegral(f)
		if !ok {
			continue
		}
		others := make([]Expr, 0, len(factors)-1)
		others = append(others, factors[:i]...)
		others = append(others, factors[i+1:]...)
		ratio := MulOf(append(others, PowOf(g.Diff(), N(-1)))...)
		if freeOfX(ratio) {
			return MulOf(ratio, outer), true
		}
	}
	return nil, false
}

// outerIntegral returns the inner function g and the antiderivative of
// the outer function evaluated at g.
func outerIntegral(f Expr) (g, outer Expr, ok bool) {
	switch v := f.(type) {
	case *Func:
		switch v.name {
		case "sin":
			return v.arg, Neg(CosOf(v.arg)), true
		case "cos":
			return v.arg, SinOf(v.arg), true
		case "exp":
			return v.arg, v, true
		}
	case *Pow:
		if !freeOfX(v.exp) || freeOfX(v.base) {
			return nil, nil, false
		}
		if isNum(v.exp, -1) {
			return v.base, LnOf(v.base), true
		}
		next := AddOf(v.exp, N(1))
		return v.base, MulOf(PowOf(v.base, next), PowOf(next, N(-1))), true
	}
	return nil, nil, false
}
