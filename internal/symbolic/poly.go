package symbolic

import "math/big"

// Expand distributes products over sums and multiplies out small positive
// integer powers of sums.
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = Expand(t)
		}
		return AddOf(out...)
	case *Mul:
		acc := Expr(N(1))
		for _, f := range v.factors {
			acc = distribute(acc, Expand(f))
		}
		return acc
	case *Pow:
		base := Expand(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInt() && n.Sign() > 0 {
			if _, sum := base.(*Add); sum && n.val.Num().Int64() <= 8 {
				acc := Expr(N(1))
				for i := int64(0); i < n.val.Num().Int64(); i++ {
					acc = distribute(acc, base)
				}
				return acc
			}
		}
		return PowOf(base, Expand(v.exp))
	case *Func:
		return funcOf(v.name, Expand(v.arg))
	}
	return e
}

func distribute(a, b Expr) Expr {
	ta, tb := summands(a), summands(b)
	out := make([]Expr, 0, len(ta)*len(tb))
	for _, x := range ta {
		for _, y := range tb {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

func summands(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// poly holds rational coefficients indexed by degree.
type poly []*big.Rat

// polyOf returns the coefficients of e when it is a polynomial in x with
// rational coefficients.
func polyOf(e Expr) (poly, bool) {
	var p poly
	add := func(deg int, c *big.Rat) {
		for len(p) <= deg {
			p = append(p, new(big.Rat))
		}
		p[deg].Add(p[deg], c)
	}
	for _, t := range summands(Expand(e)) {
		c, body := splitCoef(t)
		if n, ok := body.(*Num); ok {
			add(0, new(big.Rat).Mul(c, n.val))
			continue
		}
		deg, ok := monomialDegree(body)
		if !ok {
			return nil, false
		}
		add(deg, c)
	}
	return p.trim(), true
}

func monomialDegree(e Expr) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		return 1, true
	case *Pow:
		if _, ok := v.base.(*Sym); !ok {
			return 0, false
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInt() || n.Sign() < 0 || !n.val.Num().IsInt64() {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

func (p poly) trim() poly {
	for len(p) > 0 && p[len(p)-1].Sign() == 0 {
		p = p[:len(p)-1]
	}
	return p
}

func (p poly) degree() int { return len(p) - 1 }

func (p poly) lead() *big.Rat { return p[len(p)-1] }

func (p poly) at(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

func (p poly) atFloat(x float64) float64 {
	var acc float64
	for i := len(p) - 1; i >= 0; i-- {
		f, _ := p[i].Float64()
		acc = acc*x + f
	}
	return acc
}

// deflate divides p by (x - r), assuming r is a root.
func (p poly) deflate(r *big.Rat) poly {
	n := len(p) - 1
	out := make(poly, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(p[i], new(big.Rat).Mul(carry, r))
		out[i-1] = carry
	}
	return out.trim()
}

// integerCoeffs scales p to integer coefficients.
func (p poly) integerCoeffs() []*big.Int {
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

// Expr rebuilds p as an expression.
func (p poly) Expr() Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(RatOf(c), PowOf(X, N(int64(i)))))
	}
	return AddOf(terms...)
}
