package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// CriticalPoints returns the real solutions of f'(x) = 0 in ascending
// order.
func CriticalPoints(f Expr) ([]Expr, error) { return Roots(f.Diff()) }

// Roots returns the real solutions of e = 0 in ascending order.
//
// Polynomials are solved exactly (rational roots, then the quadratic
// formula with simplified surds). Other expressions are scanned on
// [-20, 20] and each root must match a small rational. Periodic
// expressions have infinitely many roots and yield ErrUnsolvable.
func Roots(e Expr) ([]Expr, error) {
	if p, ok := polyOf(e); ok {
		return polyRoots(p)
	}
	if periodic(e) {
		return nil, fmt.Errorf("%w: periodic expression %s", ErrUnsolvable, e)
	}
	return scanRoots(e)
}

type root struct {
	expr Expr
	val  float64
}

func polyRoots(p poly) ([]Expr, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: identically zero", ErrUnsolvable)
	}
	var roots []root
	addRational := func(r *big.Rat) {
		f, _ := r.Float64()
		roots = append(roots, root{expr: RatOf(r), val: f})
	}

	for p.degree() > 0 && p[0].Sign() == 0 {
		addRational(new(big.Rat))
		p = p[1:]
	}
	for p.degree() > 2 {
		r, ok := rationalRoot(p)
		if !ok {
			break
		}
		addRational(r)
		p = p.deflate(r)
	}

	switch p.degree() {
	case 0:
	case 1:
		addRational(new(big.Rat).Neg(new(big.Rat).Quo(p[0], p[1])))
	case 2:
		roots = append(roots, quadraticRoots(p[2], p[1], p[0])...)
	default:
		return nil, fmt.Errorf("%w: degree %d factor without rational roots", ErrUnsolvable, p.degree())
	}
	if len(roots) == 0 {
		return nil, ErrNoRealRoots
	}
	return sortRoots(roots), nil
}

// rationalRoot finds a root ±(divisor of a0)/(divisor of an).
func rationalRoot(p poly) (*big.Rat, bool) {
	c := p.integerCoeffs()
	a0, an := new(big.Int).Abs(c[0]), new(big.Int).Abs(c[len(c)-1])
	if !a0.IsInt64() || !an.IsInt64() {
		return nil, false
	}
	for _, num := range divisors(a0.Int64()) {
		for _, den := range divisors(an.Int64()) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*num, den)
				if p.at(r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n int64) []int64 {
	if n == 0 || n > 1_000_000 {
		return nil
	}
	var out []int64
	for d := int64(1); d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
		}
	}
	return out
}

func quadraticRoots(a, b, c *big.Rat) []root {
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	if disc.Sign() < 0 {
		return nil
	}
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	center := RatOf(new(big.Rat).Neg(new(big.Rat).Quo(b, twoA)))
	if disc.Sign() == 0 {
		return []root{{expr: center, val: center.Float64()}}
	}
	half := MulOf(RatOf(new(big.Rat).Inv(twoA)), Sqrt(RatOf(disc)))
	var out []root
	for _, e := range []Expr{AddOf(center, half), Sub(center, half)} {
		out = append(out, root{expr: e, val: e.Eval(0)})
	}
	return out
}

const (
	scanFrom = -20.0
	scanTo   = 20.0
	scanStep = 0.01
)

// scanRoots locates sign changes on a grid, refines them by bisection and
// snaps each root to a small rational.
func scanRoots(e Expr) ([]Expr, error) {
	var roots []root
	accept := func(x float64) error {
		if math.Abs(e.Eval(x)) > 1e-6 {
			// A pole, not a root.
			return nil
		}
		n, ok := Nice(x, 1e-6)
		if !ok {
			return fmt.Errorf("%w: root near %g has no closed form", ErrUnsolvable, x)
		}
		roots = append(roots, root{expr: n, val: n.Float64()})
		return nil
	}

	steps := int((scanTo - scanFrom) / scanStep)
	prevX, prevY := scanFrom, e.Eval(scanFrom)
	for i := 1; i <= steps; i++ {
		x := scanFrom + float64(i)*scanStep
		y := e.Eval(x)
		switch {
		case math.IsNaN(y) || math.IsInf(y, 0) || math.IsNaN(prevY) || math.IsInf(prevY, 0):
		case y == 0:
			if err := accept(x); err != nil {
				return nil, err
			}
		case prevY*y < 0:
			if err := accept(bisect(e, prevX, x)); err != nil {
				return nil, err
			}
		}
		prevX, prevY = x, y
	}
	if len(roots) == 0 {
		return nil, ErrNoRealRoots
	}
	return sortRoots(roots), nil
}

func bisect(e Expr, lo, hi float64) float64 {
	flo := e.Eval(lo)
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		fm := e.Eval(mid)
		if fm == 0 {
			return mid
		}
		if (fm < 0) == (flo < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func sortRoots(roots []root) []Expr {
	sort.Slice(roots, func(i, j int) bool { return roots[i].val < roots[j].val })
	var out []Expr
	last := math.Inf(-1)
	for _, r := range roots {
		if len(out) > 0 && math.Abs(r.val-last) < 1e-9 {
			continue
		}
		out = append(out, r.expr)
		last = r.val
	}
	return out
}

func periodic(e Expr) bool {
	switch v := e.(type) {
	case *Func:
		switch v.name {
		case "sin", "cos", "tan":
			return true
		}
		return periodic(v.arg)
	case *Add:
		for _, t := range v.terms {
			if periodic(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if periodic(f) {
				return true
			}
		}
	case *Pow:
		return periodic(v.base) || periodic(v.exp)
	}
	return false
}
