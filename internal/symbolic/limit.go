package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// Point is the value x approaches in a limit: a finite rational or +∞.
type Point struct {
	Value *Num
	Inf   bool
}

// At returns the finite point v.
func At(v *Num) Point { return Point{Value: v} }

// Infinity is the point +∞.
var Infinity = Point{Inf: true}

func (p Point) String() string {
	if p.Inf {
		return "∞"
	}
	return p.Value.String()
}

func (p Point) LaTeX() string {
	if p.Inf {
		return `\infty`
	}
	return p.Value.LaTeX()
}

const maxLHopital = 5

// Limit returns the two-sided limit of e as x approaches p. Direct
// substitution and L'Hôpital's rule give exact results; otherwise the
// limit is probed numerically and reported only when it matches a small
// rational. Divergent limits return a *NonFiniteError, limits whose sides
// disagree return ErrLimitUndefined.
func Limit(e Expr, p Point) (Expr, error) {
	if p.Inf {
		return limitAtInfinity(e)
	}
	return limitAt(e, p.Value)
}

func limitAt(e Expr, a *Num) (Expr, error) {
	af := a.Float64()
	cur := e
	for i := 0; i <= maxLHopital; i++ {
		if v, ok := substitute0(cur, a); ok {
			if i > 0 {
				// abs and sign break L'Hôpital; confirm both sides agree.
				if err := sidesAgree(e, af, v); err != nil {
					return nil, err
				}
			}
			return v, nil
		}
		num, den := splitQuotient(cur)
		if den == nil {
			break
		}
		if !nearZero(num.Eval(af)) || !nearZero(den.Eval(af)) {
			break
		}
		cur = Div(num.Diff(), den.Diff())
	}
	return probe(e, af)
}

// substitute0 plugs a into e when e is finite there.
func substitute0(e Expr, a *Num) (Expr, bool) {
	f := e.Eval(a.Float64())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	v := e.Subs(a)
	if !freeOfX(v) {
		return nil, false
	}
	return v, true
}

func nearZero(f float64) bool { return math.Abs(f) < 1e-12 }

// splitQuotient separates factors with negative exponents into a
// denominator. den is nil when e has none.
func splitQuotient(e Expr) (num, den Expr) {
	var factors []Expr
	switch v := e.(type) {
	case *Mul:
		factors = v.factors
	case *Pow:
		factors = []Expr{v}
	default:
		return e, nil
	}
	var top, bottom []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if n, ok := p.exp.(*Num); ok && n.Sign() < 0 {
				bottom = append(bottom, PowOf(p.base, numNeg(n)))
				continue
			}
		}
		top = append(top, f)
	}
	if len(bottom) == 0 {
		return e, nil
	}
	return MulOf(top...), MulOf(bottom...)
}

func sidesAgree(e Expr, a float64, v Expr) error {
	l, r := e.Eval(a-1e-5), e.Eval(a+1e-5)
	want := v.Eval(a)
	scale := math.Max(1, math.Abs(want))
	if math.IsNaN(l) || math.IsNaN(r) || math.Abs(l-r) > 1e-3*scale || math.Abs((l+r)/2-want) > 1e-3*scale {
		return fmt.Errorf("%w: one-sided limits differ at %g", ErrLimitUndefined, a)
	}
	return nil
}

// probe estimates the limit from both sides.
func probe(e Expr, a float64) (Expr, error) {
	l1, r1 := e.Eval(a-1e-3), e.Eval(a+1e-3)
	l2, r2 := e.Eval(a-1e-5), e.Eval(a+1e-5)
	for _, v := range []float64{l1, r1, l2, r2} {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: undefined near %g", ErrLimitUndefined, a)
		}
	}
	ld, rd := diverging(l1, l2), diverging(r1, r2)
	switch {
	case ld && rd && math.Signbit(l2) == math.Signbit(r2):
		return nil, &NonFiniteError{Negative: r2 < 0}
	case ld || rd:
		return nil, fmt.Errorf("%w: one-sided limits differ at %g", ErrLimitUndefined, a)
	}
	scale := math.Max(1, math.Abs(r2))
	if math.Abs(l2-r2) > 1e-3*scale {
		return nil, fmt.Errorf("%w: one-sided limits differ at %g", ErrLimitUndefined, a)
	}
	v := (l2 + r2) / 2
	if n, ok := Nice(v, 1e-4*scale); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: limit ≈ %g", ErrNoClosedForm, v)
}

func diverging(near, nearer float64) bool {
	if math.IsInf(nearer, 0) {
		return true
	}
	return math.Abs(nearer) > 1e4 && math.Abs(nearer) > 10*math.Abs(near)
}

func limitAtInfinity(e Expr) (Expr, error) {
	num, den := splitQuotient(e)
	if den == nil {
		den = N(1)
	}
	if pn, ok := polyOf(num); ok {
		if pd, ok := polyOf(den); ok && len(pd) > 0 {
			return rationalAtInfinity(pn, pd)
		}
	}

	xs := []float64{1e3, 1e4, 1e5, 1e6}
	vals := make([]float64, len(xs))
	for i, x := range xs {
		vals[i] = e.Eval(x)
		if math.IsNaN(vals[i]) {
			return nil, fmt.Errorf("%w: undefined for large x", ErrLimitUndefined)
		}
	}
	prev, last := vals[2], vals[3]
	if math.IsInf(last, 0) || (math.Abs(last) > 1e4 && math.Abs(last) > 5*math.Abs(prev)) {
		return nil, &NonFiniteError{Negative: last < 0}
	}
	scale := math.Max(1, math.Abs(last))
	if math.Abs(last-prev) > 1e-3*scale {
		return nil, fmt.Errorf("%w: no convergence at ∞", ErrLimitUndefined)
	}
	if n, ok := Nice(last, 1e-4*scale); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: limit ≈ %g", ErrNoClosedForm, last)
}

func rationalAtInfinity(pn, pd poly) (Expr, error) {
	switch {
	case len(pn) == 0:
		return N(0), nil
	case pn.degree() < pd.degree():
		return N(0), nil
	case pn.degree() == pd.degree():
		return RatOf(new(big.Rat).Quo(pn.lead(), pd.lead())), nil
	}
	neg := pn.lead().Sign()*pd.lead().Sign() < 0
	return nil, &NonFiniteError{Negative: neg}
}

// Nice returns the rational p/q with q <= 64 closest to v when it lies
// within tol.
func Nice(v, tol float64) (*Num, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e9 {
		return nil, false
	}
	for q := int64(1); q <= 64; q++ {
		p := math.Round(v * float64(q))
		if math.Abs(v-p/float64(q)) <= tol {
			return F(int64(p), q), true
		}
	}
	return nil, false
}
