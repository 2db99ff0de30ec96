// Package symbolic is a small single-variable expression kernel. It builds
// canonical expression trees over exact rationals and provides the calculus
// operations the question generators need: differentiation, a rule-based
// integrator, limits, real root finding and LaTeX rendering.
//
// Every expression is a function of the single variable X. Constructors
// (AddOf, MulOf, PowOf, SinOf, ...) always return canonical forms, so two
// structurally equal expressions print identically.
package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an immutable expression in the variable x.
type Expr interface {
	// String returns a plain, canonical text form. Equal expressions
	// produce equal strings.
	String() string
	// LaTeX renders the expression for display.
	LaTeX() string
	// Diff returns d/dx of the expression.
	Diff() Expr
	// Subs replaces x with value.
	Subs(value Expr) Expr
	// Eval evaluates the expression numerically at x.
	Eval(x float64) float64
}

// ============================================================
// Num
// ============================================================

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

// N returns the integer constant n.
func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the rational constant p/q.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return &Num{val: big.NewRat(p, q)}
}

// RatOf wraps a copy of r.
func RatOf(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Rat() *big.Rat        { return new(big.Rat).Set(n.val) }
func (n *Num) Sign() int            { return n.val.Sign() }
func (n *Num) IsInt() bool          { return n.val.IsInt() }
func (n *Num) Float64() float64     { f, _ := n.val.Float64(); return f }
func (n *Num) Diff() Expr           { return N(0) }
func (n *Num) Subs(Expr) Expr       { return n }
func (n *Num) Eval(float64) float64 { return n.Float64() }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.Num().String() + "/" + n.val.Denom().String()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	num := new(big.Int).Set(n.val.Num())
	if num.Sign() < 0 {
		sign = "-"
		num.Neg(num)
	}
	return sign + `\frac{` + num.String() + `}{` + n.val.Denom().String() + `}`
}

func isNum(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(new(big.Rat).SetInt64(v)) == 0
}

func numNeg(n *Num) *Num { return &Num{val: new(big.Rat).Neg(n.val)} }

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }

func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }

func numInv(n *Num) *Num { return &Num{val: new(big.Rat).Inv(n.val)} }

// ============================================================
// Sym
// ============================================================

// Sym is the free variable.
type Sym struct{ name string }

// X is the variable every expression is a function of.
var X = &Sym{name: "x"}

func (s *Sym) String() string         { return s.name }
func (s *Sym) LaTeX() string          { return s.name }
func (s *Sym) Diff() Expr             { return N(1) }
func (s *Sym) Subs(value Expr) Expr   { return value }
func (s *Sym) Eval(x float64) float64 { return x }

// ============================================================
// Add
// ============================================================

// Add is a sum of at least two terms. Terms are ordered by decreasing
// degree in x, with the constant term last.
type Add struct{ terms []Expr }

// AddOf returns the canonical sum of terms: nested sums are flattened,
// constants folded and like terms collected.
func AddOf(terms ...Expr) Expr {
	var flat []Expr
	for _, t := range terms {
		if a, ok := t.(*Add); ok {
			flat = append(flat, a.terms...)
			continue
		}
		flat = append(flat, t)
	}

	type group struct {
		coef *big.Rat
		body Expr
	}
	constant := new(big.Rat)
	groups := map[string]*group{}
	var keys []string
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant.Add(constant, n.val)
			continue
		}
		c, body := splitCoef(t)
		k := body.String()
		if g, ok := groups[k]; ok {
			g.coef.Add(g.coef, c)
			continue
		}
		groups[k] = &group{coef: c, body: body}
		keys = append(keys, k)
	}

	var out []Expr
	for _, k := range keys {
		g := groups[k]
		if g.coef.Sign() == 0 {
			continue
		}
		out = append(out, MulOf(RatOf(g.coef), g.body))
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := degree(out[i]), degree(out[j])
		if di != dj {
			return di > dj
		}
		return out[i].String() < out[j].String()
	})
	if constant.Sign() != 0 {
		out = append(out, RatOf(constant))
	}

	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// Terms returns the summands.
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(t.String())
		case negativeLead(t):
			sb.WriteString(" - ")
			sb.WriteString(Neg(t).String())
		default:
			sb.WriteString(" + ")
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(t.LaTeX())
		case negativeLead(t):
			sb.WriteString(" - ")
			sb.WriteString(Neg(t).LaTeX())
		default:
			sb.WriteString(" + ")
			sb.WriteString(t.LaTeX())
		}
	}
	return sb.String()
}

func (a *Add) Diff() Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff()
	}
	return AddOf(out...)
}

func (a *Add) Subs(value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Subs(value)
	}
	return AddOf(out...)
}

func (a *Add) Eval(x float64) float64 {
	var s float64
	for _, t := range a.terms {
		s += t.Eval(x)
	}
	return s
}

// ============================================================
// Mul
// ============================================================

// Mul is a product. A numeric coefficient, when present and not 1, is the
// first factor; remaining factors have distinct bases.
type Mul struct{ factors []Expr }

// MulOf returns the canonical product of factors: constants are folded,
// powers of a common base merged and exponentials combined. A numeric
// coefficient times a single sum is distributed.
func MulOf(factors ...Expr) Expr {
	var flat []Expr
	var flatten func(e Expr)
	flatten = func(e Expr) {
		if m, ok := e.(*Mul); ok {
			for _, f := range m.factors {
				flatten(f)
			}
			return
		}
		flat = append(flat, e)
	}
	for _, f := range factors {
		flatten(f)
	}

	type group struct {
		base Expr
		exps []Expr
	}
	coef := big.NewRat(1, 1)
	groups := map[string]*group{}
	var keys []string
	var expArgs []Expr
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coef.Mul(coef, n.val)
			continue
		}
		if fn, ok := f.(*Func); ok && fn.name == "exp" {
			expArgs = append(expArgs, fn.arg)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		k := base.String()
		if g, ok := groups[k]; ok {
			g.exps = append(g.exps, exp)
			continue
		}
		groups[k] = &group{base: base, exps: []Expr{exp}}
		keys = append(keys, k)
	}
	if coef.Sign() == 0 {
		return N(0)
	}

	var out []Expr
	absorb := func(f Expr) {
		switch v := f.(type) {
		case *Num:
			coef.Mul(coef, v.val)
		case *Mul:
			for _, ff := range v.factors {
				if n, ok := ff.(*Num); ok {
					coef.Mul(coef, n.val)
					continue
				}
				out = append(out, ff)
			}
		default:
			out = append(out, f)
		}
	}
	for _, k := range keys {
		g := groups[k]
		absorb(PowOf(g.base, AddOf(g.exps...)))
	}
	if len(expArgs) > 0 {
		absorb(ExpOf(AddOf(expArgs...)))
	}
	if coef.Sign() == 0 {
		return N(0)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := factorRank(out[i]), factorRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i].String() < out[j].String()
	})

	one := coef.Cmp(big.NewRat(1, 1)) == 0
	switch {
	case len(out) == 0:
		return RatOf(coef)
	case len(out) == 1 && one:
		return out[0]
	case len(out) == 1:
		if a, ok := out[0].(*Add); ok {
			terms := make([]Expr, len(a.terms))
			for i, t := range a.terms {
				terms[i] = MulOf(RatOf(coef), t)
			}
			return AddOf(terms...)
		}
	}
	if !one {
		out = append([]Expr{RatOf(coef)}, out...)
	}
	return &Mul{factors: out}
}

// Factors returns the factors including a leading coefficient.
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

func (m *Mul) String() string {
	parts := make([]string, 0, len(m.factors))
	prefix := ""
	for i, f := range m.factors {
		if i == 0 && isNum(f, -1) {
			prefix = "-"
			continue
		}
		s := f.String()
		if _, ok := f.(*Add); ok {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	coef := big.NewRat(1, 1)
	var num, den []Expr
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coef = v.Rat()
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.Sign() < 0 {
				den = append(den, PowOf(v.base, numNeg(en)))
				continue
			}
			num = append(num, f)
		default:
			num = append(num, f)
		}
	}

	sign := ""
	if coef.Sign() < 0 {
		sign = "-"
		coef.Neg(coef)
	}
	var numParts, denParts []string
	if !isOneInt(coef.Num()) {
		numParts = append(numParts, coef.Num().String())
	}
	if !isOneInt(coef.Denom()) {
		denParts = append(denParts, coef.Denom().String())
	}
	numGrouped := len(num)+len(numParts) > 1
	denGrouped := len(den)+len(denParts) > 1
	for _, f := range num {
		numParts = append(numParts, factorLaTeX(f, numGrouped))
	}
	for _, f := range den {
		denParts = append(denParts, factorLaTeX(f, denGrouped))
	}

	top := strings.Join(numParts, " ")
	if top == "" {
		top = "1"
	}
	if len(denParts) == 0 {
		return sign + top
	}
	return sign + `\frac{` + top + `}{` + strings.Join(denParts, " ") + `}`
}

func isOneInt(i *big.Int) bool { return i.IsInt64() && i.Int64() == 1 }

func factorLaTeX(f Expr, grouped bool) string {
	if _, ok := f.(*Add); ok && grouped {
		return `\left(` + f.LaTeX() + `\right)`
	}
	return f.LaTeX()
}

func (m *Mul) Diff() Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		parts := make([]Expr, len(m.factors))
		copy(parts, m.factors)
		parts[i] = m.factors[i].Diff()
		terms = append(terms, MulOf(parts...))
	}
	return AddOf(terms...)
}

func (m *Mul) Subs(value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Subs(value)
	}
	return MulOf(out...)
}

func (m *Mul) Eval(x float64) float64 {
	p := 1.0
	for _, f := range m.factors {
		p *= f.Eval(x)
	}
	return p
}

// ============================================================
// Pow
// ============================================================

// Pow is base raised to exp.
type Pow struct{ base, exp Expr }

// PowOf returns the canonical form of base^exp.
func PowOf(base, exp Expr) Expr {
	en, expNum := exp.(*Num)
	if expNum {
		if en.Sign() == 0 {
			return N(1)
		}
		if isNum(en, 1) {
			return base
		}
	}

	switch b := base.(type) {
	case *Num:
		if isNum(b, 1) {
			return N(1)
		}
		if b.Sign() == 0 && expNum && en.Sign() > 0 {
			return N(0)
		}
		if expNum && b.Sign() != 0 {
			if r, ok := ratPow(b, en); ok {
				return r
			}
		}
	case *Pow:
		if expNum && en.IsInt() {
			return PowOf(b.base, MulOf(b.exp, en))
		}
	case *Mul:
		if expNum && en.IsInt() {
			out := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				out[i] = PowOf(f, en)
			}
			return MulOf(out...)
		}
	case *Func:
		if b.name == "exp" {
			return ExpOf(MulOf(b.arg, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

// Sqrt returns e^(1/2).
func Sqrt(e Expr) Expr { return PowOf(e, F(1, 2)) }

// Base returns the base of the power.
func (p *Pow) Base() Expr { return p.base }

// Exponent returns the exponent of the power.
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) String() string {
	b := p.base.String()
	switch v := p.base.(type) {
	case *Add, *Mul, *Pow:
		b = "(" + b + ")"
	case *Num:
		if v.Sign() < 0 || !v.IsInt() {
			b = "(" + b + ")"
		}
	}
	e := p.exp.String()
	if en, ok := p.exp.(*Num); !ok || en.Sign() < 0 || !en.IsInt() {
		if _, sym := p.exp.(*Sym); !sym {
			e = "(" + e + ")"
		}
	}
	return b + "^" + e
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.val.Cmp(big.NewRat(1, 2)) == 0 {
			return `\sqrt{` + p.base.LaTeX() + `}`
		}
		if en.Sign() < 0 {
			return `\frac{1}{` + PowOf(p.base, numNeg(en)).LaTeX() + `}`
		}
	}
	exp := `^{` + p.exp.LaTeX() + `}`
	switch v := p.base.(type) {
	case *Func:
		switch v.name {
		case "sin", "cos", "tan":
			return `\` + v.name + exp + `\left(` + v.arg.LaTeX() + `\right)`
		case "ln":
			return `\ln` + exp + `\left(` + v.arg.LaTeX() + `\right)`
		}
		return `\left(` + v.LaTeX() + `\right)` + exp
	case *Add, *Mul, *Pow:
		return `\left(` + v.LaTeX() + `\right)` + exp
	case *Num:
		if v.Sign() < 0 || !v.IsInt() {
			return `\left(` + v.LaTeX() + `\right)` + exp
		}
	}
	return p.base.LaTeX() + exp
}

func (p *Pow) Diff() Expr {
	switch {
	case freeOfX(p.exp):
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), p.base.Diff())
	case freeOfX(p.base):
		return MulOf(p, LnOf(p.base), p.exp.Diff())
	}
	return MulOf(p, AddOf(
		MulOf(p.exp.Diff(), LnOf(p.base)),
		MulOf(p.exp, p.base.Diff(), PowOf(p.base, N(-1))),
	))
}

func (p *Pow) Subs(value Expr) Expr { return PowOf(p.base.Subs(value), p.exp.Subs(value)) }

func (p *Pow) Eval(x float64) float64 {
	b, e := p.base.Eval(x), p.exp.Eval(x)
	if en, ok := p.exp.(*Num); ok && !en.IsInt() && b < 0 {
		// Odd roots of negative numbers stay real.
		if d := en.val.Denom(); d.IsInt64() && d.Int64()%2 == 1 {
			r := math.Pow(-b, e)
			if n := en.val.Num(); n.Bit(0) == 1 {
				return -r
			}
			return r
		}
	}
	return math.Pow(b, e)
}

// ratPow evaluates b^e exactly where that gives a rational or a
// simplified square root.
func ratPow(b, e *Num) (Expr, bool) {
	if e.IsInt() {
		n := e.val.Num()
		if !n.IsInt64() || n.Int64() > 64 || n.Int64() < -64 {
			return nil, false
		}
		k := n.Int64()
		neg := k < 0
		if neg {
			k = -k
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(k), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(k), nil)
		r := new(big.Rat).SetFrac(num, den)
		if neg {
			r.Inv(r)
		}
		return &Num{val: r}, true
	}

	if e.val.Denom().Cmp(big.NewInt(2)) != 0 || b.Sign() < 0 {
		return nil, false
	}
	p := e.val.Num()
	if !p.IsInt64() {
		return nil, false
	}
	switch p.Int64() {
	case 1:
	case -1:
		return ratPow(numInv(b), F(1, 2))
	default:
		return nil, false
	}

	// sqrt(n/d) = sqrt(n*d)/d, then pull square factors out of n*d.
	nd := new(big.Int).Mul(b.val.Num(), b.val.Denom())
	if !nd.IsInt64() || nd.Int64() > 1_000_000_000_000 {
		return nil, false
	}
	outside, inside := extractSquare(nd.Int64())
	coef := new(big.Rat).SetFrac(big.NewInt(outside), b.val.Denom())
	if inside == 1 {
		return &Num{val: coef}, true
	}
	root := &Pow{base: N(inside), exp: F(1, 2)}
	if coef.Cmp(big.NewRat(1, 1)) == 0 {
		return root, true
	}
	return &Mul{factors: []Expr{&Num{val: coef}, root}}, true
}

// extractSquare writes n = outside^2 * inside with inside square-free.
func extractSquare(n int64) (outside, inside int64) {
	outside, inside = 1, n
	for f := int64(2); f*f <= inside; f++ {
		for inside%(f*f) == 0 {
			inside /= f * f
			outside *= f
		}
	}
	return outside, inside
}

// ============================================================
// Func
// ============================================================

// Func is an elementary function applied to an argument.
type Func struct {
	name string
	arg  Expr
}

func SinOf(arg Expr) Expr  { return funcOf("sin", arg) }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg) }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg) }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg) }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg) }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg) }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg) }
func SignOf(arg Expr) Expr { return funcOf("sign", arg) }

var oddFuncs = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sign": true}

func funcOf(name string, arg Expr) Expr {
	if negativeLead(arg) {
		switch {
		case oddFuncs[name]:
			return Neg(funcOf(name, Neg(arg)))
		case name == "cos" || name == "abs":
			return funcOf(name, Neg(arg))
		}
	}

	switch name {
	case "sin", "tan", "asin", "atan":
		if isNum(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNum(arg, 0) {
			return N(1)
		}
	case "exp":
		if isNum(arg, 0) {
			return N(1)
		}
		if f, ok := arg.(*Func); ok && f.name == "ln" {
			return f.arg
		}
	case "ln":
		if isNum(arg, 1) {
			return N(0)
		}
		if f, ok := arg.(*Func); ok && f.name == "exp" {
			return f.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return RatOf(new(big.Rat).Abs(n.val))
		}
	case "sign":
		if n, ok := arg.(*Num); ok {
			return N(int64(n.Sign()))
		}
	}
	return &Func{name: name, arg: arg}
}

// Name returns the function name, e.g. "sin" or "ln".
func (f *Func) Name() string { return f.name }

// Arg returns the function argument.
func (f *Func) Arg() Expr { return f.arg }

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	a := f.arg.LaTeX()
	switch f.name {
	case "sin", "cos", "tan":
		return `\` + f.name + `\left(` + a + `\right)`
	case "exp":
		return `e^{` + a + `}`
	case "ln":
		return `\ln\left(` + a + `\right)`
	case "abs":
		return `\left|` + a + `\right|`
	case "asin":
		return `\arcsin\left(` + a + `\right)`
	case "atan":
		return `\arctan\left(` + a + `\right)`
	}
	return `\operatorname{` + f.name + `}\left(` + a + `\right)`
}

func (f *Func) Diff() Expr {
	u, du := f.arg, f.arg.Diff()
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = Neg(SinOf(u))
	case "tan":
		outer = AddOf(PowOf(TanOf(u), N(2)), N(1))
	case "exp":
		outer = f
	case "ln":
		outer = PowOf(u, N(-1))
	case "abs":
		outer = SignOf(u)
	case "asin":
		outer = PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(-1, 2))
	case "atan":
		outer = PowOf(AddOf(PowOf(u, N(2)), N(1)), N(-1))
	default:
		return N(0)
	}
	return MulOf(outer, du)
}

func (f *Func) Subs(value Expr) Expr { return funcOf(f.name, f.arg.Subs(value)) }

func (f *Func) Eval(x float64) float64 {
	a := f.arg.Eval(x)
	switch f.name {
	case "sin":
		return math.Sin(a)
	case "cos":
		return math.Cos(a)
	case "tan":
		return math.Tan(a)
	case "exp":
		return math.Exp(a)
	case "ln":
		return math.Log(a)
	case "abs":
		return math.Abs(a)
	case "asin":
		return math.Asin(a)
	case "atan":
		return math.Atan(a)
	case "sign":
		switch {
		case a > 0:
			return 1
		case a < 0:
			return -1
		}
		return 0
	}
	return math.NaN()
}

// ============================================================
// helpers
// ============================================================

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Equal reports whether a and b have the same canonical form.
func Equal(a, b Expr) bool { return a.String() == b.String() }

// FreeOfX reports whether e does not depend on x.
func FreeOfX(e Expr) bool { return freeOfX(e) }

func freeOfX(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return true
	case *Sym:
		return false
	case *Add:
		for _, t := range v.terms {
			if !freeOfX(t) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !freeOfX(f) {
				return false
			}
		}
		return true
	case *Pow:
		return freeOfX(v.base) && freeOfX(v.exp)
	case *Func:
		return freeOfX(v.arg)
	}
	return false
}

func splitCoef(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return big.NewRat(1, 1), e
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return big.NewRat(1, 1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return n.Rat(), rest[0]
	}
	return n.Rat(), &Mul{factors: append([]Expr(nil), rest...)}
}

func negativeLead(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.Sign() < 0
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok {
			return n.Sign() < 0
		}
	}
	return false
}

// degree orders terms of a sum: the power of x a term carries.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				return n.Float64()
			}
		}
	case *Mul:
		var d float64
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	}
	return 0
}

func factorRank(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		switch v.base.(type) {
		case *Num:
			return 0
		case *Sym:
			return 1
		case *Func:
			return 3
		}
		return 2
	case *Add:
		return 2
	case *Func:
		return 3
	}
	return 0
}
