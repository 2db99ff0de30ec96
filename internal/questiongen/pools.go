package questiongen

import "github.com/abhisek/calcmaster/internal/symbolic"

func fn(expr, method string) PoolEntry {
	return PoolEntry{Expr: symbolic.MustParse(expr), Method: method}
}

func slip(expr, method, wrong string) PoolEntry {
	e := fn(expr, method)
	e.Slip = symbolic.MustParse(wrong)
	return e
}

func lim(expr string, point symbolic.Point, expected, method string) PoolEntry {
	e := fn(expr, method)
	e.Point = point
	e.Expected = expected
	return e
}

func crit(expr, expected, method string) PoolEntry {
	e := fn(expr, method)
	e.Expected = expected
	return e
}

func at(v int64) symbolic.Point { return symbolic.At(symbolic.N(v)) }

// DerivativesPool returns the derivative pool.
func DerivativesPool() *Pool {
	return NewPool(
		[]PoolEntry{
			fn("x^2", "power"), fn("x^3", "power"), fn("x^4", "power"), fn("x^5", "power"),
			fn("2x", "power"), fn("3x^2", "power"), fn("4x^3", "power"), fn("5x^4", "power"),
			fn("sin(x)", "sin"), fn("cos(x)", "cos"), fn("exp(x)", "exp"), fn("ln(x)", "log"),
		},
		[]PoolEntry{
			fn("sin(2x)", "chain"), fn("cos(3x)", "chain"), fn("sin(x^2)", "chain"), fn("cos(x^2)", "chain"),
			fn("exp(2x)", "chain"), fn("exp(x^2)", "chain"), fn("ln(2x)", "chain"), fn("ln(x^2)", "chain"),
			fn("(x^2 + 1)^2", "chain"), fn("(x^2 + 1)^3", "chain"), fn("(2x + 3)^2", "chain"),
			fn("sqrt(x^2 + 1)", "chain"), fn("sqrt(2x + 1)", "chain"),
		},
		[]PoolEntry{
			fn("x*sin(x)", "product"), fn("x*cos(x)", "product"), fn("x*exp(x)", "product"),
			fn("x^2*sin(x)", "product"), fn("x^2*exp(x)", "product"), fn("sin(x)*cos(x)", "product"),
			fn("x*ln(x)", "product"), fn("(x^2 + 1)/x", "quotient"), fn("x/(x^2 + 1)", "quotient"),
			fn("sin(x)/x", "quotient"), fn("exp(x)/x", "quotient"), fn("ln(x^2 + 1)", "chain"),
			fn("x^2*ln(x)", "product"),
		},
	)
}

// IntegralsPool returns the integral pool.
func IntegralsPool() *Pool {
	return NewPool(
		[]PoolEntry{
			slip("x", "power", "x^2"), slip("x^2", "power", "x^3"), fn("x^3", "power"), fn("x^4", "power"),
			fn("2x", "power"), slip("3x^2", "power", "3x^3"), fn("4x^3", "power"),
			fn("sin(x)", "sin"), fn("cos(x)", "cos"), fn("exp(x)", "exp"), fn("1/x", "reciprocal"),
			fn("1", "constant"), fn("2", "constant"), fn("3", "constant"),
		},
		[]PoolEntry{
			fn("2x + 1", "linear"), fn("(2x + 1)^2", "linear"), fn("(x^2 + 1)^2", "expand"),
			slip("sin(2x)", "linear", "-cos(2x)"), slip("cos(2x)", "linear", "sin(2x)"),
			fn("exp(2x)", "linear"), fn("exp(-x)", "linear"), fn("1/(2x + 1)", "linear"),
			fn("x*exp(x^2)", "usub"), fn("x/(x^2 + 1)", "usub"), fn("2x/(x^2 + 1)^2", "usub"),
		},
		[]PoolEntry{
			slip("x*sin(x)", "parts", "0"), slip("x*cos(x)", "parts", "0"), slip("x*exp(x)", "parts", "0"),
			slip("x^2*exp(x)", "parts", "0"), fn("ln(x)", "parts-log"), slip("x*ln(x)", "parts-log", "0"),
			fn("1/(x^2 + 1)", "arctan"), fn("1/sqrt(1 - x^2)", "arcsin"),
			slip("exp(x)*sin(x)", "parts-cyclic", "0"),
		},
	)
}

// LimitsPool returns the limit pool.
func LimitsPool() *Pool {
	return NewPool(
		[]PoolEntry{
			lim("2x + 3", at(2), "7", "direct"),
			lim("x^2", at(3), "9", "direct"),
			lim("x^2 + 2x", at(1), "3", "direct"),
			lim("3x - 1", at(2), "5", "direct"),
			lim("x + 5", at(1), "6", "direct"),
			lim("x^2 - 4", at(1), "-3", "direct"),
			lim("2x^2 + 1", at(2), "9", "direct"),
			lim("-x + 4", at(3), "1", "direct"),
			lim("x^3", at(2), "8", "direct"),
			lim("4x - 7", at(3), "5", "direct"),
		},
		[]PoolEntry{
			lim("(x^2 - 1)/(x - 1)", at(1), "2", "factor"),
			lim("(x^2 - 4)/(x - 2)", at(2), "4", "factor"),
			lim("(x^2 - 9)/(x - 3)", at(3), "6", "factor"),
			lim("(x^3 - 8)/(x - 2)", at(2), "12", "factor"),
			lim("(2x^2 - 8)/(x - 2)", at(2), "8", "factor"),
			lim("sin(x)/x", at(0), "1", "trig"),
			lim("(1 - cos(x))/x^2", at(0), "1/2", "trig"),
			lim("(sqrt(x + 1) - 1)/x", at(0), "1/2", "rationalize"),
			lim("(sqrt(x + 4) - 2)/x", at(0), "1/4", "rationalize"),
		},
		[]PoolEntry{
			lim("(x^2 + 1)/(2x^2 + 3)", symbolic.Infinity, "1/2", "infinity"),
			lim("(3x^3 + 2x)/(x^3 - 1)", symbolic.Infinity, "3", "infinity"),
			lim("(x + 1)/(x^2 + 1)", symbolic.Infinity, "0", "infinity"),
			lim("2x^2/(x + 1)", symbolic.Infinity, "∞", "infinity"),
			lim("exp(x)/x", symbolic.Infinity, "∞", "lhopital"),
			lim("ln(x)/x", symbolic.Infinity, "0", "lhopital"),
			lim("x*exp(-x)", symbolic.Infinity, "0", "lhopital"),
			lim("1/x", at(0), "±∞", "one-sided"),
			lim("abs(x)/x", at(0), "±1", "one-sided"),
			lim("(exp(x) - 1)/x", at(0), "1", "lhopital"),
		},
	)
}

// CriticalPointsPool returns the critical point pool.
func CriticalPointsPool() *Pool {
	return NewPool(
		[]PoolEntry{
			crit("x^2", "x = 0", "parabola"),
			crit("x^2 + 2x", "x = -1", "parabola"),
			crit("x^2 - 4x + 3", "x = 2", "parabola"),
			crit("-x^2 + 4x - 3", "x = 2", "parabola"),
			crit("x^2 + 6x + 8", "x = -3", "parabola"),
			crit("-x^2 + 2x + 1", "x = 1", "parabola"),
			crit("2x^2 - 8x + 6", "x = 2", "parabola"),
			crit("x^2 - 6x + 5", "x = 3", "parabola"),
			crit("-2x^2 + 4x", "x = 1", "parabola"),
			crit("x^2 + 4x - 5", "x = -2", "parabola"),
		},
		[]PoolEntry{
			crit("x^3 - 3x^2", "x = 0, 2", "polynomial"),
			crit("x^3 - 3x", "x = -1, 1", "polynomial"),
			crit("x^3 + 3x^2 - 9x", "x = -3, 1", "polynomial"),
			crit("x^3 - 6x^2 + 9x", "x = 1, 3", "polynomial"),
			crit("x^4 - 4x^2", "x = -√2, 0, √2", "polynomial"),
			crit("x^4 - 2x^2 + 1", "x = -1, 0, 1", "polynomial"),
			crit("2x^3 - 6x^2 + 6x", "x = 1", "inflection"),
			crit("x^3 - 12x + 16", "x = -2, 2", "polynomial"),
			crit("-x^3 + 3x^2", "x = 0, 2", "polynomial"),
			crit("x^4 - 8x^2 + 16", "x = -2, 0, 2", "polynomial"),
		},
		[]PoolEntry{
			crit("x*exp(-x)", "x = 1", "exponential"),
			crit("x^2*exp(-x)", "x = 0, 2", "exponential"),
			crit("x - ln(x)", "x = 1", "logarithm"),
			crit("ln(x) - x", "x = 1", "logarithm"),
			crit("x^2*ln(x)", "x = 1/√e", "logarithm"),
			crit("exp(x) - x", "x = 0", "exponential"),
			crit("sin(x) + cos(x)", "x = π/4 + πn", "trigonometric"),
			crit("x*sin(x)", "tan(x) = -x", "trigonometric"),
			crit("x^2/(x^2 + 1)", "x = 0", "rational"),
			crit("ln(x^2 + 1)", "x = 0", "logarithm"),
		},
	)
}
