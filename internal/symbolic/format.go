package symbolic

import (
	"math/big"
	"strings"
)

// Plain renders short numeric answers the way a student writes them:
// "1/2", "-√2", "3 + 2√5", "ln(2)". Other expressions fall back to
// String.
func Plain(e Expr) string {
	switch v := e.(type) {
	case *Num:
		return v.String()
	case *Pow:
		if n, ok := v.base.(*Num); ok && Equal(v.exp, F(1, 2)) {
			return "√" + n.String()
		}
	case *Mul:
		if len(v.factors) == 2 {
			c, ok := v.factors[0].(*Num)
			if ok {
				if root, ok := v.factors[1].(*Pow); ok {
					if _, isNum := root.base.(*Num); isNum && Equal(root.exp, F(1, 2)) {
						return plainCoef(c.val) + Plain(root) + plainDenom(c.val)
					}
				}
			}
		}
	case *Add:
		var sb strings.Builder
		for i, t := range v.terms {
			switch {
			case i == 0:
				sb.WriteString(Plain(t))
			case negativeLead(t):
				sb.WriteString(" - ")
				sb.WriteString(Plain(Neg(t)))
			default:
				sb.WriteString(" + ")
				sb.WriteString(Plain(t))
			}
		}
		return sb.String()
	case *Func:
		if v.name == "exp" && isNum(v.arg, 1) {
			return "e"
		}
		return v.name + "(" + Plain(v.arg) + ")"
	}
	return e.String()
}

func plainCoef(r *big.Rat) string {
	n := r.Num()
	switch {
	case n.IsInt64() && n.Int64() == 1:
		return ""
	case n.IsInt64() && n.Int64() == -1:
		return "-"
	}
	return n.String()
}

func plainDenom(r *big.Rat) string {
	if r.IsInt() {
		return ""
	}
	return "/" + r.Denom().String()
}
