package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

var integralRules = map[string]string{
	"power":        ` Power rule: \( \int x^n \, dx = \frac{x^{n+1}}{n+1} + C \) for \( n \neq -1 \).`,
	"constant":     ` The integral of a constant \( k \) is \( kx + C \).`,
	"sin":          ` \( \int \sin x \, dx = -\cos x + C \).`,
	"cos":          ` \( \int \cos x \, dx = \sin x + C \).`,
	"exp":          ` \( \int e^x \, dx = e^x + C \).`,
	"reciprocal":   ` \( \int \frac{1}{x} \, dx = \ln\left|x\right| + C \).`,
	"linear":       ` Substitute \( u = ax + b \), so \( dx = \frac{du}{a} \) and the result is divided by \( a \).`,
	"expand":       ` Expand the power and integrate term by term.`,
	"usub":         ` Substitute \( u = g(x) \): the remaining factor is a multiple of \( g'(x) \, dx = du \).`,
	"parts":        ` Integration by parts: \( \int u \, dv = uv - \int v \, du \), taking the polynomial as \( u \).`,
	"parts-log":    ` Integration by parts with \( u = \ln x \), since its derivative \( \frac{1}{x} \) is simpler.`,
	"parts-cyclic": ` Integrate by parts twice; the original integral reappears and can be solved for.`,
	"arctan":       ` Standard form: \( \int \frac{1}{x^2 + 1} \, dx = \arctan x + C \).`,
	"arcsin":       ` Standard form: \( \int \frac{1}{\sqrt{1 - x^2}} \, dx = \arcsin x + C \).`,
}

// Generic wrong antiderivatives, tried in random order after the
// entry-specific candidates.
var integralBackups = []symbolic.Expr{
	symbolic.N(0),
	symbolic.N(1),
	symbolic.X,
	symbolic.MustParse("x^2"),
	symbolic.MustParse("x^2/2"),
	symbolic.MustParse("2x"),
	symbolic.MustParse("-x"),
	symbolic.MustParse("sin(x)"),
	symbolic.MustParse("cos(x)"),
	symbolic.MustParse("exp(x)"),
	symbolic.MustParse("ln(x)"),
}

const maxRandomIntegralTries = 50

// withC renders an antiderivative as an answer option.
func withC(e symbolic.Expr) string { return inline(e.LaTeX() + ` + C`) }

type integralBuilder struct {
	rng *lockedRand
}

func (b *integralBuilder) build(ctx context.Context, e PoolEntry) (Question, string) {
	if ctx.Err() != nil {
		return b.fallback(), "budget"
	}
	f := e.Expr
	anti, err := symbolic.Integrate(f)
	if err != nil {
		return b.fallback(), "evaluator"
	}
	correct := withC(anti)

	set := newDistractorSet(correct)
	offer := func(c symbolic.Expr) {
		// Compare derivatives so candidates differing only by a constant
		// are recognised as correct.
		if c == nil || set.full() || sameFunction(c.Diff(), f) {
			return
		}
		set.add(withC(c))
	}
	offer(f.Diff())
	offer(f)
	if e.Slip != nil {
		offer(e.Slip)
	}
	for _, c := range shuffled(b.rng, integralBackups) {
		offer(c)
	}
	for i := 0; i < maxRandomIntegralTries && !set.full(); i++ {
		offer(b.randomCandidate())
	}
	for k := int64(6); !set.full(); k++ {
		offer(symbolic.MulOf(symbolic.N(k), symbolic.PowOf(symbolic.X, symbolic.N(5))))
	}

	return Question{
		Text:        fmt.Sprintf(`What is \( \int %s \, dx \)? (%s)`, f.LaTeX(), e.Tier.Label()),
		Options:     set.options(b.rng),
		Correct:     correct,
		Explanation: fmt.Sprintf(`The integral of \( %s \) is \( %s + C \).`, f.LaTeX(), anti.LaTeX()) + integralRules[e.Method],
	}, ""
}

// randomCandidate draws a random polynomial or trigonometric expression.
func (b *integralBuilder) randomCandidate() symbolic.Expr {
	x := symbolic.X
	n := func(lo, hi int) *symbolic.Num { return symbolic.N(int64(lo + b.rng.IntN(hi-lo+1))) }
	switch b.rng.IntN(5) {
	case 0:
		return symbolic.MulOf(n(1, 5), x)
	case 1:
		return symbolic.Div(symbolic.PowOf(x, n(2, 4)), n(2, 4))
	case 2:
		return symbolic.MulOf(n(1, 3), symbolic.PowOf(x, n(2, 3)))
	case 3:
		return symbolic.Neg(symbolic.SinOf(x))
	default:
		return symbolic.Neg(symbolic.CosOf(x))
	}
}

var (
	fallbackIntegrand = symbolic.X
	fallbackAnswer    = symbolic.MustParse("x^2/2")
	fallbackWrong     = []symbolic.Expr{
		symbolic.MustParse("x^2"),
		symbolic.N(1),
		symbolic.MustParse("2x"),
	}
)

// fallback is the fixed question used when the evaluator cannot
// integrate an entry or the batch budget is spent.
func (b *integralBuilder) fallback() Question {
	set := newDistractorSet(withC(fallbackAnswer))
	for _, w := range fallbackWrong {
		set.add(withC(w))
	}
	return Question{
		Text:    fmt.Sprintf(`What is \( \int %s \, dx \)? (%s)`, fallbackIntegrand.LaTeX(), Easy.Label()),
		Options: set.options(b.rng),
		Correct: withC(fallbackAnswer),
		Explanation: fmt.Sprintf(`The integral of \( %s \) is \( %s + C \).`, fallbackIntegrand.LaTeX(), fallbackAnswer.LaTeX()) +
			integralRules["power"],
		Difficulty: Easy,
	}
}
