package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

var derivativeRules = map[string]string{
	"power":    ` Power rule: \( \frac{d}{dx} x^n = n x^{n-1} \).`,
	"sin":      ` \( \frac{d}{dx} \sin x = \cos x \).`,
	"cos":      ` \( \frac{d}{dx} \cos x = -\sin x \).`,
	"exp":      ` The exponential is its own derivative: \( \frac{d}{dx} e^x = e^x \).`,
	"log":      ` \( \frac{d}{dx} \ln x = \frac{1}{x} \).`,
	"chain":    ` Chain rule: differentiate the outer function, then multiply by the derivative of the inner one, \( (f(g(x)))' = f'(g(x)) \, g'(x) \).`,
	"product":  ` Product rule: \( (uv)' = u'v + uv' \).`,
	"quotient": ` Quotient rule: \( \left(\frac{u}{v}\right)' = \frac{u'v - uv'}{v^2} \).`,
}

// Generic wrong derivatives used when the expression-based candidates
// coincide with the correct answer.
var derivativeBackups = []symbolic.Expr{
	symbolic.N(0),
	symbolic.N(1),
	symbolic.X,
	symbolic.MustParse("2x"),
}

type derivativeBuilder struct {
	rng *lockedRand
}

func (b *derivativeBuilder) build(_ context.Context, e PoolEntry) (Question, string) {
	f := e.Expr
	d := f.Diff()
	correct := inline(d.LaTeX())

	set := newDistractorSet(correct)
	offer := func(c symbolic.Expr) {
		if c == nil || sameFunction(c, d) {
			return
		}
		set.add(inline(c.LaTeX()))
	}
	offer(d.Diff())
	offer(f)
	if anti, err := symbolic.Integrate(f); err == nil {
		offer(anti)
	}
	for _, c := range derivativeBackups {
		offer(c)
	}

	return Question{
		Text:        fmt.Sprintf(`What is the derivative of \( f(x) = %s \)? (%s)`, f.LaTeX(), e.Tier.Label()),
		Options:     set.options(b.rng),
		Correct:     correct,
		Explanation: fmt.Sprintf(`The derivative of \( %s \) is \( %s \).`, f.LaTeX(), d.LaTeX()) + derivativeRules[e.Method],
	}, ""
}
