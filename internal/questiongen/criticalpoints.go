package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

// NoCriticalPoints is the answer when f' has no real zeros.
const NoCriticalPoints = "no critical points"

var criticalCandidates = map[Difficulty][]string{
	Easy: {"x = 0", "x = 1", "x = -1", "x = 2", "x = -2", "x = 3", "x = -3", NoCriticalPoints},
	Medium: {
		"x = 0", "x = 1", "x = -1", "x = 2", "x = -2", "x = 0, 1",
		"x = -1, 1", "x = 1, 2", "x = -2, 2", NoCriticalPoints,
	},
	Hard: {
		"x = 0", "x = 1", "x = e", "x = 1/e", "x = π/2", "x = π/4",
		"x = ln(2)", "x = √2", NoCriticalPoints,
	},
}

var criticalMethods = map[string]string{
	"parabola":      ` A quadratic has exactly one critical point, at its vertex \( x = -\frac{b}{2a} \).`,
	"polynomial":    ` Factor the derivative and set each factor to zero.`,
	"inflection":    ` The derivative is a perfect square, so the critical point is a stationary inflection rather than an extremum.`,
	"exponential":   ` The exponential factor is never zero, so only the polynomial factor matters.`,
	"logarithm":     ` Keep the domain of the logarithm in mind when solving.`,
	"trigonometric": ` The equation is trigonometric, so its solutions repeat or have no closed form.`,
	"rational":      ` With the quotient rule only the numerator of the derivative can vanish.`,
}

type criticalPointBuilder struct {
	rng *lockedRand
}

func (b *criticalPointBuilder) build(ctx context.Context, e PoolEntry) (Question, string) {
	f := e.Expr
	answer, reason := b.solve(ctx, e)

	set := newDistractorSet(answer)
	set.sampleFrom(b.rng, criticalCandidates[e.Tier])
	set.padNumeric()

	var explain string
	if answer == NoCriticalPoints {
		explain = fmt.Sprintf(`\( f'(x) = %s \) is never zero, so there are no critical points.`, f.Diff().LaTeX())
	} else {
		explain = fmt.Sprintf(`Set \( f'(x) = %s = 0 \). Solving gives %s.`, f.Diff().LaTeX(), answer)
	}

	return Question{
		Text:        fmt.Sprintf(`What are the critical points of \( f(x) = %s \)? (%s)`, f.LaTeX(), e.Tier.Label()),
		Options:     set.options(b.rng),
		Correct:     answer,
		Explanation: explain + criticalMethods[e.Method],
	}, reason
}

func (b *criticalPointBuilder) solve(ctx context.Context, e PoolEntry) (string, string) {
	if ctx.Err() != nil {
		return e.Expected, "budget"
	}
	roots, err := symbolic.CriticalPoints(e.Expr)
	switch {
	case errors.Is(err, symbolic.ErrNoRealRoots):
		return NoCriticalPoints, ""
	case err != nil:
		return e.Expected, "evaluator"
	}
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = symbolic.Plain(r)
	}
	return "x = " + strings.Join(parts, ", "), ""
}
