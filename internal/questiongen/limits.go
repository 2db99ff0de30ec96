package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

var limitCandidates = map[Difficulty][]string{
	Easy:   {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "-1", "-2"},
	Medium: {"0", "1", "2", "3", "-1", "1/2", "1/3", "∞", "does not exist"},
	Hard:   {"0", "1", "-1", "1/2", "-1/2", "e", "ln(2)", "∞", "-∞", "does not exist"},
}

var limitMethods = map[string]string{
	"direct":      ` The function is continuous there, so substitute directly.`,
	"factor":      ` Substitution gives \( \frac{0}{0} \): factor the numerator and cancel the common factor first.`,
	"trig":        ` This reduces to the standard limit \( \lim_{x \to 0} \frac{\sin x}{x} = 1 \).`,
	"rationalize": ` Multiply numerator and denominator by the conjugate to remove the \( \frac{0}{0} \) form.`,
	"infinity":    ` Divide numerator and denominator by the highest power of \( x \) and compare degrees.`,
	"lhopital":    ` The form is indeterminate, so apply L'Hôpital's rule and differentiate numerator and denominator.`,
	"one-sided":   ` The left and right limits differ, so the two-sided limit does not exist.`,
}

type limitBuilder struct {
	rng *lockedRand
}

func (b *limitBuilder) build(ctx context.Context, e PoolEntry) (Question, string) {
	answer, reason := b.evaluate(ctx, e)

	set := newDistractorSet(answer)
	set.sampleFrom(b.rng, limitCandidates[e.Tier])
	set.padNumeric()

	var explain string
	if e.Method == "one-sided" {
		explain = fmt.Sprintf(`The one-sided limits of \( %s \) at \( x = %s \) are %s.`, e.Expr.LaTeX(), e.Point.LaTeX(), answer)
	} else {
		explain = fmt.Sprintf(`As \( x \to %s \), \( %s \) approaches %s.`, e.Point.LaTeX(), e.Expr.LaTeX(), answer)
	}

	return Question{
		Text:        fmt.Sprintf(`Evaluate the limit: \( \lim_{x \to %s} %s \) (%s)`, e.Point.LaTeX(), e.Expr.LaTeX(), e.Tier.Label()),
		Options:     set.options(b.rng),
		Correct:     answer,
		Explanation: explain + limitMethods[e.Method],
	}, reason
}

// evaluate returns the limit in plain form, or the entry's expected
// answer with a fallback reason when the evaluator cannot give a finite
// exact value.
func (b *limitBuilder) evaluate(ctx context.Context, e PoolEntry) (string, string) {
	if ctx.Err() != nil {
		return e.Expected, "budget"
	}
	v, err := symbolic.Limit(e.Expr, e.Point)
	if err != nil {
		return e.Expected, "evaluator"
	}
	return symbolic.Plain(v), ""
}
