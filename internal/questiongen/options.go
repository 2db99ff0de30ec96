package questiongen

import (
	"math"
	"strconv"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

const numDistractors = 3

// samplePoints are where candidate expressions are compared. All are
// positive so logarithms are defined; two exceed 1 so arcsin-like
// domains are not the only evidence.
var samplePoints = []float64{0.3, 0.55, 0.8, 1.3, 2.1}

// sameFunction reports whether a and b agree numerically at every
// sample point where both are defined. A point defined for only one of
// them counts as a disagreement.
func sameFunction(a, b symbolic.Expr) bool {
	compared := 0
	for _, x := range samplePoints {
		va, vb := a.Eval(x), b.Eval(x)
		na, nb := !finite(va), !finite(vb)
		if na || nb {
			if na != nb {
				return false
			}
			continue
		}
		compared++
		if math.Abs(va-vb) > 1e-7*math.Max(1, math.Abs(vb)) {
			return false
		}
	}
	return compared > 0
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// inline wraps LaTeX in inline math delimiters.
func inline(latex string) string { return `\( ` + latex + ` \)` }

// distractorSet collects distinct wrong answers, refusing the correct
// answer and anything already collected.
type distractorSet struct {
	correct string
	seen    map[string]bool
	picked  []string
}

func newDistractorSet(correct string) *distractorSet {
	return &distractorSet{correct: correct, seen: map[string]bool{correct: true}}
}

func (s *distractorSet) add(opt string) bool {
	if s.full() || opt == "" || s.seen[opt] {
		return false
	}
	s.seen[opt] = true
	s.picked = append(s.picked, opt)
	return true
}

func (s *distractorSet) full() bool { return len(s.picked) >= numDistractors }

// padNumeric fills any shortfall with small integers. Used only when a
// candidate list is exhausted.
func (s *distractorSet) padNumeric() {
	for k := 2; !s.full(); k++ {
		s.add(strconv.Itoa(k))
	}
}

// sampleFrom adds candidates in random order without replacement.
func (s *distractorSet) sampleFrom(rng *lockedRand, candidates []string) {
	for _, c := range shuffled(rng, candidates) {
		if s.full() {
			return
		}
		s.add(c)
	}
}

// options shuffles the correct answer in among the distractors.
func (s *distractorSet) options(rng *lockedRand) []string {
	opts := append([]string{s.correct}, s.picked...)
	return shuffled(rng, opts)
}
