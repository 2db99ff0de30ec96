package questiongen

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.EvalBudget = 0
	return New(cfg)
}

func checkQuestion(t *testing.T, q Question) {
	t.Helper()
	if len(q.Options) != 4 {
		t.Fatalf("%q: %d options, want 4", q.Text, len(q.Options))
	}
	seen := map[string]bool{}
	for _, o := range q.Options {
		if o == "" {
			t.Errorf("%q: empty option", q.Text)
		}
		if seen[o] {
			t.Errorf("%q: duplicate option %q", q.Text, o)
		}
		seen[o] = true
	}
	if !seen[q.Correct] {
		t.Errorf("%q: correct %q not among %q", q.Text, q.Correct, q.Options)
	}
	if q.Text == "" || q.Explanation == "" {
		t.Errorf("question missing text or explanation: %+v", q)
	}
}

func TestGenerate_Invariants(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	for _, topic := range Topics {
		for _, d := range []Difficulty{Easy, Medium, Hard, Mixed} {
			t.Run(string(topic)+"/"+string(d), func(t *testing.T) {
				qs, err := e.Generate(ctx, topic, d, 25)
				if err != nil {
					t.Fatalf("Generate: %v", err)
				}
				if len(qs) != 25 {
					t.Fatalf("got %d questions, want 25", len(qs))
				}
				for i, q := range qs {
					if q.ID != i+1 {
						t.Errorf("question %d has ID %d", i, q.ID)
					}
					if q.Topic != topic {
						t.Errorf("topic = %q, want %q", q.Topic, topic)
					}
					checkQuestion(t, q)
				}
			})
		}
	}
}

func TestGenerate_DifficultyLabel(t *testing.T) {
	e := newTestEngine(t)
	qs, err := e.Generate(context.Background(), TopicDerivatives, Hard, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, q := range qs {
		if !strings.HasSuffix(q.Text, "(Hard 🔴)") {
			t.Errorf("text %q missing hard label", q.Text)
		}
		if q.Difficulty != Hard {
			t.Errorf("difficulty = %q, want hard", q.Difficulty)
		}
	}
}

func TestGenerate_Zero(t *testing.T) {
	e := newTestEngine(t)
	qs, err := e.Generate(context.Background(), TopicLimits, Easy, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("got %d questions, want 0", len(qs))
	}
}

func TestGenerate_Errors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Generate(ctx, "geometry", Easy, 1); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("unknown topic: err = %v", err)
	}
	if _, err := e.Generate(ctx, TopicGeneral, Easy, 1); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("general topic: err = %v", err)
	}
	if _, err := e.Generate(ctx, TopicLimits, "brutal", 1); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("unknown difficulty: err = %v", err)
	}
	if _, err := e.Generate(ctx, TopicLimits, Easy, -1); err == nil {
		t.Error("negative count: expected error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.Generate(cancelled, TopicLimits, Easy, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx: err = %v", err)
	}
}

func TestGenerateMixed(t *testing.T) {
	e := newTestEngine(t)
	for _, n := range []int{1, 10, 15, 20, 31} {
		qs, err := e.GenerateMixed(context.Background(), n)
		if err != nil {
			t.Fatalf("GenerateMixed(%d): %v", n, err)
		}
		if len(qs) != n {
			t.Fatalf("GenerateMixed(%d) returned %d", n, len(qs))
		}
		for i, q := range qs {
			if q.ID != i+1 {
				t.Errorf("GenerateMixed(%d): question %d has ID %d", n, i, q.ID)
			}
			checkQuestion(t, q)
		}
	}
}

func TestGenerateMixed_Split(t *testing.T) {
	e := newTestEngine(t)
	qs, err := e.GenerateMixed(context.Background(), 15)
	if err != nil {
		t.Fatalf("GenerateMixed: %v", err)
	}
	counts := map[Topic]int{}
	for _, q := range qs {
		counts[q.Topic]++
	}
	want := map[Topic]int{TopicDerivatives: 4, TopicIntegrals: 4, TopicLimits: 4, TopicCriticalPoints: 3}
	for topic, n := range want {
		if counts[topic] != n {
			t.Errorf("%s: got %d questions, want %d", topic, counts[topic], n)
		}
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.GenerateMixed(context.Background(), 10); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

type countingObserver struct {
	mu        sync.Mutex
	generated int
	fallbacks map[string]int
}

func (o *countingObserver) QuestionGenerated(Topic, Difficulty) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generated++
}

func (o *countingObserver) Fallback(_ Topic, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks[reason]++
}

func TestGenerate_Observer(t *testing.T) {
	obs := &countingObserver{fallbacks: map[string]int{}}
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Observer = obs
	e := New(cfg)

	if _, err := e.Generate(context.Background(), TopicDerivatives, Easy, 6); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if obs.generated != 6 {
		t.Errorf("observer saw %d questions, want 6", obs.generated)
	}
	if len(obs.fallbacks) != 0 {
		t.Errorf("derivatives never fall back, got %v", obs.fallbacks)
	}
}

func TestDerivative_PowerRule(t *testing.T) {
	b := &derivativeBuilder{rng: newLockedRand(1, 1)}
	q, reason := b.build(context.Background(), PoolEntry{Expr: symbolic.MustParse("x^2"), Method: "power", Tier: Easy})
	if reason != "" {
		t.Errorf("unexpected fallback %q", reason)
	}
	if q.Correct != `\( 2 x \)` {
		t.Errorf("correct = %q", q.Correct)
	}
	if q.Text != `What is the derivative of \( f(x) = x^{2} \)? (Easy 🟢)` {
		t.Errorf("text = %q", q.Text)
	}
	for _, want := range []string{`\( 2 \)`, `\( x^{2} \)`, `\( \frac{x^{3}}{3} \)`} {
		if !slices.Contains(q.Options, want) {
			t.Errorf("options %q missing %q", q.Options, want)
		}
	}
	checkQuestion(t, q)
}

func TestDerivative_SelfDerivativePadsFromBackups(t *testing.T) {
	b := &derivativeBuilder{rng: newLockedRand(1, 1)}
	q, _ := b.build(context.Background(), PoolEntry{Expr: symbolic.MustParse("exp(x)"), Method: "exp", Tier: Easy})
	checkQuestion(t, q)
	for _, o := range q.Options {
		if o != q.Correct && strings.Contains(o, "e^{x}") {
			t.Errorf("distractor %q equals the correct derivative", o)
		}
	}
}

func TestIntegral_Antiderivative(t *testing.T) {
	f := symbolic.MustParse("x^2")
	anti, err := symbolic.Integrate(f)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if got := anti.Diff().String(); got != "x^2" {
		t.Errorf("d/dx ∫x^2 = %s", got)
	}
	if got := f.Diff().String(); got != "2*x" {
		t.Errorf("d/dx x^2 = %s", got)
	}

	b := &integralBuilder{rng: newLockedRand(1, 1)}
	q, reason := b.build(context.Background(), slip("x^2", "power", "x^3"))
	if reason != "" {
		t.Errorf("unexpected fallback %q", reason)
	}
	if q.Correct != `\( \frac{x^{3}}{3} + C \)` {
		t.Errorf("correct = %q", q.Correct)
	}
	if !slices.Contains(q.Options, `\( x^{3} + C \)`) {
		t.Errorf("options %q missing the slip", q.Options)
	}
	checkQuestion(t, q)
}

func TestIntegral_Distractors_AreWrong(t *testing.T) {
	b := &integralBuilder{rng: newLockedRand(3, 3)}
	for _, e := range IntegralsPool().Entries(Mixed) {
		q, _ := b.build(context.Background(), e)
		checkQuestion(t, q)
		anti, err := symbolic.Integrate(e.Expr)
		if err != nil {
			t.Fatalf("Integrate(%s): %v", e.Expr, err)
		}
		if q.Correct != withC(anti) {
			t.Errorf("%s: correct = %q", e.Expr, q.Correct)
		}
	}
}

func TestIntegral_FallbackOnUnsupported(t *testing.T) {
	b := &integralBuilder{rng: newLockedRand(1, 1)}
	q, reason := b.build(context.Background(), fn("sin(x^2)", "usub"))
	if reason != "evaluator" {
		t.Errorf("reason = %q, want evaluator", reason)
	}
	if q.Correct != `\( \frac{x^{2}}{2} + C \)` {
		t.Errorf("fallback correct = %q", q.Correct)
	}
	if !strings.Contains(q.Text, `\int x \, dx`) {
		t.Errorf("fallback text = %q", q.Text)
	}
	checkQuestion(t, q)
}

func TestBudgetExhausted_UsesFallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ib := &integralBuilder{rng: newLockedRand(1, 1)}
	q, reason := ib.build(ctx, fn("x^3", "power"))
	if reason != "budget" || q.Correct != `\( \frac{x^{2}}{2} + C \)` {
		t.Errorf("integral: reason %q correct %q", reason, q.Correct)
	}

	lb := &limitBuilder{rng: newLockedRand(1, 1)}
	q, reason = lb.build(ctx, lim("x^2", at(3), "9", "direct"))
	if reason != "budget" || q.Correct != "9" {
		t.Errorf("limit: reason %q correct %q", reason, q.Correct)
	}
}

func TestLimit_PoolAnswersMatchExpected(t *testing.T) {
	b := &limitBuilder{rng: newLockedRand(1, 1)}
	for _, e := range LimitsPool().Entries(Mixed) {
		q, reason := b.build(context.Background(), e)
		checkQuestion(t, q)
		if q.Correct != e.Expected {
			t.Errorf("lim %s at %s = %q (fallback %q), want %q", e.Expr, e.Point, q.Correct, reason, e.Expected)
		}
	}
}

func TestLimit_UndefinedFallsBack(t *testing.T) {
	b := &limitBuilder{rng: newLockedRand(1, 1)}
	q, reason := b.build(context.Background(), lim("1/x", at(0), "±∞", "one-sided"))
	if reason != "evaluator" {
		t.Errorf("reason = %q, want evaluator", reason)
	}
	if q.Correct != "±∞" {
		t.Errorf("correct = %q", q.Correct)
	}
	checkQuestion(t, q)
}

func TestCriticalPoints_Parabola(t *testing.T) {
	b := &criticalPointBuilder{rng: newLockedRand(1, 1)}
	for range 20 {
		q, _ := b.build(context.Background(), crit("x^2", "x = 0", "parabola"))
		if q.Correct != "x = 0" {
			t.Fatalf("correct = %q, want %q", q.Correct, "x = 0")
		}
		checkQuestion(t, q)
	}
}

func TestCriticalPoints_PoolAnswersMatchExpected(t *testing.T) {
	b := &criticalPointBuilder{rng: newLockedRand(1, 1)}
	for _, e := range CriticalPointsPool().Entries(Mixed) {
		q, _ := b.build(context.Background(), e)
		checkQuestion(t, q)
		if q.Correct != e.Expected {
			t.Errorf("critical points of %s = %q, want %q", e.Expr, q.Correct, e.Expected)
		}
	}
}

func TestCriticalPoints_Fallbacks(t *testing.T) {
	b := &criticalPointBuilder{rng: newLockedRand(1, 1)}

	q, reason := b.build(context.Background(), crit("x^3 + 3x", "x = 0", "polynomial"))
	if q.Correct != NoCriticalPoints || reason != "" {
		t.Errorf("no real roots: correct %q reason %q", q.Correct, reason)
	}
	checkQuestion(t, q)

	q, reason = b.build(context.Background(), crit("sin(x) + cos(x)", "x = π/4 + πn", "trigonometric"))
	if q.Correct != "x = π/4 + πn" || reason != "evaluator" {
		t.Errorf("unsolvable: correct %q reason %q", q.Correct, reason)
	}
	checkQuestion(t, q)
}

func TestParseDifficulty(t *testing.T) {
	for _, s := range []string{"easy", "Medium", " hard ", "mixed"} {
		if _, err := ParseDifficulty(s); err != nil {
			t.Errorf("ParseDifficulty(%q): %v", s, err)
		}
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestParseTopic(t *testing.T) {
	tests := map[string]Topic{
		"derivatives":     TopicDerivatives,
		"critical-points": TopicCriticalPoints,
		"critical_points": TopicCriticalPoints,
		"Integrals":       TopicIntegrals,
	}
	for in, want := range tests {
		got, err := ParseTopic(in)
		if err != nil || got != want {
			t.Errorf("ParseTopic(%q) = %q, %v", in, got, err)
		}
	}
}
