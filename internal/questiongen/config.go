package questiongen

import (
	"time"

	"github.com/abhisek/calcmaster/internal/logging"
)

// Config controls the behavior of the Engine.
type Config struct {
	// Validators run in order on every generated question. A question
	// that fails is replaced by a fresh draw, up to MaxAttempts times.
	Validators []Validator

	// MaxAttempts bounds the redraws for a single question slot.
	MaxAttempts int

	// EvalBudget caps the wall time one Generate call may spend in the
	// evaluator. Once spent, the remaining questions use the pool's
	// expected answers (or the fixed integral question).
	EvalBudget time.Duration

	// Seed makes generation reproducible when non-zero.
	Seed uint64

	// Logger receives fallback and validation warnings. Nil discards.
	Logger *logging.Logger

	// Observer is notified about every generated question. Nil ignores.
	Observer Observer
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerValidator{},
		},
		MaxAttempts: 3,
		EvalBudget:  2 * time.Second,
	}
}

// Observer receives generation events, typically for metrics.
type Observer interface {
	QuestionGenerated(topic Topic, difficulty Difficulty)
	Fallback(topic Topic, reason string)
}

type nopObserver struct{}

func (nopObserver) QuestionGenerated(Topic, Difficulty) {}
func (nopObserver) Fallback(Topic, string)              {}
