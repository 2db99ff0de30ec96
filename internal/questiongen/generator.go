package questiongen

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/calcmaster/internal/logging"
)

var (
	ErrUnknownTopic      = errors.New("questiongen: unknown topic")
	ErrUnknownDifficulty = errors.New("questiongen: unknown difficulty")
)

// Generator produces questions for one topic.
type Generator interface {
	Topic() Topic

	// Generate returns exactly count questions drawn from the pool for d.
	// Every returned question has passed the configured validators.
	Generate(ctx context.Context, count int, d Difficulty) ([]Question, error)
}

// builder turns one pool entry into a question. The second result names
// the fallback taken ("budget", "evaluator"), or is empty.
type builder interface {
	build(ctx context.Context, e PoolEntry) (Question, string)
}

type topicGenerator struct {
	topic Topic
	pool  *Pool
	rng   *lockedRand
	b     builder
	cfg   Config
	log   *logging.Logger
	obs   Observer
}

func (g *topicGenerator) Topic() Topic { return g.topic }

func (g *topicGenerator) Generate(ctx context.Context, count int, d Difficulty) ([]Question, error) {
	if _, err := ParseDifficulty(string(d)); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	if count < 0 {
		return nil, fmt.Errorf("questiongen: negative count %d", count)
	}
	entries := g.pool.Entries(d)
	if len(entries) == 0 {
		return nil, fmt.Errorf("questiongen: empty %s pool for %s", d, g.topic)
	}

	evalCtx := ctx
	if g.cfg.EvalBudget > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, g.cfg.EvalBudget)
		defer cancel()
	}

	out := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := g.one(evalCtx, entries)
		if err != nil {
			return nil, err
		}
		q.ID = i + 1
		out = append(out, q)
	}
	return out, nil
}

// one draws entries until a question passes validation, giving up early
// on a failure that is not retryable.
func (g *topicGenerator) one(ctx context.Context, entries []PoolEntry) (Question, error) {
	attempts := max(g.cfg.MaxAttempts, 1)
	var lastErr *ValidationError
	for range attempts {
		e := pick(g.rng, entries)
		q, reason := g.b.build(ctx, e)
		q.Topic = g.topic
		if q.Difficulty == "" {
			q.Difficulty = e.Tier
		}
		if reason != "" {
			g.log.Debug("evaluator fallback", "topic", g.topic, "expr", e.Expr.String(), "reason", reason)
			g.obs.Fallback(g.topic, reason)
		}
		if verr := runValidators(g.cfg.Validators, &q); verr != nil {
			g.log.Warn("generated question rejected", "topic", g.topic, "expr", e.Expr.String(), "error", verr)
			lastErr = verr
			if !verr.Retryable {
				break
			}
			continue
		}
		g.obs.QuestionGenerated(g.topic, q.Difficulty)
		return q, nil
	}
	return Question{}, fmt.Errorf("questiongen: %s question failed validation: %w", g.topic, lastErr)
}
