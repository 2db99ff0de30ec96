package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/logging"
)

// mixedSplit is how many questions each topic contributes to a mixed
// batch of mixedBatch questions.
var mixedSplit = []struct {
	topic Topic
	n     int
}{
	{TopicDerivatives, 4},
	{TopicIntegrals, 4},
	{TopicLimits, 4},
	{TopicCriticalPoints, 3},
}

const mixedBatch = 15

// Engine owns one generator per topic and composes mixed batches.
// It is safe for concurrent use.
type Engine struct {
	generators map[Topic]Generator
	rng        *lockedRand
	log        *logging.Logger
}

// New builds an Engine with the four topic generators.
func New(cfg Config) *Engine {
	log := logging.OrNop(cfg.Logger).With("component", "questiongen")
	var obs Observer = nopObserver{}
	if cfg.Observer != nil {
		obs = cfg.Observer
	}

	e := &Engine{
		generators: make(map[Topic]Generator, len(Topics)),
		rng:        newLockedRand(cfg.Seed, 0),
		log:        log,
	}
	pools := map[Topic]*Pool{
		TopicDerivatives:    DerivativesPool(),
		TopicIntegrals:      IntegralsPool(),
		TopicLimits:         LimitsPool(),
		TopicCriticalPoints: CriticalPointsPool(),
	}
	for i, t := range Topics {
		rng := newLockedRand(cfg.Seed, uint64(i+1))
		var b builder
		switch t {
		case TopicDerivatives:
			b = &derivativeBuilder{rng: rng}
		case TopicIntegrals:
			b = &integralBuilder{rng: rng}
		case TopicLimits:
			b = &limitBuilder{rng: rng}
		case TopicCriticalPoints:
			b = &criticalPointBuilder{rng: rng}
		}
		e.generators[t] = &topicGenerator{
			topic: t,
			pool:  pools[t],
			rng:   rng,
			b:     b,
			cfg:   cfg,
			log:   log,
			obs:   obs,
		}
	}
	return e
}

// Generator returns the generator for t.
func (e *Engine) Generator(t Topic) (Generator, error) {
	g, ok := e.generators[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, t)
	}
	return g, nil
}

// Generate returns count questions for one topic.
func (e *Engine) Generate(ctx context.Context, t Topic, d Difficulty, count int) ([]Question, error) {
	g, err := e.Generator(t)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, count, d)
}

// GenerateMixed draws from every topic in the fixed 4/4/4/3 split,
// scaled up for batches larger than 15, then shuffles and truncates to
// count. IDs are renumbered from 1.
func (e *Engine) GenerateMixed(ctx context.Context, count int) ([]Question, error) {
	if count < 0 {
		return nil, fmt.Errorf("questiongen: negative count %d", count)
	}
	if count == 0 {
		return []Question{}, nil
	}
	scale := (count + mixedBatch - 1) / mixedBatch

	var all []Question
	for _, s := range mixedSplit {
		qs, err := e.Generate(ctx, s.topic, Mixed, s.n*scale)
		if err != nil {
			return nil, fmt.Errorf("mixed %s: %w", s.topic, err)
		}
		all = append(all, qs...)
	}
	all = shuffled(e.rng, all)
	if len(all) > count {
		all = all[:count]
	}
	return Renumber(all), nil
}

// Renumber assigns IDs 1..n in slice order.
func Renumber(qs []Question) []Question {
	for i := range qs {
		qs[i].ID = i + 1
	}
	return qs
}

// Shuffle returns qs in random order. The input is not modified.
func (e *Engine) Shuffle(qs []Question) []Question {
	return shuffled(e.rng, qs)
}
