// Package quiz assembles topic and mixed quizzes from the engine and the
// per-user duplicate filter. The HTTP server and the terminal UI both
// serve quizzes through a Builder.
package quiz

import (
	"context"

	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/questiongen"
)

const (
	TopicBatch     = 15
	TopicBackfill  = 20
	TopicSize      = 10
	TopicMinUnique = 8

	GeneralBatch = 20
	GeneralSize  = 15
)

// Generator produces questions. *questiongen.Engine satisfies it.
type Generator interface {
	Generate(ctx context.Context, t questiongen.Topic, d questiongen.Difficulty, count int) ([]questiongen.Question, error)
	GenerateMixed(ctx context.Context, count int) ([]questiongen.Question, error)
}

// ServedSet remembers which questions a user has seen. *dedup.Filter
// satisfies it.
type ServedSet interface {
	Filter(ctx context.Context, qs []questiongen.Question, userID int64) []questiongen.Question
	Clear(ctx context.Context, userID int64) error
}

type Builder struct {
	gen    Generator
	served ServedSet
	log    *logging.Logger
}

func NewBuilder(gen Generator, served ServedSet, log *logging.Logger) *Builder {
	return &Builder{
		gen:    gen,
		served: served,
		log:    logging.OrNop(log).With("component", "quiz"),
	}
}

// Topic starts a fresh round for userID and returns up to TopicSize
// unique questions on t. With backfill set, a short batch is topped up
// from a second draw.
func (b *Builder) Topic(ctx context.Context, userID int64, t questiongen.Topic, d questiongen.Difficulty, backfill bool) ([]questiongen.Question, error) {
	b.reset(ctx, userID)

	qs, err := b.gen.Generate(ctx, t, d, TopicBatch)
	if err != nil {
		return nil, err
	}
	unique := b.served.Filter(ctx, qs, userID)
	if backfill && len(unique) < TopicMinUnique {
		more, err := b.gen.Generate(ctx, t, d, TopicBackfill)
		if err != nil {
			b.log.Warn("backfill failed", "topic", t, "error", err)
		} else {
			unique = append(unique, b.served.Filter(ctx, more, userID)...)
		}
	}
	return questiongen.Renumber(truncate(unique, TopicSize)), nil
}

// General starts a fresh round and returns up to GeneralSize unique
// questions across all topics.
func (b *Builder) General(ctx context.Context, userID int64) ([]questiongen.Question, error) {
	b.reset(ctx, userID)

	qs, err := b.gen.GenerateMixed(ctx, GeneralBatch)
	if err != nil {
		return nil, err
	}
	unique := b.served.Filter(ctx, qs, userID)
	return questiongen.Renumber(truncate(unique, GeneralSize)), nil
}

func (b *Builder) reset(ctx context.Context, userID int64) {
	if err := b.served.Clear(ctx, userID); err != nil {
		b.log.Warn("clear served questions failed", "user_id", userID, "error", err)
	}
}

func truncate(qs []questiongen.Question, n int) []questiongen.Question {
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}
