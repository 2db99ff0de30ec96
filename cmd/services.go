package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/config"
	"github.com/abhisek/calcmaster/internal/dedup"
	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/metrics"
	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/quiz"
	"github.com/abhisek/calcmaster/internal/store"
)

// services is the generation stack shared by the server and the TUI.
type services struct {
	engine       *questiongen.Engine
	filter       *dedup.Filter
	quizzes      *quiz.Builder
	personalizer *personalize.Service

	closeDedup func() error
}

func (s *services) Close() error {
	return s.closeDedup()
}

func newEngine(cfg config.GeneratorConfig, log *logging.Logger, m *metrics.Metrics) *questiongen.Engine {
	qc := questiongen.DefaultConfig()
	qc.MaxAttempts = cfg.MaxAttempts
	qc.EvalBudget = cfg.EvalBudget
	qc.Seed = cfg.Seed
	qc.Logger = log
	if m != nil {
		qc.Observer = m
	}
	return questiongen.New(qc)
}

// newDedupStore uses Redis when an address is configured and the
// in-process store otherwise.
func newDedupStore(ctx context.Context, cfg config.Config, log *logging.Logger) (dedup.Store, error) {
	if cfg.Redis.Addr == "" {
		return dedup.NewMemoryStore(dedup.MemoryOptions{
			Capacity: cfg.Dedup.Capacity,
			IdleTTL:  cfg.Dedup.IdleTTL,
		}), nil
	}
	rs, err := dedup.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.TTL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("using redis for served questions", "addr", cfg.Redis.Addr)
	return rs, nil
}

// newServices wires the generation stack. m may be nil.
func newServices(ctx context.Context, cfg config.Config, st *store.Store, log *logging.Logger, m *metrics.Metrics) (*services, error) {
	ds, err := newDedupStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg.Generator, log, m)
	var obs dedup.Observer
	if m != nil {
		obs = m
	}
	filter := dedup.NewFilter(ds, log, obs)

	return &services{
		engine:       engine,
		filter:       filter,
		quizzes:      quiz.NewBuilder(engine, filter, log),
		personalizer: personalize.New(st.ResultRepo(), engine, filter, log),
		closeDedup:   ds.Close,
	}, nil
}
