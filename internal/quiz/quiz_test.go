package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/calcmaster/internal/dedup"
	"github.com/abhisek/calcmaster/internal/questiongen"
)

func newBuilder() *Builder {
	cfg := questiongen.DefaultConfig()
	cfg.Seed = 7
	filter := dedup.NewFilter(dedup.NewMemoryStore(dedup.MemoryOptions{}), nil, nil)
	return NewBuilder(questiongen.New(cfg), filter, nil)
}

func texts(qs []questiongen.Question) map[string]bool {
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		seen[q.Text] = true
	}
	return seen
}

func TestTopic(t *testing.T) {
	b := newBuilder()
	qs, err := b.Topic(context.Background(), 1, questiongen.TopicLimits, questiongen.Medium, false)
	require.NoError(t, err)
	require.NotEmpty(t, qs)
	assert.LessOrEqual(t, len(qs), TopicSize)
	assert.Len(t, texts(qs), len(qs), "questions repeat within a quiz")
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, questiongen.TopicLimits, q.Topic)
	}
}

func TestTopic_BackfillReachesMinimum(t *testing.T) {
	b := newBuilder()
	qs, err := b.Topic(context.Background(), 1, questiongen.TopicDerivatives, questiongen.Mixed, true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(qs), TopicMinUnique)
}

func TestTopic_StartsFreshRound(t *testing.T) {
	b := newBuilder()
	ctx := context.Background()
	for range 5 {
		qs, err := b.Topic(ctx, 1, questiongen.TopicCriticalPoints, questiongen.Easy, false)
		require.NoError(t, err)
		assert.NotEmpty(t, qs, "a new topic quiz must not be starved by earlier rounds")
	}
}

func TestGeneral(t *testing.T) {
	b := newBuilder()
	qs, err := b.General(context.Background(), 3)
	require.NoError(t, err)
	assert.NotEmpty(t, qs)
	assert.LessOrEqual(t, len(qs), GeneralSize)
	assert.Len(t, texts(qs), len(qs))
}

func TestTopic_UnknownTopic(t *testing.T) {
	b := newBuilder()
	_, err := b.Topic(context.Background(), 1, questiongen.TopicGeneral, questiongen.Easy, false)
	assert.Error(t, err)
}
