// Package personalize biases quizzes toward a user's weakest topic.
package personalize

import (
	"context"
	"fmt"

	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/store"
)

const (
	// NeedsWorkThreshold is the average score (percent) below which a
	// topic needs work.
	NeedsWorkThreshold = 75.0

	// MinAttempts is how many results a topic needs before it can be
	// the weak topic.
	MinAttempts = 2

	// DefaultTopic is the weak topic of a user with no qualifying history.
	DefaultTopic = questiongen.TopicDerivatives

	QuizSize       = 10
	focusQuestions = 7
	mixedQuestions = 3

	// MinViable is the size below which a filtered quiz is backfilled.
	MinViable = 8

	// MinFallback is the size below which the backfilled quiz is
	// replaced by the minimal set.
	MinFallback = 5
)

var topicNames = map[questiongen.Topic]string{
	questiongen.TopicDerivatives:    "Derivatives",
	questiongen.TopicIntegrals:      "Integrals",
	questiongen.TopicLimits:         "Limits",
	questiongen.TopicCriticalPoints: "Critical Points",
	questiongen.TopicGeneral:        "Mixed",
}

// TopicName returns the display name of t, or t itself if unknown.
func TopicName(t questiongen.Topic) string {
	if n, ok := topicNames[t]; ok {
		return n
	}
	return string(t)
}

// StatsSource reads per-topic aggregates. store.ResultRepo satisfies it.
type StatsSource interface {
	WeakestTopic(ctx context.Context, userID int64, minAttempts int) (*store.TopicStats, error)
}

// QuestionSource generates questions. *questiongen.Engine satisfies it.
type QuestionSource interface {
	Generate(ctx context.Context, t questiongen.Topic, d questiongen.Difficulty, count int) ([]questiongen.Question, error)
	GenerateMixed(ctx context.Context, count int) ([]questiongen.Question, error)
	Shuffle(qs []questiongen.Question) []questiongen.Question
}

// DuplicateFilter drops questions already served. *dedup.Filter
// satisfies it.
type DuplicateFilter interface {
	Filter(ctx context.Context, qs []questiongen.Question, userID int64) []questiongen.Question
}

// WeakTopic summarizes the user's weakest topic.
type WeakTopic struct {
	Topic     questiongen.Topic `json:"topic"`
	AvgScore  float64           `json:"avg_score"`
	Attempts  int               `json:"attempts"`
	NeedsWork bool              `json:"needs_work"`
}

// Quiz is a generated quiz with the reason it was built that way.
type Quiz struct {
	Questions   []questiongen.Question `json:"questions"`
	Explanation string                 `json:"explanation"`
	FocusTopic  questiongen.Topic      `json:"focus_topic"`
	QuizType    string                 `json:"quiz_type"`
}

// Analysis is the user-facing summary of the weak topic.
type Analysis struct {
	WeakTopic        questiongen.Topic `json:"weak_topic"`
	WeakTopicName    string            `json:"weak_topic_name"`
	AvgScore         float64           `json:"avg_score"`
	Attempts         int               `json:"attempts"`
	NeedsImprovement bool              `json:"needs_improvement"`
	Recommendation   string            `json:"recommendation"`
}

// Service builds personalized quizzes.
type Service struct {
	stats  StatsSource
	gen    QuestionSource
	filter DuplicateFilter
	log    *logging.Logger
}

func New(stats StatsSource, gen QuestionSource, filter DuplicateFilter, log *logging.Logger) *Service {
	return &Service{
		stats:  stats,
		gen:    gen,
		filter: filter,
		log:    logging.OrNop(log).With("component", "personalize"),
	}
}

func defaultWeakTopic() WeakTopic {
	return WeakTopic{Topic: DefaultTopic, NeedsWork: true}
}

// WeakTopic returns the topic with the lowest average among those with
// at least MinAttempts results. Stored spellings such as
// "critical-points" map to their canonical topic. Without a qualifying
// known topic, or when the store fails, it returns DefaultTopic marked
// as needing work.
func (s *Service) WeakTopic(ctx context.Context, userID int64) WeakTopic {
	ts, err := s.stats.WeakestTopic(ctx, userID, MinAttempts)
	if err != nil {
		s.log.Warn("weak topic lookup failed, using default", "user_id", userID, "error", err)
		return defaultWeakTopic()
	}
	if ts == nil {
		return defaultWeakTopic()
	}
	topic, err := questiongen.ParseTopic(ts.Topic)
	if err != nil {
		s.log.Warn("stored topic is unknown, using default", "user_id", userID, "topic", ts.Topic)
		return defaultWeakTopic()
	}
	return WeakTopic{
		Topic:     topic,
		AvgScore:  ts.AvgScore,
		Attempts:  ts.Attempts,
		NeedsWork: ts.AvgScore < NeedsWorkThreshold,
	}
}

// Analysis describes the weak topic with a recommendation.
func (s *Service) Analysis(ctx context.Context, userID int64) Analysis {
	w := s.WeakTopic(ctx, userID)
	a := Analysis{
		WeakTopic:        w.Topic,
		WeakTopicName:    TopicName(w.Topic),
		AvgScore:         w.AvgScore,
		Attempts:         w.Attempts,
		NeedsImprovement: w.NeedsWork,
		Recommendation:   "You're doing well! Keep it up.",
	}
	if w.NeedsWork {
		a.Recommendation = fmt.Sprintf("Focus on %s.", TopicName(w.Topic))
	}
	return a
}

// SmartQuiz builds a 10-question quiz: 7 from the weak topic and 3 mixed
// when the topic needs work, otherwise 10 mixed.
func (s *Service) SmartQuiz(ctx context.Context, userID int64) (*Quiz, error) {
	w := s.WeakTopic(ctx, userID)
	quiz := &Quiz{FocusTopic: w.Topic, QuizType: "personalized"}

	var qs []questiongen.Question
	if w.NeedsWork {
		focus, err := s.topicQuestions(ctx, w.Topic, focusQuestions)
		if err != nil {
			return nil, err
		}
		other, err := s.mixed(ctx, mixedQuestions)
		if err != nil {
			return nil, err
		}
		qs = append(focus, other...)
		quiz.Explanation = fmt.Sprintf("This quiz focuses on %s, the topic that needs the most work (current score: %.1f%%).",
			TopicName(w.Topic), w.AvgScore)
	} else {
		mixed, err := s.mixed(ctx, QuizSize)
		if err != nil {
			return nil, err
		}
		qs = mixed
		quiz.Explanation = "You're doing well! Here is a challenging mixed quiz across all topics."
	}

	qs = s.gen.Shuffle(qs)
	if len(qs) > QuizSize {
		qs = qs[:QuizSize]
	}
	quiz.Questions = questiongen.Renumber(qs)
	return quiz, nil
}

// PersonalizedQuiz is SmartQuiz with duplicate filtering applied. A quiz
// that filters below MinViable is topped up with mixed questions; if it
// is still below MinFallback it is replaced by easy derivatives.
func (s *Service) PersonalizedQuiz(ctx context.Context, userID int64) (*Quiz, error) {
	quiz, err := s.SmartQuiz(ctx, userID)
	if err != nil {
		s.log.Warn("smart quiz failed, using a mixed quiz", "user_id", userID, "error", err)
		qs, mixErr := s.gen.GenerateMixed(ctx, QuizSize)
		if mixErr != nil {
			return nil, fmt.Errorf("personalized quiz: %w", mixErr)
		}
		quiz = &Quiz{
			Questions:   qs,
			Explanation: "A general mixed quiz.",
			FocusTopic:  questiongen.TopicGeneral,
			QuizType:    "general",
		}
	}

	qs := s.filter.Filter(ctx, quiz.Questions, userID)
	if len(qs) < MinViable {
		extra, err := s.gen.GenerateMixed(ctx, QuizSize-len(qs))
		if err != nil {
			s.log.Warn("backfill failed", "user_id", userID, "error", err)
		} else {
			qs = append(qs, s.filter.Filter(ctx, extra, userID)...)
		}
	}
	if len(qs) > QuizSize {
		qs = qs[:QuizSize]
	}
	if len(qs) < MinFallback {
		s.log.Warn("too few questions after filtering, using the minimal set", "user_id", userID, "count", len(qs))
		minimal, err := s.gen.Generate(ctx, questiongen.TopicDerivatives, questiongen.Easy, QuizSize)
		if err != nil {
			return nil, fmt.Errorf("minimal quiz: %w", err)
		}
		qs = minimal
	}
	quiz.Questions = questiongen.Renumber(qs)
	return quiz, nil
}

// topicQuestions falls back to a mixed batch for topics without a
// generator, such as "general".
func (s *Service) topicQuestions(ctx context.Context, t questiongen.Topic, n int) ([]questiongen.Question, error) {
	qs, err := s.gen.Generate(ctx, t, questiongen.Mixed, n)
	if err == nil {
		return qs, nil
	}
	s.log.Debug("topic generation failed, using mixed", "topic", t, "error", err)
	return s.mixed(ctx, n)
}

// mixed falls back to derivatives when the aggregator fails.
func (s *Service) mixed(ctx context.Context, n int) ([]questiongen.Question, error) {
	qs, err := s.gen.GenerateMixed(ctx, n)
	if err == nil {
		return qs, nil
	}
	s.log.Warn("mixed generation failed, using derivatives", "error", err)
	return s.gen.Generate(ctx, questiongen.TopicDerivatives, questiongen.Mixed, n)
}
