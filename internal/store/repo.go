package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned when a username or email is taken.
	ErrDuplicate = errors.New("store: already exists")
)

// User is a registered account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Active       bool       `json:"-"`
}

// NewUser holds the fields needed to register a user.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
}

// UserRepo manages accounts.
type UserRepo interface {
	// Create inserts the user and its empty aggregate row. Returns
	// ErrDuplicate if the username or email is taken.
	Create(ctx context.Context, u NewUser) (*User, error)

	// ByUsername returns an active user, or ErrNotFound.
	ByUsername(ctx context.Context, username string) (*User, error)

	// ByID returns a user, or ErrNotFound.
	ByID(ctx context.Context, id int64) (*User, error)

	// TouchLogin records a successful login.
	TouchLogin(ctx context.Context, id int64) error

	// List returns every user ordered by id.
	List(ctx context.Context) ([]User, error)
}

// SessionRepo manages login session tokens.
type SessionRepo interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// UserByToken resolves an active, unexpired token to its user, or
	// returns ErrNotFound.
	UserByToken(ctx context.Context, token string) (*User, error)

	// Deactivate ends a session. Unknown tokens are not an error.
	Deactivate(ctx context.Context, token string) error

	// PurgeExpired deletes expired or deactivated sessions.
	PurgeExpired(ctx context.Context) (int64, error)
}

// ResultInput is a scored quiz to record.
type ResultInput struct {
	Topic      string
	Score      int
	Total      int
	Difficulty string         // defaults to details["difficulty"], then "mixed"
	TimeSpent  int            // seconds; 0 when unknown
	Details    map[string]any // stored as JSON
}

// Result is one recorded quiz.
type Result struct {
	ID         int64     `json:"id"`
	Topic      string    `json:"topic"`
	Score      int       `json:"score"`
	Total      int       `json:"total_questions"`
	Percentage float64   `json:"percentage"`
	Difficulty string    `json:"difficulty"`
	TakenAt    time.Time `json:"date"`
	TimeSpent  int       `json:"time_spent"`
}

// TopicStats aggregates a user's results for one topic. Scores are
// percentages rounded to one decimal.
type TopicStats struct {
	Topic          string  `json:"topic"`
	Attempts       int     `json:"attempts"`
	AvgScore       float64 `json:"avg_score"`
	BestScore      float64 `json:"best_score"`
	WorstScore     float64 `json:"worst_score"`
	TotalQuestions int     `json:"total_questions"`
	TotalCorrect   int     `json:"total_correct"`
}

// GeneralStats is the running aggregate over all of a user's quizzes.
type GeneralStats struct {
	TotalQuizzes   int     `json:"total_quizzes"`
	TotalQuestions int     `json:"total_questions"`
	TotalCorrect   int     `json:"total_correct"`
	AverageScore   float64 `json:"average_score"`
}

// DayProgress is the average score on one calendar day (UTC).
type DayProgress struct {
	Date     string  `json:"date"`
	AvgScore float64 `json:"avg_score"`
	Quizzes  int     `json:"quizzes_taken"`
}

// ResultRepo records quiz results and answers aggregate queries.
type ResultRepo interface {
	// Save records the result and updates the user's running aggregate
	// in one transaction. Returns the new result id.
	Save(ctx context.Context, userID int64, in ResultInput) (int64, error)

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]Result, error)

	// ByTopic returns per-topic aggregates, best average first.
	ByTopic(ctx context.Context, userID int64) ([]TopicStats, error)

	// WeakestTopic returns the topic with the lowest average among those
	// with at least minAttempts results, or nil if none qualifies.
	WeakestTopic(ctx context.Context, userID int64, minAttempts int) (*TopicStats, error)

	// General returns the running aggregate; zero values for a user with
	// no results.
	General(ctx context.Context, userID int64) (GeneralStats, error)

	// Progress returns daily averages since the given time, oldest first.
	Progress(ctx context.Context, userID int64, since time.Time) ([]DayProgress, error)

	// Reset deletes results and aggregates for userID, or for everyone
	// when userID is 0. Returns the number of results deleted.
	Reset(ctx context.Context, userID int64) (int64, error)
}
