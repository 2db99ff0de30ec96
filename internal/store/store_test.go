package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, username string) *User {
	t.Helper()
	u, err := s.UserRepo().Create(context.Background(), NewUser{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	u := createUser(t, s, "ada")
	assert.Equal(t, "ada", u.DisplayName, "display name defaults to username")

	got, err := repo.ByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.True(t, got.Active)
	assert.Nil(t, got.LastLogin)

	require.NoError(t, repo.TouchLogin(ctx, u.ID))
	got, err = repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	_, err = repo.ByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserDuplicate(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "ada")

	_, err := s.UserRepo().Create(context.Background(), NewUser{
		Username:     "ada",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

	_, err = s.UserRepo().Create(context.Background(), NewUser{
		Username:     "grace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
}

func TestUserList(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "ada")
	createUser(t, s, "grace")

	users, err := s.UserRepo().List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Username)
	assert.Equal(t, "grace", users[1].Username)
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()
	u := createUser(t, s, "ada")

	require.NoError(t, repo.Create(ctx, u.ID, "live", time.Now().Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, u.ID, "stale", time.Now().Add(-time.Hour)))

	got, err := repo.UserByToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.UserByToken(ctx, "stale")
	assert.True(t, errors.Is(err, ErrNotFound), "expired token: %v", err)

	_, err = repo.UserByToken(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.Deactivate(ctx, "live"))
	_, err = repo.UserByToken(ctx, "live")
	assert.True(t, errors.Is(err, ErrNotFound), "deactivated token: %v", err)

	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func saveResults(t *testing.T, s *Store, userID int64, topic string, scores ...int) {
	t.Helper()
	for _, score := range scores {
		_, err := s.ResultRepo().Save(context.Background(), userID, ResultInput{
			Topic: topic,
			Score: score,
			Total: 10,
		})
		require.NoError(t, err)
	}
}

func TestResultSaveUpdatesGeneralStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()
	u := createUser(t, s, "ada")

	gs, err := repo.General(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, GeneralStats{}, gs)

	id, err := repo.Save(ctx, u.ID, ResultInput{
		Topic:     "integrals",
		Score:     7,
		Total:     10,
		TimeSpent: 95,
		Details:   map[string]any{"difficulty": "hard"},
	})
	require.NoError(t, err)
	assert.Positive(t, id)
	saveResults(t, s, u.ID, "limits", 4)

	gs, err = repo.General(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, GeneralStats{TotalQuizzes: 2, TotalQuestions: 20, TotalCorrect: 11, AverageScore: 55}, gs)

	recent, err := repo.Recent(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "limits", recent[0].Topic)
	assert.Equal(t, "hard", recent[1].Difficulty)
	assert.Equal(t, 95, recent[1].TimeSpent)
	assert.Equal(t, "mixed", recent[0].Difficulty)
}

func TestResultSaveRejectsBadScore(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "ada")
	_, err := s.ResultRepo().Save(context.Background(), u.ID, ResultInput{Topic: "limits", Score: 11, Total: 10})
	assert.Error(t, err)
}

func TestByTopic(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "ada")
	saveResults(t, s, u.ID, "derivatives", 9, 8)
	saveResults(t, s, u.ID, "limits", 3)

	stats, err := s.ResultRepo().ByTopic(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, TopicStats{
		Topic: "derivatives", Attempts: 2, AvgScore: 85, BestScore: 90, WorstScore: 80,
		TotalQuestions: 20, TotalCorrect: 17,
	}, stats[0])
	assert.Equal(t, "limits", stats[1].Topic)
}

func TestWeakestTopic(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()
	u := createUser(t, s, "ada")

	weak, err := repo.WeakestTopic(ctx, u.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, weak, "no results yet")

	saveResults(t, s, u.ID, "integrals", 4, 4, 4, 4, 4)
	saveResults(t, s, u.ID, "limits", 1)
	saveResults(t, s, u.ID, "derivatives", 9, 7)

	weak, err = repo.WeakestTopic(ctx, u.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, weak)
	assert.Equal(t, "integrals", weak.Topic, "limits has a single attempt and does not qualify")
	assert.Equal(t, 40.0, weak.AvgScore)
	assert.Equal(t, 5, weak.Attempts)
}

func TestProgress(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "ada")
	saveResults(t, s, u.ID, "limits", 5, 10)

	days, err := s.ResultRepo().Progress(context.Background(), u.ID, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), days[0].Date)
	assert.Equal(t, 75.0, days[0].AvgScore)
	assert.Equal(t, 2, days[0].Quizzes)
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()
	ada := createUser(t, s, "ada")
	grace := createUser(t, s, "grace")
	saveResults(t, s, ada.ID, "limits", 5, 6)
	saveResults(t, s, grace.ID, "limits", 7)

	n, err := repo.Reset(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	gs, err := repo.General(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, gs.TotalQuizzes)

	gs, err = repo.General(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gs.TotalQuizzes)

	n, err = repo.Reset(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
