package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// resultRepo implements ResultRepo.
type resultRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

func (r *resultRepo) Save(ctx context.Context, userID int64, in ResultInput) (int64, error) {
	if in.Total < 0 || in.Score < 0 || in.Score > in.Total {
		return 0, fmt.Errorf("invalid score %d/%d", in.Score, in.Total)
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		if d, ok := in.Details["difficulty"].(string); ok && d != "" {
			difficulty = d
		} else {
			difficulty = "mixed"
		}
	}
	var details, timeSpent any
	if len(in.Details) > 0 {
		raw, err := json.Marshal(in.Details)
		if err != nil {
			return 0, fmt.Errorf("marshal details: %w", err)
		}
		details = string(raw)
	}
	if in.TimeSpent > 0 {
		timeSpent = in.TimeSpent
	}
	now := formatTime(r.now())

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	res, err := exec(ctx, tx, sqlite.Insert("quiz_results").
		Columns("user_id", "topic", "score", "total_questions", "percentage", "difficulty", "date_taken", "time_spent", "details").
		Values(userID, in.Topic, in.Score, in.Total, percentage(in.Score, in.Total), difficulty, now, timeSpent, details))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("result id: %w", err)
	}
	if err := updateUserStats(ctx, tx, userID, in.Score, in.Total, now); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// updateUserStats folds one result into the running aggregate,
// creating the row if the user has none.
func updateUserStats(ctx context.Context, tx dialect.Tx, userID int64, score, total int, now string) error {
	var (
		cur   GeneralStats
		found bool
	)
	err := query(ctx, tx, sqlite.Select("total_quizzes", "total_questions", "total_correct").
		From(entsql.Table("user_stats")).
		Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			found = true
			return rows.Scan(&cur.TotalQuizzes, &cur.TotalQuestions, &cur.TotalCorrect)
		})
	if err != nil {
		return fmt.Errorf("read user stats: %w", err)
	}

	quizzes := cur.TotalQuizzes + 1
	questions := cur.TotalQuestions + total
	correct := cur.TotalCorrect + score
	avg := percentage(correct, questions)

	var q entsql.Querier
	if found {
		q = sqlite.Update("user_stats").
			Set("total_quizzes", quizzes).
			Set("total_questions", questions).
			Set("total_correct", correct).
			Set("average_score", avg).
			Set("last_updated", now).
			Where(entsql.EQ("user_id", userID))
	} else {
		q = sqlite.Insert("user_stats").
			Columns("user_id", "total_quizzes", "total_questions", "total_correct", "average_score", "last_updated").
			Values(userID, quizzes, questions, correct, avg, now)
	}
	if _, err := exec(ctx, tx, q); err != nil {
		return fmt.Errorf("write user stats: %w", err)
	}
	return nil
}

func (r *resultRepo) Recent(ctx context.Context, userID int64, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Result
	err := query(ctx, r.drv, sqlite.Select("id", "topic", "score", "total_questions", "percentage", "difficulty", "date_taken", "time_spent").
		From(entsql.Table("quiz_results")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("date_taken"), entsql.Desc("id")).
		Limit(limit),
		func(rows *entsql.Rows) error {
			var (
				res   Result
				taken string
				spent sql.NullInt64
			)
			if err := rows.Scan(&res.ID, &res.Topic, &res.Score, &res.Total, &res.Percentage, &res.Difficulty, &taken, &spent); err != nil {
				return err
			}
			t, err := parseTime(taken)
			if err != nil {
				return fmt.Errorf("parse date_taken: %w", err)
			}
			res.TakenAt = t
			res.TimeSpent = int(spent.Int64)
			res.Percentage = round1(res.Percentage)
			out = append(out, res)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return out, nil
}

// topicSelector aggregates a user's results per topic.
func topicSelector(userID int64) *entsql.Selector {
	return sqlite.Select(
		"topic",
		entsql.As(entsql.Count("*"), "attempts"),
		entsql.As(entsql.Avg("percentage"), "avg_score"),
		entsql.As(entsql.Max("percentage"), "best_score"),
		entsql.As(entsql.Min("percentage"), "worst_score"),
		entsql.As(entsql.Sum("total_questions"), "question_sum"),
		entsql.As(entsql.Sum("score"), "correct_sum"),
	).
		From(entsql.Table("quiz_results")).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("topic")
}

func scanTopicStats(rows *entsql.Rows) (TopicStats, error) {
	var ts TopicStats
	if err := rows.Scan(&ts.Topic, &ts.Attempts, &ts.AvgScore, &ts.BestScore, &ts.WorstScore, &ts.TotalQuestions, &ts.TotalCorrect); err != nil {
		return ts, err
	}
	ts.AvgScore = round1(ts.AvgScore)
	ts.BestScore = round1(ts.BestScore)
	ts.WorstScore = round1(ts.WorstScore)
	return ts, nil
}

func (r *resultRepo) ByTopic(ctx context.Context, userID int64) ([]TopicStats, error) {
	var out []TopicStats
	err := query(ctx, r.drv, topicSelector(userID).OrderBy(entsql.Desc("avg_score"), "topic"),
		func(rows *entsql.Rows) error {
			ts, err := scanTopicStats(rows)
			if err != nil {
				return err
			}
			out = append(out, ts)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("stats by topic: %w", err)
	}
	return out, nil
}

func (r *resultRepo) WeakestTopic(ctx context.Context, userID int64, minAttempts int) (*TopicStats, error) {
	var found *TopicStats
	err := query(ctx, r.drv, topicSelector(userID).
		Having(entsql.GTE(entsql.Count("*"), minAttempts)).
		OrderBy(entsql.Asc("avg_score"), "topic").
		Limit(1),
		func(rows *entsql.Rows) error {
			ts, err := scanTopicStats(rows)
			if err != nil {
				return err
			}
			found = &ts
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("weakest topic: %w", err)
	}
	return found, nil
}

func (r *resultRepo) General(ctx context.Context, userID int64) (GeneralStats, error) {
	var gs GeneralStats
	err := query(ctx, r.drv, sqlite.Select("total_quizzes", "total_questions", "total_correct", "average_score").
		From(entsql.Table("user_stats")).
		Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			return rows.Scan(&gs.TotalQuizzes, &gs.TotalQuestions, &gs.TotalCorrect, &gs.AverageScore)
		})
	if err != nil {
		return GeneralStats{}, fmt.Errorf("general stats: %w", err)
	}
	gs.AverageScore = round1(gs.AverageScore)
	return gs, nil
}

func (r *resultRepo) Progress(ctx context.Context, userID int64, since time.Time) ([]DayProgress, error) {
	var out []DayProgress
	err := query(ctx, r.drv, sqlite.Select(
		entsql.As("DATE(date_taken)", "day"),
		entsql.As(entsql.Avg("percentage"), "avg_score"),
		entsql.As(entsql.Count("*"), "quizzes"),
	).
		From(entsql.Table("quiz_results")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.GTE("date_taken", formatTime(since)),
		)).
		GroupBy("DATE(date_taken)").
		OrderBy("day"),
		func(rows *entsql.Rows) error {
			var dp DayProgress
			if err := rows.Scan(&dp.Date, &dp.AvgScore, &dp.Quizzes); err != nil {
				return err
			}
			dp.AvgScore = round1(dp.AvgScore)
			out = append(out, dp)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}
	return out, nil
}

func (r *resultRepo) Reset(ctx context.Context, userID int64) (int64, error) {
	results := sqlite.Delete("quiz_results")
	stats := sqlite.Delete("user_stats")
	if userID != 0 {
		results.Where(entsql.EQ("user_id", userID))
		stats.Where(entsql.EQ("user_id", userID))
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	res, err := exec(ctx, tx, results)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete results: %w", err)
	}
	if _, err := exec(ctx, tx, stats); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete user stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return res.RowsAffected()
}
