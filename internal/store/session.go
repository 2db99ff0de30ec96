package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sessionRepo implements SessionRepo.
type sessionRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func (r *sessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := exec(ctx, r.drv, sqlite.Insert("user_sessions").
		Columns("user_id", "session_token", "created_at", "expires_at").
		Values(userID, token, formatTime(r.now()), formatTime(expiresAt)))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) UserByToken(ctx context.Context, token string) (*User, error) {
	u := entsql.Table("users")
	s := entsql.Table("user_sessions")
	cols := make([]string, len(userColumns))
	for i, c := range userColumns {
		cols[i] = u.C(c)
	}

	var found *User
	err := query(ctx, r.drv, sqlite.Select(cols...).
		From(u).
		Join(s).On(u.C("id"), s.C("user_id")).
		Where(entsql.And(
			entsql.EQ(s.C("session_token"), token),
			entsql.GT(s.C("expires_at"), formatTime(r.now())),
			entsql.EQ(s.C("is_active"), 1),
			entsql.EQ(u.C("is_active"), 1),
		)).
		Limit(1),
		func(rows *entsql.Rows) error {
			user, err := scanUser(rows)
			found = user
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *sessionRepo) Deactivate(ctx context.Context, token string) error {
	_, err := exec(ctx, r.drv, sqlite.Update("user_sessions").
		Set("is_active", 0).
		Where(entsql.EQ("session_token", token)))
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}

func (r *sessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := exec(ctx, r.drv, sqlite.Delete("user_sessions").
		Where(entsql.Or(
			entsql.LTE("expires_at", formatTime(r.now())),
			entsql.EQ("is_active", 0),
		)))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
