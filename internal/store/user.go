package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds statements with SQLite quoting and placeholders.
var sqlite = entsql.Dialect(dialect.SQLite)

var userColumns = []string{
	"id", "username", "email", "password_hash", "display_name",
	"created_at", "last_login", "is_active",
}

// query runs q and calls scan once per row.
func query(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, scan func(*entsql.Rows) error) error {
	stmt, args := q.Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, stmt, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// exec runs q and returns its result.
func exec(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (sql.Result, error) {
	stmt, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, stmt, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanUser(rows *entsql.Rows) (*User, error) {
	var (
		u       User
		created string
		last    sql.NullString
	)
	if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &created, &last, &u.Active); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = t
	if last.Valid {
		t, err := parseTime(last.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_login: %w", err)
		}
		u.LastLogin = &t
	}
	return &u, nil
}

// userRepo implements UserRepo with ent's SQL builder.
type userRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func (r *userRepo) Create(ctx context.Context, nu NewUser) (*User, error) {
	if nu.DisplayName == "" {
		nu.DisplayName = nu.Username
	}
	now := r.now()

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	res, err := exec(ctx, tx, sqlite.Insert("users").
		Columns("username", "email", "password_hash", "display_name", "created_at").
		Values(nu.Username, nu.Email, nu.PasswordHash, nu.DisplayName, formatTime(now)))
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", nu.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("user id: %w", err)
	}
	if _, err := exec(ctx, tx, sqlite.Insert("user_stats").
		Columns("user_id", "last_updated").
		Values(id, formatTime(now))); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert user stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &User{
		ID:           id,
		Username:     nu.Username,
		Email:        nu.Email,
		DisplayName:  nu.DisplayName,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    now.Truncate(time.Second),
		Active:       true,
	}, nil
}

func (r *userRepo) one(ctx context.Context, where *entsql.Predicate) (*User, error) {
	var found *User
	err := query(ctx, r.drv, sqlite.Select(userColumns...).
		From(entsql.Table("users")).
		Where(where).
		Limit(1),
		func(rows *entsql.Rows) error {
			u, err := scanUser(rows)
			found = u
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*User, error) {
	return r.one(ctx, entsql.And(entsql.EQ("username", username), entsql.EQ("is_active", 1)))
}

func (r *userRepo) ByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) TouchLogin(ctx context.Context, id int64) error {
	_, err := exec(ctx, r.drv, sqlite.Update("users").
		Set("last_login", formatTime(r.now())).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	return nil
}

func (r *userRepo) List(ctx context.Context) ([]User, error) {
	var users []User
	err := query(ctx, r.drv, sqlite.Select(userColumns...).
		From(entsql.Table("users")).
		OrderBy("id"),
		func(rows *entsql.Rows) error {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, *u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
