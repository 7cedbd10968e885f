package repo

import (
	"context"
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

func (r Repo) CreateUser(ctx context.Context, username, passwordHash string, now time.Time) (User, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users(username, password_hash, created_at) VALUES (?,?,?)`,
		username, passwordHash, timeStr(now))
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (r Repo) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx, `SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}
