// Package storage persists users, essays, templates and free-form check logs
// in Postgres via sqlx.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound reports that a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// User is a bot user identified by Telegram ID. Created lazily on first
// interaction and never deleted.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"tg_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}

// Essay is a generated essay owned by a user. Immutable once saved.
type Essay struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Topic     string    `db:"topic"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// Template is an essay outline. Ownerless rows with IsDefault set are shared
// reference templates seeded at startup.
type Template struct {
	ID        int64     `db:"id"`
	UserID    *int64    `db:"user_id"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	IsDefault bool      `db:"is_default"`
	CreatedAt time.Time `db:"created_at"`
}

// Message logs one essay-check exchange: the submitted text and the answer.
type Message struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Text      string    `db:"text"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
}
