package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AlexBit99/MyMISiSAdventures/core/logger"
	"log/slog"
)

// Users provides access to the users table.
type Users struct {
	db *sqlx.DB
}

// NewUsers constructs the users repository.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// GetByTelegramID returns the user with the given Telegram identity.
func (r *Users) GetByTelegramID(ctx context.Context, tgID int64) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u,
		`SELECT id, tg_id, name, created_at FROM users WHERE tg_id = $1`, tgID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users get by tg_id: %w", err)
	}
	return u, nil
}

// Create inserts a new user record.
func (r *Users) Create(ctx context.Context, tgID int64, name string) (User, error) {
	start := time.Now()
	var u User
	err := r.db.GetContext(ctx, &u,
		`INSERT INTO users (tg_id, name) VALUES ($1, $2)
		 RETURNING id, tg_id, name, created_at`, tgID, name)
	if err != nil {
		logger.SVCUsers.Error("user insert failed",
			slog.String("event", "create"),
			slog.Int64("user_id", tgID),
			slog.String("err", err.Error()),
		)
		return User{}, fmt.Errorf("users create: %w", err)
	}
	logger.SVCUsers.Info("user created",
		slog.String("event", "create"),
		slog.Int64("user_id", tgID),
		slog.Duration("duration", logger.Took(start)),
	)
	return u, nil
}

// GetOrCreate resolves a Telegram identity to a user, creating the record on
// first interaction.
func (r *Users) GetOrCreate(ctx context.Context, tgID int64, name string) (User, error) {
	u, err := r.GetByTelegramID(ctx, tgID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	return r.Create(ctx, tgID, name)
}
