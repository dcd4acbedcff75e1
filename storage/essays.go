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

// Essays provides access to the essays table.
type Essays struct {
	db *sqlx.DB
}

// NewEssays constructs the essays repository.
func NewEssays(db *sqlx.DB) *Essays {
	return &Essays{db: db}
}

// Create persists a generated essay for the user.
func (r *Essays) Create(ctx context.Context, userID int64, topic, content string) (Essay, error) {
	start := time.Now()
	var e Essay
	err := r.db.GetContext(ctx, &e,
		`INSERT INTO essays (user_id, topic, content) VALUES ($1, $2, $3)
		 RETURNING id, user_id, topic, content, created_at`, userID, topic, content)
	if err != nil {
		logger.SVCEssays.Error("essay insert failed",
			slog.String("event", "create"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Essay{}, fmt.Errorf("essays create: %w", err)
	}
	logger.SVCEssays.Info("essay saved",
		slog.String("event", "create"),
		slog.Int64("essay_id", e.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return e, nil
}

// ListByUser returns the user's essays, newest first.
func (r *Essays) ListByUser(ctx context.Context, userID int64) ([]Essay, error) {
	var list []Essay
	err := r.db.SelectContext(ctx, &list,
		`SELECT id, user_id, topic, content, created_at FROM essays
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("essays list: %w", err)
	}
	return list, nil
}

// GetByID returns a single essay.
func (r *Essays) GetByID(ctx context.Context, id int64) (Essay, error) {
	var e Essay
	err := r.db.GetContext(ctx, &e,
		`SELECT id, user_id, topic, content, created_at FROM essays WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Essay{}, ErrNotFound
	}
	if err != nil {
		return Essay{}, fmt.Errorf("essays get: %w", err)
	}
	return e, nil
}
