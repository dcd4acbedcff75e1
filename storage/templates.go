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

// Templates provides access to the templates table.
type Templates struct {
	db *sqlx.DB
}

// NewTemplates constructs the templates repository.
func NewTemplates(db *sqlx.DB) *Templates {
	return &Templates{db: db}
}

// Create saves a user-owned template.
func (r *Templates) Create(ctx context.Context, userID int64, name, content string) (Template, error) {
	start := time.Now()
	var t Template
	err := r.db.GetContext(ctx, &t,
		`INSERT INTO templates (user_id, name, content) VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, content, is_default, created_at`, userID, name, content)
	if err != nil {
		logger.SVCTemplates.Error("template insert failed",
			slog.String("event", "create"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Template{}, fmt.Errorf("templates create: %w", err)
	}
	logger.SVCTemplates.Info("template saved",
		slog.String("event", "create"),
		slog.Int64("template_id", t.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return t, nil
}

// ListByUser returns templates owned by the user, oldest first.
func (r *Templates) ListByUser(ctx context.Context, userID int64) ([]Template, error) {
	var list []Template
	err := r.db.SelectContext(ctx, &list,
		`SELECT id, user_id, name, content, is_default, created_at FROM templates
		 WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("templates list: %w", err)
	}
	return list, nil
}

// GetByID returns a single template.
func (r *Templates) GetByID(ctx context.Context, id int64) (Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t,
		`SELECT id, user_id, name, content, is_default, created_at FROM templates WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	if err != nil {
		return Template{}, fmt.Errorf("templates get: %w", err)
	}
	return t, nil
}

// GetDefault returns the shared default outline template.
func (r *Templates) GetDefault(ctx context.Context) (Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t,
		`SELECT id, user_id, name, content, is_default, created_at FROM templates
		 WHERE is_default ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	if err != nil {
		return Template{}, fmt.Errorf("templates get default: %w", err)
	}
	return t, nil
}

// CreateDefault inserts an ownerless default template used by the seeder.
func (r *Templates) CreateDefault(ctx context.Context, name, content string) (Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t,
		`INSERT INTO templates (user_id, name, content, is_default)
		 VALUES (NULL, $1, $2, TRUE)
		 RETURNING id, user_id, name, content, is_default, created_at`, name, content)
	if err != nil {
		return Template{}, fmt.Errorf("templates create default: %w", err)
	}
	return t, nil
}
