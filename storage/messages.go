package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AlexBit99/MyMISiSAdventures/core/logger"
	"log/slog"
)

// Messages provides access to the messages table.
type Messages struct {
	db *sqlx.DB
}

// NewMessages constructs the messages repository.
func NewMessages(db *sqlx.DB) *Messages {
	return &Messages{db: db}
}

// Create logs an essay-check exchange for the user.
func (r *Messages) Create(ctx context.Context, userID int64, text, answer string) (Message, error) {
	start := time.Now()
	var m Message
	err := r.db.GetContext(ctx, &m,
		`INSERT INTO messages (user_id, text, answer) VALUES ($1, $2, $3)
		 RETURNING id, user_id, text, answer, created_at`, userID, text, answer)
	if err != nil {
		logger.SVCMessages.Error("message insert failed",
			slog.String("event", "create"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Message{}, fmt.Errorf("messages create: %w", err)
	}
	logger.SVCMessages.Debug("check exchange logged",
		slog.String("event", "create"),
		slog.Int64("user_id", userID),
		slog.Duration("duration", logger.Took(start)),
	)
	return m, nil
}
