package storage

import (
	"context"
	"errors"

	"github.com/AlexBit99/MyMISiSAdventures/core/bootstrap"
	"github.com/AlexBit99/MyMISiSAdventures/core/logger"
	"log/slog"
)

// DefaultTemplateSeeder ensures the shared default outline template exists.
// It runs once at startup and is a no-op when a default row is already
// present.
func DefaultTemplateSeeder(templates *Templates, name, content string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, _ bootstrap.Storage) error {
		_, err := templates.GetDefault(ctx)
		if err == nil {
			logger.SEED.Debug("default template present",
				slog.String("event", "default_template"),
				slog.String("status", "skip"),
			)
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		t, err := templates.CreateDefault(ctx, name, content)
		if err != nil {
			return err
		}
		logger.SEED.Info("default template seeded",
			slog.String("event", "default_template"),
			slog.Int64("template_id", t.ID),
		)
		return nil
	})
}
