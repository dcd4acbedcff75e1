// Package app wires storage, the generation client and the conversation
// machine into a runnable Telegram application.
package app

import (
	"context"
	"fmt"

	"github.com/AlexBit99/MyMISiSAdventures/ai"
	"github.com/AlexBit99/MyMISiSAdventures/bot"
	"github.com/AlexBit99/MyMISiSAdventures/bot/conversation"
	"github.com/AlexBit99/MyMISiSAdventures/core/bootstrap"
	coretelegram "github.com/AlexBit99/MyMISiSAdventures/core/telegram"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/router"
	"github.com/AlexBit99/MyMISiSAdventures/storage"
)

// App holds everything needed to serve the bot.
type App struct {
	cfg      *Config
	registry *coretelegram.Registry
	handlers *bot.Handlers
}

// services is what the bootstrap service provider assembles on top of the
// repositories: the generation client, the conversation machine and its
// transport wiring.
type services struct {
	registry *coretelegram.Registry
	handlers *bot.Handlers
}

// New runs the bootstrap pipeline (logger, database, migrations), seeds the
// default template and wires the conversation machine with its transport.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	users := storage.NewUsers(res.DB)
	essays := storage.NewEssays(res.DB)
	templates := storage.NewTemplates(res.DB)
	messages := storage.NewMessages(res.DB)

	mods := bootstrap.Modules{
		Seeders: []bootstrap.Seeder{
			storage.DefaultTemplateSeeder(templates, bot.DefaultTemplateName, bot.DefaultOutline),
		},
		Services: bootstrap.ServiceProviderFunc(func(_ context.Context, _ interface{}, _ bootstrap.Storage) (interface{}, error) {
			gen, err := ai.NewOpenAIClient(cfg.AI)
			if err != nil {
				return nil, fmt.Errorf("generation client init failed: %w", err)
			}

			sessions := conversation.NewMemoryStore(cfg.HistoryTTL())
			machine := conversation.New(sessions, users, essays, templates, messages, gen, conversation.Options{
				PageSize:       cfg.Bot.PageSize,
				ChunkLimit:     cfg.Bot.ChunkLimit,
				DefaultOutline: bot.DefaultOutline,
				NotifyMissing:  cfg.Bot.NotifyMissing,
			})

			handlers := bot.New(machine)
			registry := coretelegram.NewRegistry()
			handlers.Register(registry)
			return &services{registry: registry, handlers: handlers}, nil
		}),
	}

	built, err := bootstrap.RunModules(context.Background(), mods, cfg, res.DB)
	if err != nil {
		return nil, err
	}
	svc, ok := built.(*services)
	if !ok {
		return nil, fmt.Errorf("app: unexpected services type %T", built)
	}

	return &App{
		cfg:      cfg,
		registry: svc.registry,
		handlers: svc.handlers,
	}, nil
}

// TelegramRunOptions assembles routes and middleware for the shared runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	fb := bot.Fallback{}

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.handlers, a.registry, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
	}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
	}, nil
}
