package bootstrap

import (
	"context"
	"fmt"
)

// Storage represents shared infrastructure passed to optional modules.
type Storage interface{}

// Seeder loads reference data into a storage implementation.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, storage Storage) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, storage Storage) error {
	return f(ctx, storage)
}

// ServiceProvider wires application services using configuration and storage.
type ServiceProvider interface {
	Provide(ctx context.Context, cfg interface{}, storage Storage) (interface{}, error)
}

// ServiceProviderFunc adapts a function to the ServiceProvider interface.
type ServiceProviderFunc func(ctx context.Context, cfg interface{}, storage Storage) (interface{}, error)

// Provide executes the underlying function.
func (f ServiceProviderFunc) Provide(ctx context.Context, cfg interface{}, storage Storage) (interface{}, error) {
	return f(ctx, cfg, storage)
}

// Modules groups optional bootstrapping hooks for seeding and service initialization.
type Modules struct {
	Seeders  []Seeder
	Services ServiceProvider
}

// RunModules executes the registered seeders in order and then the service
// provider, returning whatever the provider built.
func RunModules(ctx context.Context, mods Modules, cfg interface{}, storage Storage) (interface{}, error) {
	for i, s := range mods.Seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, storage); err != nil {
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}
	if mods.Services == nil {
		return nil, nil
	}
	services, err := mods.Services.Provide(ctx, cfg, storage)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: service wiring failed: %w", err)
	}
	return services, nil
}
