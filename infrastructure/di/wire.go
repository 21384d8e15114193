//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideLogLevel,
	ProvideMetrics,
	ProvideTracing,
	ProvideAWSConfig,
	ProvideStore,
	ProvideContactRepository,
	ProvideRelationshipRepository,
	ProvideHealthChecker,
	ProvideEventPublisher,
	ProvideLocalGraphExpander,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTService,
	ProvideErrorHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
