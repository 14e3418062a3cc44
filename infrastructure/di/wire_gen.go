//go:build !wireinject
// +build !wireinject

// Injector wiring for builds without the wireinject tag. It mirrors the
// provider order declared in wire.go and is kept in step with it by hand.

package di

import (
	"context"

	"mindmap/infrastructure/config"
)

// Injectors from wire.go:

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := ProvideDynamoDBClient(awsConfig)
	mindMapRepository := ProvideMindMapRepository(client, cfg, logger)
	eventbridgeClient := ProvideEventBridgeClient(awsConfig)
	eventPublisher := ProvideEventPublisher(eventbridgeClient, cfg, logger)
	domainConfig, err := ProvideDomainConfig(cfg)
	if err != nil {
		return nil, err
	}
	tracer := ProvideTracer(cfg)
	cloudwatchClient := ProvideCloudWatchClient(awsConfig)
	metrics := ProvideMetrics(cloudwatchClient, cfg, logger)
	connectionPoster := ProvideConnectionPoster(awsConfig, cfg)
	sessionRegistry := ProvideSessionRegistry(domainConfig, mindMapRepository, eventPublisher, tracer, metrics, connectionPoster, cfg, logger)
	commandBus, err := ProvideCommandBus(sessionRegistry, mindMapRepository, eventPublisher, logger)
	if err != nil {
		return nil, err
	}
	queryBus, err := ProvideQueryBus(sessionRegistry, mindMapRepository, metrics, logger)
	if err != nil {
		return nil, err
	}
	jwtValidator, err := ProvideJWTValidator(cfg, logger)
	if err != nil {
		return nil, err
	}
	userRateLimiter := ProvideRateLimiter(cfg)
	router := ProvideRouter(commandBus, queryBus, jwtValidator, userRateLimiter, cfg, logger)
	container := &Container{
		Config:     cfg,
		Logger:     logger,
		Repository: mindMapRepository,
		Publisher:  eventPublisher,
		Sessions:   sessionRegistry,
		CommandBus: commandBus,
		QueryBus:   queryBus,
		Metrics:    metrics,
		Tracer:     tracer,
		Router:     router,
	}
	return container, nil
}
