package di

import (
	"context"
	"fmt"
	"strings"

	"mindmap/application/commands/bus"
	commandhandlers "mindmap/application/commands/handlers"
	"mindmap/application/ports"
	querybus "mindmap/application/queries/bus"
	queryhandlers "mindmap/application/queries/handlers"
	"mindmap/application/services"
	domainconfig "mindmap/domain/config"
	"mindmap/infrastructure/config"
	"mindmap/infrastructure/messaging/eventbridge"
	"mindmap/infrastructure/notify"
	"mindmap/infrastructure/persistence/dynamodb"
	"mindmap/infrastructure/persistence/memory"
	"mindmap/infrastructure/render"
	"mindmap/interfaces/http/rest"
	"mindmap/pkg/auth"
	"mindmap/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// developmentSecret signs tokens outside production when JWT_SECRET is unset
const developmentSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideConnectionPoster creates the API Gateway management client that pushes
// projection frames to websocket connections. It is nil without an endpoint.
func ProvideConnectionPoster(awsCfg aws.Config, cfg *config.Config) render.ConnectionPoster {
	if cfg.WebSocketEndpoint == "" {
		return nil
	}
	endpoint := cfg.WebSocketEndpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// ProvideDomainConfig selects the editor configuration for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain configuration: %w", err)
	}
	return domainCfg, nil
}

// ProvideMindMapRepository creates the mind map store
func ProvideMindMapRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MindMapRepository {
	if cfg.UseMemoryStore {
		logger.Warn("Using in-memory mind map store; data is lost on restart")
		return memory.NewMindMapRepository(logger)
	}
	return dynamodb.NewMindMapRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("mindmap", cfg.EnableTracing)
}

// ProvideSessionRegistry creates the registry of live editing sessions.
// Every session renders into an in-process projection, mirrored to its
// websocket connection when one is given and a poster is configured.
func ProvideSessionRegistry(
	domainCfg *domainconfig.DomainConfig,
	repo ports.MindMapRepository,
	publisher ports.EventPublisher,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	poster render.ConnectionPoster,
	cfg *config.Config,
	logger *zap.Logger,
) *services.SessionRegistry {
	deps := services.SessionDeps{
		Config:     domainCfg,
		Repository: repo,
		Publisher:  publisher,
		Tracer:     tracer,
		Metrics:    metrics,
		Logger:     logger,
	}

	newRenderer := func(sessionID, connectionID string) ports.Renderer {
		projection := render.NewProjection()
		if connectionID == "" || poster == nil {
			return projection
		}
		return render.Multi{
			projection,
			render.NewWebSocketRenderer(poster, sessionID, connectionID, cfg.WebSocketTimeout, logger),
		}
	}

	newNotifier := func(sessionID string) ports.Notifier {
		return notify.NewFanout(
			notify.NewRecorder(),
			notify.NewLogNotifier(logger.With(zap.String("session_id", sessionID))),
		)
	}

	return services.NewSessionRegistry(deps, newRenderer, newNotifier).WithIdleTTL(cfg.SessionIdleTTL)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	registry *services.SessionRegistry,
	repo ports.MindMapRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.RecoveryMiddleware(logger),
		bus.LoggingMiddleware(logger),
	)

	if err := commandhandlers.NewSessionHandler(registry, logger).Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register session handlers: %w", err)
	}
	if err := commandhandlers.NewMindMapHandler(repo, publisher, logger).Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register mind map handlers: %w", err)
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	registry *services.SessionRegistry,
	repo ports.MindMapRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	err := queryhandlers.RegisterQueryHandlers(
		queryBus,
		queryhandlers.NewMindMapQueryHandler(repo, logger),
		queryhandlers.NewSessionQueryHandler(registry),
		querybus.NewMetricsMiddleware(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}

	return queryBus, nil
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = developmentSecret
	}

	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter creates the per-user request limiter
func ProvideRateLimiter(cfg *config.Config) *auth.UserRateLimiter {
	return auth.NewUserRateLimiter(cfg.RateLimitPerMinute)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	limiter *auth.UserRateLimiter,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, validator, limiter, cfg, logger)
}
