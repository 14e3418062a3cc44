package di

import (
	"context"
	"testing"
	"time"

	"mindmap/application/commands"
	"mindmap/application/queries"
	"mindmap/application/services"
	"mindmap/infrastructure/config"
	"mindmap/infrastructure/messaging/eventbridge"
	"mindmap/infrastructure/persistence/memory"
	"mindmap/infrastructure/render"
	"mindmap/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPoster struct{}

func (stubPoster) PostToConnection(context.Context, *apigatewaymanagementapi.PostToConnectionInput, ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "development",
		UseMemoryStore:     true,
		JWTIssuer:          "mindmap",
		WebSocketTimeout:   time.Second,
		RateLimitPerMinute: 10,
		MetricsNamespace:   "MindMap",
		LogLevel:           "debug",
	}
}

func TestProvideLogger(t *testing.T) {
	cfg := testConfig()
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideMindMapRepository_Memory(t *testing.T) {
	repo := ProvideMindMapRepository(nil, testConfig(), zap.NewNop())
	assert.IsType(t, &memory.MindMapRepository{}, repo)
}

func TestProvideEventPublisher_NoBus(t *testing.T) {
	publisher := ProvideEventPublisher(nil, testConfig(), zap.NewNop())
	assert.Equal(t, eventbridge.NopPublisher{}, publisher)
}

func TestProvideConnectionPoster_NoEndpoint(t *testing.T) {
	assert.Nil(t, ProvideConnectionPoster(aws.Config{}, testConfig()))
}

func TestProvideJWTValidator(t *testing.T) {
	cfg := testConfig()
	validator, err := ProvideJWTValidator(cfg, zap.NewNop())
	require.NoError(t, err)

	generator, err := auth.NewJWTGenerator(developmentSecret, "mindmap", time.Minute)
	require.NoError(t, err)
	token, err := generator.GenerateToken("user123", "", nil)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.UserID)

	cfg.Environment = "production"
	_, err = ProvideJWTValidator(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideBuses_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	logger := zap.NewNop()

	domainCfg, err := ProvideDomainConfig(cfg)
	require.NoError(t, err)
	repo := ProvideMindMapRepository(nil, cfg, logger)
	publisher := ProvideEventPublisher(nil, cfg, logger)
	metrics := ProvideMetrics(nil, cfg, logger)
	registry := ProvideSessionRegistry(domainCfg, repo, publisher, ProvideTracer(cfg), metrics, nil, cfg, logger)

	commandBus, err := ProvideCommandBus(registry, repo, publisher, logger)
	require.NoError(t, err)
	queryBus, err := ProvideQueryBus(registry, repo, metrics, logger)
	require.NoError(t, err)

	res, err := commandBus.Send(ctx, commands.OpenSessionCommand{OwnerID: "user123"})
	require.NoError(t, err)
	opened := res.Data.(*commands.SessionResult)
	ref := commands.SessionRef{SessionID: opened.Session.SessionID, OwnerID: "user123"}

	_, err = commandBus.Send(ctx, commands.AddChildCommand{SessionRef: ref, ParentID: "root"})
	require.NoError(t, err)
	res, err = commandBus.Send(ctx, commands.SaveCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data.(*commands.SessionResult).Notifications)

	view, err := queryBus.Ask(ctx, queries.GetSessionQuery{SessionRef: ref})
	require.NoError(t, err)
	assert.NotEmpty(t, view.(*services.SessionView).MindMapID)

	projection, err := queryBus.Ask(ctx, queries.GetProjectionQuery{SessionRef: ref})
	require.NoError(t, err)
	assert.Len(t, projection.(*queries.ProjectionResult).Selected, 1)

	summaries, err := repo.List(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestProvideSessionRegistry_WebSocketMirror(t *testing.T) {
	cfg := testConfig()
	registry := ProvideSessionRegistry(nil, nil, nil, nil, nil, stubPoster{}, cfg, zap.NewNop())

	session, err := registry.Open(context.Background(), services.OpenRequest{OwnerID: "u", ConnectionID: "conn-1"})
	require.NoError(t, err)
	assert.IsType(t, render.Multi{}, session.Renderer())

	session, err = registry.Open(context.Background(), services.OpenRequest{OwnerID: "u"})
	require.NoError(t, err)
	assert.IsType(t, &render.Projection{}, session.Renderer())
}
