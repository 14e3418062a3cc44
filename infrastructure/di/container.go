package di

import (
	"mindmap/application/commands/bus"
	"mindmap/application/ports"
	querybus "mindmap/application/queries/bus"
	"mindmap/application/services"
	"mindmap/infrastructure/config"
	"mindmap/interfaces/http/rest"
	"mindmap/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository ports.MindMapRepository
	Publisher  ports.EventPublisher
	Sessions   *services.SessionRegistry
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Metrics
	Tracer     *observability.Tracer
	Router     *rest.Router
}
