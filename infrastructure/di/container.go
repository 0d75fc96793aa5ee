package di

import (
	"clubgraph-backend/application/ports"
	querybus "clubgraph-backend/application/queries/bus"
	"clubgraph-backend/application/services"
	"clubgraph-backend/infrastructure/config"
	"clubgraph-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Tunables    *config.TunablesWatcher
	EntityStore ports.EntityStore
	Cache       ports.PayloadCache
	Aggregator  *services.Aggregator
	QueryBus    *querybus.QueryBus
	Collector   *observability.Collector
	Publisher   *observability.CloudWatchPublisher
	Tracer      *observability.Tracer
}
