package di

import (
	"context"
	"fmt"
	"time"

	"clubgraph-backend/application/ports"
	"clubgraph-backend/application/queries"
	querybus "clubgraph-backend/application/queries/bus"
	queries_handlers "clubgraph-backend/application/queries/handlers"
	"clubgraph-backend/application/services"
	"clubgraph-backend/domain/graph"
	"clubgraph-backend/infrastructure/cache"
	"clubgraph-backend/infrastructure/config"
	"clubgraph-backend/infrastructure/persistence/dynamodb"
	"clubgraph-backend/infrastructure/persistence/resilience"
	pkgerrors "clubgraph-backend/pkg/errors"
	"clubgraph-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
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

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTunablesWatcher loads the runtime tunables and starts hot-reloading
// them when a file is configured.
func ProvideTunablesWatcher(cfg *config.Config, logger *zap.Logger) (*config.TunablesWatcher, error) {
	watcher, err := config.NewTunablesWatcher(cfg.TunablesPath, logger)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load tunables from %q", cfg.TunablesPath)
	}
	watcher.Start()
	return watcher, nil
}

// ProvideEntityStore creates the DynamoDB entity store wrapped in a circuit
// breaker so a struggling table degrades into fast failures instead of
// timeouts.
func ProvideEntityStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntityStore {
	store := dynamodb.NewEntityStore(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	return resilience.NewBreakerStore(store, resilience.DefaultBreakerConfig("entity-store"), logger)
}

// ProvideCollector creates the Prometheus metrics collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector("clubgraph")
}

// ProvidePublisher creates the CloudWatch telemetry publisher
func ProvidePublisher(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.CloudWatchPublisher {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	return observability.NewCloudWatchPublisher(client, namespace, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("clubgraph", cfg.EnableTracing)
}

// ProvidePayloadCache creates the payload cache. TTLs are read through the
// tunables watcher on every lookup so reloads apply without a restart.
func ProvidePayloadCache(tunables *config.TunablesWatcher, collector *observability.Collector, logger *zap.Logger) ports.PayloadCache {
	return cache.NewPayloadCache(logger,
		cache.WithTTL(
			func() time.Duration {
				return time.Duration(tunables.Current().Cache.AbsoluteTTLSeconds) * time.Second
			},
			func() time.Duration {
				return time.Duration(tunables.Current().Cache.SlidingTTLSeconds) * time.Second
			},
		),
		cache.WithRecorder(collector),
	)
}

// ProvideAggregator creates the graph aggregator with its size scale bound to
// the tunables watcher.
func ProvideAggregator(store ports.EntityStore, tunables *config.TunablesWatcher, logger *zap.Logger) *services.Aggregator {
	scale := func() graph.SizeScale {
		g := tunables.Current().Graph
		return graph.SizeScale{
			Base:      g.SizeBase,
			Increment: g.SizeIncrement,
			Max:       g.SizeMax,
		}
	}
	return services.NewAggregator(store, scale, logger)
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	payloadCache ports.PayloadCache,
	aggregator *services.Aggregator,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	// Register GetGraphDataQuery handler
	getGraphDataHandler := queries_handlers.NewGetGraphDataHandler(payloadCache, aggregator, logger)
	queryBus.Register(queries.GetGraphDataQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetGraphDataQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getGraphDataHandler.Handle(ctx, getQuery)
		},
	})

	return queryBus
}

// Shutdown releases resources held by the container.
func (c *Container) Shutdown() {
	if c.Tunables != nil {
		c.Tunables.Stop()
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
}
