package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchPublisher ships request-level graph telemetry to CloudWatch.
// Publishing is best-effort: a failed put is logged, never surfaced to the
// request path.
type CloudWatchPublisher struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewCloudWatchPublisher creates a publisher under the given namespace.
func NewCloudWatchPublisher(client *cloudwatch.Client, namespace string, logger *zap.Logger) *CloudWatchPublisher {
	return &CloudWatchPublisher{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// PublishRequest records one /graph-data request: its duration and whether
// the cache served it.
func (p *CloudWatchPublisher) PublishRequest(ctx context.Context, duration time.Duration, cacheHit bool) {
	hit := 0.0
	if cacheHit {
		hit = 1.0
	}

	now := time.Now()
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("GraphDataDuration"),
				Unit:       types.StandardUnitMilliseconds,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("GraphDataCacheHit"),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(hit),
				Timestamp:  aws.Time(now),
			},
		},
	})
	if err != nil {
		p.logger.Warn("Failed to publish CloudWatch metrics", zap.Error(err))
	}
}
