package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray segments around the aggregation path. When disabled it
// is a pass-through, so callers never branch on tracing themselves.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a tracer for the given service.
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// Capture runs fn inside a subsegment named after the service and operation.
func (t *Tracer) Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	return xray.Capture(ctx, fmt.Sprintf("%s.%s", t.serviceName, name), fn)
}

// AddAnnotation adds an indexed annotation to the current segment.
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if !t.enabled {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}
