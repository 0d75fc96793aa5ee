package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubgraph-backend/application/ports"
	"clubgraph-backend/application/queries"
	querybus "clubgraph-backend/application/queries/bus"
	"clubgraph-backend/pkg/common"
	pkgerrors "clubgraph-backend/pkg/errors"
	"clubgraph-backend/pkg/observability"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const cacheControlValue = "private, max-age=120"

// GraphHandler serves the graph visualization endpoints.
type GraphHandler struct {
	queryBus  *querybus.QueryBus
	cache     ports.PayloadCache
	collector *observability.Collector
	publisher *observability.CloudWatchPublisher
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(
	queryBus *querybus.QueryBus,
	cache ports.PayloadCache,
	collector *observability.Collector,
	publisher *observability.CloudWatchPublisher,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		queryBus:  queryBus,
		cache:     cache,
		collector: collector,
		publisher: publisher,
		tracer:    tracer,
		logger:    logger,
	}
}

// GetGraphData handles GET /graph-data. It returns the full visualization
// payload wrapped in the standard envelope, with performance telemetry in
// the response metadata and an ETag derived from the payload version.
func (h *GraphHandler) GetGraphData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	includeInactive, err := parseBoolParam(r, "includeInactive")
	if err != nil {
		h.logger.Warn("Rejected graph data request", zap.Error(err))
		h.respondError(w, err)
		return
	}
	query := queries.GetGraphDataQuery{IncludeInactive: includeInactive}

	var result interface{}
	err = h.tracer.Capture(ctx, "GetGraphData", func(ctx context.Context) error {
		h.tracer.AddAnnotation(ctx, "includeInactive", strconv.FormatBool(query.IncludeInactive))
		var askErr error
		result, askErr = h.queryBus.Ask(ctx, query)
		return askErr
	})
	if err != nil {
		if pkgerrors.IsValidation(err) {
			h.logger.Warn("Graph data query rejected",
				zap.Error(err),
				zap.Bool("includeInactive", query.IncludeInactive),
			)
		} else {
			h.logger.Error("Failed to get graph data",
				zap.Error(err),
				zap.Bool("includeInactive", query.IncludeInactive),
			)
		}
		// Only aggregation failures count against the aggregation metric;
		// canceled requests and rejected queries are not assembly failures.
		if h.collector != nil && pkgerrors.IsAggregation(err) {
			h.collector.ObserveAggregation(time.Since(start), 0, 0, 0, true)
		}
		h.respondError(w, err)
		return
	}

	graphResult, ok := result.(*queries.GetGraphDataResult)
	if !ok || graphResult.Payload == nil {
		h.logger.Error("Unexpected query result type for graph data")
		common.RespondError(w, http.StatusInternalServerError,
			common.StandardErrorCodes.InternalError, "unexpected result type")
		return
	}

	payload := graphResult.Payload
	duration := time.Since(start)

	if h.collector != nil && !graphResult.CacheHit {
		h.collector.ObserveAggregation(duration,
			payload.Metadata.NodeCount,
			payload.Metadata.EdgeCount,
			payload.Metadata.DroppedEdges,
			false,
		)
	}
	if h.publisher != nil {
		go func(d time.Duration, hit bool) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			h.publisher.PublishRequest(pubCtx, d, hit)
		}(duration, graphResult.CacheHit)
	}

	etag := `"` + payload.Metadata.Version + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cacheControlValue)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// Outside the chi middleware chain there is no generated request ID;
	// fall back to the upstream headers.
	requestID := chimiddleware.GetReqID(ctx)
	if requestID == "" {
		requestID = common.ExtractRequestID(r)
	}

	meta := &common.MetaInfo{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &common.PerformanceInfo{
			DurationMs: duration.Milliseconds(),
			QueryCount: graphResult.QueryCount,
			CacheHit:   graphResult.CacheHit,
			Compressed: strings.Contains(r.Header.Get("Accept-Encoding"), "gzip"),
		},
	}

	common.RespondWithMeta(w, http.StatusOK, payload, meta)
}

// InvalidateCache handles POST /graph-data/invalidate. Subsequent requests
// recompute the payload even if cached entries have not yet expired.
func (h *GraphHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate()
	if h.collector != nil {
		h.collector.CacheInvalidations.Inc()
	}
	h.logger.Info("Payload cache invalidated",
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
	)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"invalidated": true})
}

// parseBoolParam reads an optional boolean query parameter. Absent means
// false; anything other than "true" or "false" is a validation error.
func parseBoolParam(r *http.Request, name string) (bool, error) {
	switch raw := r.URL.Query().Get(name); raw {
	case "", "false":
		return false, nil
	case "true":
		return true, nil
	default:
		return false, pkgerrors.NewValidationError(
			fmt.Sprintf("query parameter %q must be true or false", name)).
			WithCode(common.StandardErrorCodes.ValidationError).
			WithDetails(map[string]interface{}{name: raw})
	}
}

// respondError maps application errors to HTTP responses.
func (h *GraphHandler) respondError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		code := appErr.Code
		if code == "" {
			code = string(appErr.Type)
		}
		common.RespondError(w, appErr.HTTPStatus, code, appErr.Message)
		return
	}
	common.RespondError(w, http.StatusInternalServerError,
		common.StandardErrorCodes.InternalError, "internal server error")
}
