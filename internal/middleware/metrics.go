package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gridsight/internal/infrastructure"
)

// MetricsMiddleware records request count, duration, and in-flight gauge
// for every HTTP request.
type MetricsMiddleware struct {
	metrics *infrastructure.BusinessMetrics
}

// NewMetricsMiddleware creates the metrics middleware from a meter.
func NewMetricsMiddleware(meter metric.Meter) (*MetricsMiddleware, error) {
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &MetricsMiddleware{metrics: metrics}, nil
}

// Handler returns the middleware handler function.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		attrs := []attribute.KeyValue{
			attribute.String("method", r.Method),
			attribute.String("route", getRoutePattern(r)),
			attribute.Int("status_code", ww.Status()),
		}

		m.metrics.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		m.metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	})
}

// getRoutePattern resolves the chi route pattern, falling back to the raw
// path for unmatched requests.
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
