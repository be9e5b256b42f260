package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/gymdesk/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "gymdesk/http"

// idAttributes maps an API resource to the attribute its :id param is
// recorded under.
var idAttributes = map[string]attribute.Key{
	"invoices":     "invoice_id",
	"tax-settings": "tax_setting_id",
}

// GinMiddleware opens a server span per request. Spans are named after the
// matched route and tagged with the billing resource it addresses, so one
// session or invoice can be followed across requests.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, spanName(c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(SafeAttributes(routeAttributes(c, route)...)...),
		)
		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)

		switch {
		case status >= http.StatusInternalServerError:
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		case status == http.StatusConflict:
			// Refused selections and repeated saves are part of normal editing.
			span.AddEvent("billing.conflict")
		case status == http.StatusTooManyRequests:
			span.AddEvent("rate_limited")
		}
		span.End()
	}
}

func spanName(method, route string) string {
	return "HTTP " + strings.ToUpper(method) + " " + route
}

// routeAttributes derives resource attributes from an /api/<resource>/...
// route and its params.
func routeAttributes(c *gin.Context, route string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}

	resource := routeResource(route)
	if resource == "" {
		return attrs
	}
	attrs = append(attrs, attribute.String("billing.resource", resource))

	if sessionID := strings.TrimSpace(c.Param("session_id")); sessionID != "" {
		attrs = append(attrs, attribute.String("session_id", sessionID))
	}
	if key, ok := idAttributes[resource]; ok {
		if id := strings.TrimSpace(c.Param("id")); id != "" {
			attrs = append(attrs, key.String(id))
		}
	}
	return attrs
}

func routeResource(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}
