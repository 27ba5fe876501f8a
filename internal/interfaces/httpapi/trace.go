package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var handlerTracer = otel.Tracer("fantasy-trade-market/internal/interfaces/httpapi")

// traceHandler opens a child span for one action. Requests that arrive
// without a server span (health probes, filtered paths) get a no-op span.
func traceHandler(r *http.Request, action string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return handlerTracer.Start(ctx, "httpapi."+action, trace.WithSpanKind(trace.SpanKindInternal))
}
