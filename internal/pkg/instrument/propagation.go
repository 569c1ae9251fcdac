package instrument

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

var propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

// TraceHeaders returns the W3C trace context of ctx as broker headers, so a
// consumer span joins the trace of the request that published the event.
// It is empty when ctx carries no sampled span.
func TraceHeaders(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier
}

// WithRemoteTrace returns ctx with the remote span found in headers as its
// parent. Unknown or missing headers leave ctx unchanged.
func WithRemoteTrace(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}
	return propagator.Extract(ctx, propagation.MapCarrier(headers))
}
