package otel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

type KeyValue = attribute.KeyValue

func String(key string, val string) KeyValue {
	return attribute.String(key, val)
}

func Int(key string, val int) KeyValue {
	return attribute.Int(key, val)
}

type runKey struct{}

// WithRunID tags ctx with the id of the current batch run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runKey{}, id)
}

// RunID is the resource and span attribute carrying a batch run id.
func RunID(id string) KeyValue {
	return attribute.String("ocr.run.id", id)
}

func RunAttrs(ctx context.Context) []KeyValue {
	var attrs []KeyValue

	if id, ok := ctx.Value(runKey{}).(string); ok && id != "" {
		attrs = append(attrs, RunID(id))
	}

	return attrs
}

// HTTPClient returns a client whose requests are traced.
func HTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
