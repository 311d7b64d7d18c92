package otel

import (
	"context"
	"errors"
	"log/slog"
	"os"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

const instrumentationName = "github.com/adrianliechti/mistral-ocr"

var (
	EnableDebug     = false
	EnableTelemetry = false
)

func init() {
	EnableDebug = os.Getenv("DEBUG") != ""
	EnableTelemetry = os.Getenv("TELEMETRY") != ""
}

type Observable interface {
	otelSetup()
}

type ShutdownFunc func(ctx context.Context) error

// Setup installs the default slog logger and, when TELEMETRY is set, the
// OTLP log, metric and trace pipelines. attrs are added to the resource of
// every exported signal. The returned func flushes them.
func Setup(ctx context.Context, name, version string, attrs ...KeyValue) (ShutdownFunc, error) {
	level := slog.LevelInfo

	if EnableDebug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if !EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}

	resource, err := newResource(name, version, attrs...)

	if err != nil {
		return nil, err
	}

	var shutdowns []ShutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error

		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}

		return errors.Join(errs...)
	}

	for _, setup := range []func(context.Context, *sdkresource.Resource) (ShutdownFunc, error){
		setupTracer,
		setupMeter,
		setupLogger,
	} {
		fn, err := setup(ctx, resource)

		if err != nil {
			shutdown(ctx)
			return nil, err
		}

		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}

func newResource(name, version string, attrs ...KeyValue) (*sdkresource.Resource, error) {
	attrs = append([]KeyValue{
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	}, attrs...)

	return sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(attrs...),
	)
}
