package otel

import (
	"context"
	"errors"
	"time"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type Extractor interface {
	Observable
	extractor.Provider
}

type observableExtractor struct {
	model    string
	provider string

	extractor extractor.Provider

	pagesMetric    metric.Int64Counter
	durationMetric metric.Float64Histogram
}

func NewExtractor(provider, model string, p extractor.Provider) Extractor {
	meter := otel.Meter(instrumentationName)

	pagesMetric, _ := meter.Int64Counter("ocr.client.pages",
		metric.WithDescription("Number of pages returned by the OCR service"),
		metric.WithUnit("{page}"),
	)

	durationMetric, _ := meter.Float64Histogram("ocr.client.operation.duration",
		metric.WithDescription("Duration of OCR requests"),
		metric.WithUnit("s"),
	)

	return &observableExtractor{
		extractor: p,

		model:    model,
		provider: provider,

		pagesMetric:    pagesMetric,
		durationMetric: durationMetric,
	}
}

func (p *observableExtractor) otelSetup() {
}

func (p *observableExtractor) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	attrs := append([]KeyValue{
		String("ocr.provider.name", p.provider),
		String("ocr.request.model", p.model),
	}, RunAttrs(ctx)...)

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "ocr "+p.model)
	defer span.End()

	span.SetAttributes(attrs...)
	span.SetAttributes(
		String("ocr.file.name", file.Name),
		Int("ocr.file.size", len(file.Content)),
	)

	timestamp := time.Now()

	result, err := p.extractor.Extract(ctx, file, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		attrs = append(attrs, String("error.type", errorType(err)))
	}

	p.durationMetric.Record(ctx, time.Since(timestamp).Seconds(), metric.WithAttributes(attrs...))

	if result != nil {
		if result.Model != "" {
			span.SetAttributes(String("ocr.response.model", result.Model))
		}

		span.SetAttributes(Int("ocr.response.pages", len(result.Pages)))

		p.pagesMetric.Add(ctx, int64(len(result.Pages)), metric.WithAttributes(attrs...))
	}

	return result, err
}

func errorType(err error) string {
	var serviceErr *extractor.ServiceError

	switch {
	case errors.Is(err, extractor.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, extractor.ErrMalformed):
		return "malformed_response"
	case errors.As(err, &serviceErr):
		return "service"
	}

	return "_OTHER"
}
