package cmd

import (
	"context"

	"github.com/dialboard/server/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func buildTracerProvider(ctx context.Context, tracing config.Tracing) (*sdktrace.TracerProvider, error) {
	options := []otlptracehttp.Option{}
	if tracing.Endpoint != "" {
		options = append(options, otlptracehttp.WithEndpoint(tracing.Endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, options...)
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "dialboard"))),
	)
	otel.SetTracerProvider(provider)
	return provider, nil
}
