// Package tracing настраивает OpenTelemetry с экспортом по OTLP/gRPC.
package tracing

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/qrlink/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// ShutdownFunc сбрасывает буфер спанов и останавливает экспорт
type ShutdownFunc func(ctx context.Context) error

// Init регистрирует глобальный TracerProvider.
// Пустой Endpoint оставляет noop-провайдер по умолчанию.
func Init(ctx context.Context, cfg config.TracingConfig, serviceName string, logger *zap.Logger) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		logger.Info("Трейсинг выключен: OTEL_EXPORTER_OTLP_ENDPOINT не задан")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Трейсинг включён", zap.String("endpoint", cfg.Endpoint))

	return tp.Shutdown, nil
}
