package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation функция, выполняемая внутри span
type Operation func(ctx context.Context) error

// Traced оборачивает операцию в span и записывает её исход
func Traced(ctx context.Context, name string, op Operation, attrs ...attribute.KeyValue) error {
	ctx, span := StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := op(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// TracedStage оборачивает этап конвейера оптимизации
// Имя этапа попадает в атрибут pipeline.stage
func TracedStage(ctx context.Context, stage string, op Operation) error {
	return Traced(ctx, "pipeline."+stage, op,
		attribute.String("pipeline.stage", stage),
	)
}
