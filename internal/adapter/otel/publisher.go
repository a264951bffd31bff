package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/lessonforge/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, lesson domain.Lesson) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("lesson.id", lesson.ID),
			attribute.String("tenant.id", lesson.TenantID),
			attribute.String("lesson.status", string(lesson.Status)),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event, lesson)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// TracingQueue wraps a domain.PublicationQueue with OpenTelemetry tracing.
type TracingQueue struct {
	next   domain.PublicationQueue
	tracer trace.Tracer
}

// Compile-time check: TracingQueue implements domain.PublicationQueue.
var _ domain.PublicationQueue = (*TracingQueue)(nil)

// NewTracingQueue creates a tracing decorator around the given queue.
func NewTracingQueue(next domain.PublicationQueue) *TracingQueue {
	return &TracingQueue{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (q *TracingQueue) EnqueuePublish(ctx context.Context, lessonID string, at time.Time) error {
	ctx, span := q.tracer.Start(ctx, "PublicationQueue.EnqueuePublish",
		trace.WithAttributes(
			attribute.String("lesson.id", lessonID),
			attribute.String("publish.at", at.Format(time.RFC3339)),
		),
	)
	defer span.End()

	err := q.next.EnqueuePublish(ctx, lessonID, at)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
