package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/lessonforge/internal/domain"
)

const tracerName = "github.com/neomorfeo/lessonforge/internal/adapter/otel"

// TracingTenantRepository wraps a domain.TenantRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and records
// errors.
type TracingTenantRepository struct {
	next   domain.TenantRepository
	tracer trace.Tracer
}

// Compile-time check: TracingTenantRepository implements domain.TenantRepository.
var _ domain.TenantRepository = (*TracingTenantRepository)(nil)

// NewTracingTenantRepository creates a tracing decorator around the given repository.
func NewTracingTenantRepository(next domain.TenantRepository) *TracingTenantRepository {
	return &TracingTenantRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingTenantRepository) Create(ctx context.Context, tenant domain.Tenant) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.slug", tenant.Slug),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, tenant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingTenantRepository) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByID",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	tenant, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (r *TracingTenantRepository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetBySlug",
		trace.WithAttributes(attribute.String("tenant.slug", slug)),
	)
	defer span.End()

	tenant, err := r.next.GetBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (r *TracingTenantRepository) List(ctx context.Context) ([]domain.TenantWithLessonCount, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.List")
	defer span.End()

	tenants, err := r.next.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

// TracingLessonRepository wraps a domain.LessonRepository with OpenTelemetry
// tracing.
type TracingLessonRepository struct {
	next   domain.LessonRepository
	tracer trace.Tracer
}

// Compile-time check: TracingLessonRepository implements domain.LessonRepository.
var _ domain.LessonRepository = (*TracingLessonRepository)(nil)

// NewTracingLessonRepository creates a tracing decorator around the given repository.
func NewTracingLessonRepository(next domain.LessonRepository) *TracingLessonRepository {
	return &TracingLessonRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingLessonRepository) Create(ctx context.Context, lesson domain.Lesson) error {
	ctx, span := r.tracer.Start(ctx, "LessonRepository.Create",
		trace.WithAttributes(
			attribute.String("lesson.id", lesson.ID),
			attribute.String("tenant.id", lesson.TenantID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, lesson)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingLessonRepository) Get(ctx context.Context, id string) (domain.Lesson, error) {
	ctx, span := r.tracer.Start(ctx, "LessonRepository.Get",
		trace.WithAttributes(attribute.String("lesson.id", id)),
	)
	defer span.End()

	lesson, err := r.next.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return lesson, err
}

func (r *TracingLessonRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Lesson, error) {
	ctx, span := r.tracer.Start(ctx, "LessonRepository.ListByTenant",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	lessons, err := r.next.ListByTenant(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(lessons)))
	}
	return lessons, err
}

func (r *TracingLessonRepository) UpdateIfVersionMatches(ctx context.Context, lesson domain.Lesson, expectedVersion int) error {
	ctx, span := r.tracer.Start(ctx, "LessonRepository.UpdateIfVersionMatches",
		trace.WithAttributes(
			attribute.String("lesson.id", lesson.ID),
			attribute.Int("lesson.version", lesson.Version),
			attribute.Int("lesson.expected_version", expectedVersion),
		),
	)
	defer span.End()

	err := r.next.UpdateIfVersionMatches(ctx, lesson, expectedVersion)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
