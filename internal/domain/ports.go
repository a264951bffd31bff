package domain

import (
	"context"
	"time"
)

// TenantRepository defines the persistence contract for tenants.
// Create must be an atomic check-and-insert on slug: two concurrent calls
// with the same slug yield exactly one success and one SlugConflictError.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
	List(ctx context.Context) ([]TenantWithLessonCount, error)
}

// LessonRepository defines the persistence contract for lessons.
// UpdateIfVersionMatches is a compare-and-swap on the stored version:
// concurrent edits against the same starting version yield exactly one
// success and one VersionConflictError, never a silent overwrite.
type LessonRepository interface {
	Create(ctx context.Context, lesson Lesson) error
	Get(ctx context.Context, id string) (Lesson, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Lesson, error)
	UpdateIfVersionMatches(ctx context.Context, lesson Lesson, expectedVersion int) error
}

// TransitionValidator checks publication state changes against the
// transition graph and returns the event that performs the change.
type TransitionValidator interface {
	Apply(ctx context.Context, current, target Status) (Event, error)
}

// EventPublisher defines the contract for emitting lesson lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, lesson Lesson) error
}

// PublicationQueue schedules the deferred publish trigger for a lesson.
// The queue only fires the trigger; transition legality stays with the
// scheduler, so a stale trigger against an edited lesson is a no-op.
type PublicationQueue interface {
	EnqueuePublish(ctx context.Context, lessonID string, at time.Time) error
}
