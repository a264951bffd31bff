package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/neomorfeo/lessonforge/internal/domain"
)

// LessonService orchestrates the lesson lifecycle: creation, versioned
// edits, and publication state transitions. Every content-affecting write
// passes domain.ValidateLesson before it is persisted, and every write is
// all-or-nothing, so a failing edit leaves the previous version untouched.
type LessonService struct {
	lessons   domain.LessonRepository
	tenants   domain.TenantRepository
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	queue     domain.PublicationQueue
}

// NewLessonService creates a service with the given adapters.
func NewLessonService(
	lessons domain.LessonRepository,
	tenants domain.TenantRepository,
	validator domain.TransitionValidator,
	publisher domain.EventPublisher,
	queue domain.PublicationQueue,
) *LessonService {
	return &LessonService{
		lessons:   lessons,
		tenants:   tenants,
		validator: validator,
		publisher: publisher,
		queue:     queue,
	}
}

// Create persists a new draft lesson at version 1 under the given tenant.
func (s *LessonService) Create(ctx context.Context, tenantID string, in domain.CreateLessonInput) (domain.Lesson, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return domain.Lesson{}, err
	}

	lesson := domain.NewLesson(newID(), tenantID, in)
	if err := domain.ValidateLesson(lesson); err != nil {
		return domain.Lesson{}, err
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return domain.Lesson{}, fmt.Errorf("creating lesson: %w", err)
	}

	return lesson, nil
}

// Get returns a lesson by its unique identifier.
func (s *LessonService) Get(ctx context.Context, id string) (domain.Lesson, error) {
	return s.lessons.Get(ctx, id)
}

// ListByTenant returns a tenant's lessons, newest-first.
func (s *LessonService) ListByTenant(ctx context.Context, tenantID string) ([]domain.Lesson, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.lessons.ListByTenant(ctx, tenantID)
}

// Edit applies a partial update to a lesson, bumping its version by exactly 1.
// The expectedVersion parameter is a compare-and-swap guard: if the stored
// lesson has moved on, the edit fails with a VersionConflictError and nothing
// is written. Edits are rejected once a lesson is archived.
func (s *LessonService) Edit(ctx context.Context, id string, expectedVersion int, in domain.EditLessonInput) (domain.Lesson, error) {
	lesson, err := s.lessons.Get(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}

	if lesson.Status.Terminal() {
		return domain.Lesson{}, domain.ErrLessonArchived
	}

	if lesson.Version != expectedVersion {
		return domain.Lesson{}, &domain.VersionConflictError{LessonID: id, ExpectedVersion: expectedVersion}
	}

	edited := lesson.Apply(in)
	if err := domain.ValidateLesson(edited); err != nil {
		return domain.Lesson{}, err
	}

	if err := s.lessons.UpdateIfVersionMatches(ctx, edited, expectedVersion); err != nil {
		return domain.Lesson{}, err
	}

	// Rescheduling a scheduled lesson re-arms the deferred publish trigger
	// at the new date; the old trigger is dropped as stale when it fires.
	if in.ScheduledDate != nil && edited.Status == domain.StatusScheduled {
		if err := s.queue.EnqueuePublish(ctx, edited.ID, edited.ScheduledDate); err != nil {
			return domain.Lesson{}, fmt.Errorf("enqueuing publish trigger: %w", err)
		}
	}

	return edited, nil
}

// Transition moves a lesson to the target publication state. Legality comes
// from the transition graph; scheduling additionally requires valid content
// and a future-or-present scheduled date, and publishing re-validates so
// published content is valid by construction. Transitions do not bump the
// version, but they are serialized against concurrent edits through the
// same compare-and-swap write.
func (s *LessonService) Transition(ctx context.Context, id string, target domain.Status) (domain.Lesson, error) {
	lesson, err := s.lessons.Get(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}

	event, err := s.validator.Apply(ctx, lesson.Status, target)
	if err != nil {
		return domain.Lesson{}, err
	}

	switch event {
	case domain.EventSchedule:
		if err := domain.ValidateLesson(lesson); err != nil {
			return domain.Lesson{}, err
		}
		if pastDate(lesson.ScheduledDate) {
			return domain.Lesson{}, &domain.ValidationError{Msg: "scheduled date is in the past"}
		}
	case domain.EventPublish:
		if err := domain.ValidateLesson(lesson); err != nil {
			return domain.Lesson{}, err
		}
		lesson.IsPublished = true
	case domain.EventUnpublish:
		lesson.IsPublished = false
	case domain.EventArchive:
		lesson.IsPublished = false
	}

	lesson.Status = target
	lesson.UpdatedAt = time.Now().UTC()

	if err := s.lessons.UpdateIfVersionMatches(ctx, lesson, lesson.Version); err != nil {
		return domain.Lesson{}, err
	}

	if event == domain.EventSchedule {
		if err := s.queue.EnqueuePublish(ctx, lesson.ID, lesson.ScheduledDate); err != nil {
			return domain.Lesson{}, fmt.Errorf("enqueuing publish trigger: %w", err)
		}
	}

	if err := s.publisher.Publish(ctx, event, lesson); err != nil {
		return domain.Lesson{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return lesson, nil
}

// PublishDue is the deferred publish trigger fired when a lesson's scheduled
// date arrives. A stale trigger is dropped without error: the lesson may have
// been published manually, rescheduled, or archived since it was enqueued.
func (s *LessonService) PublishDue(ctx context.Context, id string) error {
	lesson, err := s.lessons.Get(ctx, id)
	if err != nil {
		return err
	}

	if lesson.Status != domain.StatusScheduled {
		return nil
	}
	if dateOnly(lesson.ScheduledDate).After(dateOnly(time.Now())) {
		// Rescheduled to a later date; a fresh trigger is already queued.
		return nil
	}

	_, err = s.Transition(ctx, id, domain.StatusPublished)
	return err
}

// Questions returns the lesson's discussion questions, in block order.
func (s *LessonService) Questions(ctx context.Context, id string) ([]string, error) {
	lesson, err := s.lessons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return slices.Collect(domain.DiscussionQuestions(lesson)), nil
}

// Projection returns the lesson's blocks flagged for public display.
func (s *LessonService) Projection(ctx context.Context, id string) ([]domain.Block, error) {
	lesson, err := s.lessons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return slices.Collect(domain.ProjectableBlocks(lesson)), nil
}

// pastDate reports whether d falls on a calendar day before today (UTC).
// Date granularity: scheduling for today is allowed.
func pastDate(d time.Time) bool {
	return dateOnly(d).Before(dateOnly(time.Now()))
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
