package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/lessonforge/internal/domain"
)

// Compile-time checks: Publisher implements both queue-facing ports.
var (
	_ domain.EventPublisher   = (*Publisher)(nil)
	_ domain.PublicationQueue = (*Publisher)(nil)
)

// EventJobArgs carries the data needed to process a lesson lifecycle event
// asynchronously. River serializes this as JSON into its job queue table. It
// includes a snapshot of the lesson at the time the event was published, so
// the worker never needs to query the database.
type EventJobArgs struct {
	Event    string `json:"event"`
	LessonID string `json:"lesson_id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Version  int    `json:"version"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "lesson.event" }

// PublishJobArgs is the deferred publish trigger for a scheduled lesson.
// Only the ID is carried: the worker re-reads the lesson when the job fires,
// so a lesson rescheduled or archived in the meantime makes the trigger a
// no-op instead of a wrong publish.
type PublishJobArgs struct {
	LessonID string `json:"lesson_id"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (PublishJobArgs) Kind() string { return "lesson.publish_due" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher and domain.PublicationQueue by
// enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a lesson lifecycle event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, lesson domain.Lesson) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:    string(event),
		LessonID: lesson.ID,
		TenantID: lesson.TenantID,
		Title:    lesson.Title,
		Status:   string(lesson.Status),
		Version:  lesson.Version,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}

// EnqueuePublish schedules a publish trigger to fire at the given time.
func (p *Publisher) EnqueuePublish(ctx context.Context, lessonID string, at time.Time) error {
	_, err := p.client.Insert(ctx, PublishJobArgs{LessonID: lessonID}, &river.InsertOpts{
		ScheduledAt: at,
	})
	if err != nil {
		return fmt.Errorf("enqueuing publish trigger: %w", err)
	}
	return nil
}
