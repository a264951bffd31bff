package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker processes lesson lifecycle event jobs from the River queue.
// For now it logs the event; future versions will dispatch to webhooks or
// notification systems.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing lesson event",
		"event", job.Args.Event,
		"lesson_id", job.Args.LessonID,
		"tenant_id", job.Args.TenantID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// LessonPublisher is the slice of the application service the publish worker
// needs. PublishDue drops stale triggers itself, so the worker treats every
// outcome except an infrastructure error as success.
type LessonPublisher interface {
	PublishDue(ctx context.Context, id string) error
}

// PublishWorker fires deferred publish triggers. The service is bound after
// client construction because the service itself enqueues through the same
// River client.
type PublishWorker struct {
	river.WorkerDefaults[PublishJobArgs]

	svc LessonPublisher
}

// Bind attaches the lesson service. Must be called before the client starts.
func (w *PublishWorker) Bind(svc LessonPublisher) {
	w.svc = svc
}

// Work fires the publish trigger for one lesson.
func (w *PublishWorker) Work(ctx context.Context, job *river.Job[PublishJobArgs]) error {
	slog.InfoContext(ctx, "firing publish trigger",
		"lesson_id", job.Args.LessonID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return w.svc.PublishDue(ctx, job.Args.LessonID)
}
