package domain

import "time"

// Status represents the publication state of a lesson.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Terminal reports whether a status accepts no further transitions or edits.
func (s Status) Terminal() bool {
	return s == StatusArchived
}

// Event represents an action that triggers a publication state transition.
type Event string

const (
	EventSchedule  Event = "schedule"
	EventPublish   Event = "publish"
	EventUnpublish Event = "unpublish"
	EventArchive   Event = "archive"
)

// Transition defines a valid state change: an event moves a lesson from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid publication state changes.
// This is domain knowledge consumed by the FSM adapter. Archive is valid
// from every non-terminal state and is irreversible; unpublish is the
// deliberate rollback path from published back to scheduled.
var Transitions = []Transition{
	{Event: EventSchedule, Src: StatusDraft, Dst: StatusScheduled},
	{Event: EventPublish, Src: StatusScheduled, Dst: StatusPublished},
	{Event: EventUnpublish, Src: StatusPublished, Dst: StatusScheduled},
	{Event: EventArchive, Src: StatusDraft, Dst: StatusArchived},
	{Event: EventArchive, Src: StatusScheduled, Dst: StatusArchived},
	{Event: EventArchive, Src: StatusPublished, Dst: StatusArchived},
}

// EventFor maps a requested target state to the event that reaches it from
// the current state, or false when no transition exists.
func EventFor(current, target Status) (Event, bool) {
	for _, t := range Transitions {
		if t.Src == current && t.Dst == target {
			return t.Event, true
		}
	}
	return "", false
}

// BlockType discriminates the closed set of content block variants.
type BlockType string

const (
	BlockContext          BlockType = "context"
	BlockScriptureReading BlockType = "scripture_reading"
	BlockTeaching         BlockType = "teaching"
	BlockTeacherNotes     BlockType = "teacher_notes"
	BlockDiscussion       BlockType = "discussion"
	BlockApplication      BlockType = "application"
)

// Known reports whether t is one of the enumerated block variants.
// Unknown types are rejected at validation, never silently accepted.
func (t BlockType) Known() bool {
	switch t {
	case BlockContext, BlockScriptureReading, BlockTeaching,
		BlockTeacherNotes, BlockDiscussion, BlockApplication:
		return true
	}
	return false
}

// Block is one typed section of a lesson's content. Reference and
// Translation are only meaningful on scripture_reading blocks: a citation
// string and a translation label (unrelated to the lesson's version integer).
type Block struct {
	Type        BlockType `json:"type"`
	Content     string    `json:"content"`
	Projectable bool      `json:"projectable"`
	Reference   string    `json:"reference,omitempty"`
	Translation string    `json:"version,omitempty"`
}

// Scripture holds a lesson's primary passage citation plus any additional ones.
type Scripture struct {
	Primary    string   `json:"primary"`
	Additional []string `json:"additional,omitempty"`
}

// Lesson is a unit of structured content belonging to one tenant,
// composed of an ordered block sequence. Block order is presentation
// order and is preserved through every read and write.
type Lesson struct {
	ID            string
	TenantID      string
	Title         string
	Subtitle      *string
	Version       int
	ScheduledDate time.Time
	Status        Status
	IsPublished   bool
	Author        string
	Scripture     Scripture
	Blocks        []Block
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLesson builds a draft lesson at version 1. The caller is expected to
// run ValidateLesson before persisting.
func NewLesson(id, tenantID string, in CreateLessonInput) Lesson {
	now := time.Now().UTC()
	return Lesson{
		ID:            id,
		TenantID:      tenantID,
		Title:         in.Title,
		Subtitle:      normalizeOptional(in.Subtitle),
		Version:       1,
		ScheduledDate: in.ScheduledDate,
		Status:        StatusDraft,
		IsPublished:   false,
		Author:        in.Author,
		Scripture:     in.Scripture,
		Blocks:        in.Blocks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateLessonInput carries caller-supplied fields for lesson creation.
type CreateLessonInput struct {
	Title         string
	Subtitle      *string
	ScheduledDate time.Time
	Author        string
	Scripture     Scripture
	Blocks        []Block
}

// EditLessonInput carries a partial update: nil fields are left unchanged.
// Any accepted edit bumps the lesson version by exactly 1.
type EditLessonInput struct {
	Title         *string
	Subtitle      *string
	ScheduledDate *time.Time
	Author        *string
	Scripture     *Scripture
	Blocks        []Block
}

// Apply returns a copy of the lesson with the edit applied and the version
// incremented. It does not validate; callers must run ValidateLesson on the
// result before persisting.
func (l Lesson) Apply(in EditLessonInput) Lesson {
	out := l
	if in.Title != nil {
		out.Title = *in.Title
	}
	if in.Subtitle != nil {
		out.Subtitle = normalizeOptional(in.Subtitle)
	}
	if in.ScheduledDate != nil {
		out.ScheduledDate = *in.ScheduledDate
	}
	if in.Author != nil {
		out.Author = *in.Author
	}
	if in.Scripture != nil {
		out.Scripture = *in.Scripture
	}
	if in.Blocks != nil {
		out.Blocks = in.Blocks
	}
	out.Version = l.Version + 1
	out.UpdatedAt = time.Now().UTC()
	return out
}
