package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/lessonforge/internal/app"
	"github.com/neomorfeo/lessonforge/internal/domain"
)

const (
	timeFormat = "2006-01-02T15:04:05Z"
	dateFormat = "2006-01-02"
)

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID        string  `json:"id" doc:"Unique identifier"`
	Name      string  `json:"name" doc:"Display name"`
	Slug      string  `json:"slug" doc:"URL-friendly identifier"`
	Address   *string `json:"address,omitempty" doc:"Street address"`
	City      *string `json:"city,omitempty" doc:"City"`
	State     *string `json:"state,omitempty" doc:"State or region"`
	Zip       *string `json:"zip,omitempty" doc:"Postal code"`
	Phone     *string `json:"phone,omitempty" doc:"Contact phone"`
	Website   *string `json:"website,omitempty" doc:"Public website URL"`
	CreatedAt string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

// TenantListItem is a tenant plus its derived lesson count.
type TenantListItem struct {
	TenantResponse
	LessonCount int `json:"lesson_count" doc:"Number of lessons owned by this tenant"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Address:   t.Address,
		City:      t.City,
		State:     t.State,
		Zip:       t.Zip,
		Phone:     t.Phone,
		Website:   t.Website,
		CreatedAt: t.CreatedAt.Format(timeFormat),
	}
}

// ScripturePayload is the API shape of a lesson's scripture citations.
type ScripturePayload struct {
	Primary    string   `json:"primary" doc:"Primary passage citation"`
	Additional []string `json:"additional,omitempty" doc:"Additional passage citations"`
}

// BlockPayload is the API shape of one content block. Reference and version
// apply to scripture_reading blocks: a citation string and a translation label.
type BlockPayload struct {
	Type        string `json:"type" doc:"Block variant (context, scripture_reading, teaching, teacher_notes, discussion, application)"`
	Content     string `json:"content" doc:"Rich text body"`
	Projectable bool   `json:"projectable,omitempty" doc:"Suitable for public/shared display"`
	Reference   string `json:"reference,omitempty" doc:"Passage citation (scripture_reading only)"`
	Version     string `json:"version,omitempty" doc:"Translation label (scripture_reading only)"`
}

// LessonResponse is the API representation of a lesson.
type LessonResponse struct {
	ID            string           `json:"id" doc:"Unique identifier"`
	TenantID      string           `json:"tenant_id" doc:"Owning tenant"`
	Title         string           `json:"title" doc:"Lesson title"`
	Subtitle      *string          `json:"subtitle,omitempty" doc:"Lesson subtitle"`
	Version       int              `json:"version" doc:"Monotonic edit version"`
	ScheduledDate string           `json:"scheduled_date" doc:"Calendar date (YYYY-MM-DD)"`
	Status        string           `json:"status" doc:"Publication state"`
	IsPublished   bool             `json:"is_published" doc:"Whether the lesson is live"`
	Author        string           `json:"author" doc:"Lesson author"`
	Scripture     ScripturePayload `json:"scripture" doc:"Scripture citations"`
	Blocks        []BlockPayload   `json:"blocks" doc:"Ordered content blocks"`
	CreatedAt     string           `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt     string           `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toLessonResponse(l domain.Lesson) LessonResponse {
	blocks := make([]BlockPayload, len(l.Blocks))
	for i, b := range l.Blocks {
		blocks[i] = BlockPayload{
			Type:        string(b.Type),
			Content:     b.Content,
			Projectable: b.Projectable,
			Reference:   b.Reference,
			Version:     b.Translation,
		}
	}
	return LessonResponse{
		ID:            l.ID,
		TenantID:      l.TenantID,
		Title:         l.Title,
		Subtitle:      l.Subtitle,
		Version:       l.Version,
		ScheduledDate: l.ScheduledDate.Format(dateFormat),
		Status:        string(l.Status),
		IsPublished:   l.IsPublished,
		Author:        l.Author,
		Scripture:     ScripturePayload{Primary: l.Scripture.Primary, Additional: l.Scripture.Additional},
		Blocks:        blocks,
		CreatedAt:     l.CreatedAt.Format(timeFormat),
		UpdatedAt:     l.UpdatedAt.Format(timeFormat),
	}
}

func toDomainBlocks(blocks []BlockPayload) []domain.Block {
	if blocks == nil {
		return nil
	}
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		out[i] = domain.Block{
			Type:        domain.BlockType(b.Type),
			Content:     b.Content,
			Projectable: b.Projectable,
			Reference:   b.Reference,
			Translation: b.Version,
		}
	}
	return out
}

// --- Register Tenant ---

type RegisterTenantInput struct {
	Body struct {
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Slug    string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-friendly identifier (lowercase, hyphens)"`
		Address string `json:"address,omitempty" doc:"Street address"`
		City    string `json:"city,omitempty" doc:"City"`
		State   string `json:"state,omitempty" doc:"State or region"`
		Zip     string `json:"zip,omitempty" doc:"Postal code"`
		Phone   string `json:"phone,omitempty" doc:"Contact phone"`
		Website string `json:"website,omitempty" doc:"Public website URL"`
	}
}

type RegisterTenantOutput struct {
	Body TenantResponse
}

// --- Get Tenant ---

type GetTenantInput struct {
	Slug string `path:"slug" doc:"Tenant slug"`
}

type GetTenantOutput struct {
	Body TenantResponse
}

// --- List Tenants ---

type ListTenantsOutput struct {
	Body []TenantListItem
}

// --- Create Lesson ---

type CreateLessonInput struct {
	TenantID string `path:"id" doc:"Owning tenant ID"`
	Body     struct {
		Title         string           `json:"title" doc:"Lesson title"`
		Subtitle      string           `json:"subtitle,omitempty" doc:"Lesson subtitle"`
		ScheduledDate string           `json:"scheduled_date" doc:"Calendar date (YYYY-MM-DD)"`
		Author        string           `json:"author,omitempty" doc:"Lesson author"`
		Scripture     ScripturePayload `json:"scripture" doc:"Scripture citations"`
		Blocks        []BlockPayload   `json:"blocks" doc:"Ordered content blocks"`
	}
}

type CreateLessonOutput struct {
	Body LessonResponse
}

// --- Get / List Lessons ---

type GetLessonInput struct {
	ID string `path:"id" doc:"Lesson ID"`
}

type GetLessonOutput struct {
	Body LessonResponse
}

type ListLessonsInput struct {
	TenantID string `path:"id" doc:"Owning tenant ID"`
}

type ListLessonsOutput struct {
	Body []LessonResponse
}

// --- Edit Lesson ---

type EditLessonInput struct {
	ID   string `path:"id" doc:"Lesson ID"`
	Body struct {
		ExpectedVersion int               `json:"expected_version" minimum:"1" doc:"Version the edit is based on (optimistic concurrency)"`
		Title           *string           `json:"title,omitempty" doc:"New title"`
		Subtitle        *string           `json:"subtitle,omitempty" doc:"New subtitle"`
		ScheduledDate   *string           `json:"scheduled_date,omitempty" doc:"New calendar date (YYYY-MM-DD)"`
		Author          *string           `json:"author,omitempty" doc:"New author"`
		Scripture       *ScripturePayload `json:"scripture,omitempty" doc:"New scripture citations"`
		Blocks          []BlockPayload    `json:"blocks,omitempty" doc:"New ordered content blocks"`
	}
}

type EditLessonOutput struct {
	Body LessonResponse
}

// --- Transition ---

type TransitionLessonInput struct {
	ID   string `path:"id" doc:"Lesson ID"`
	Body struct {
		State string `json:"state" doc:"Target publication state" enum:"scheduled,published,archived"`
	}
}

type TransitionLessonOutput struct {
	Body LessonResponse
}

// --- Questions / Projection ---

type QuestionsOutput struct {
	Body []string
}

type ProjectionOutput struct {
	Body []BlockPayload
}

// Register adds all tenant and lesson API routes to the Huma API.
func Register(api huma.API, tenants *app.TenantService, lessons *app.LessonService) {
	huma.Register(api, huma.Operation{
		OperationID: "register-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants",
		Summary:     "Register a new tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *RegisterTenantInput) (*RegisterTenantOutput, error) {
		tenant, err := tenants.Register(ctx, domain.RegisterTenantInput{
			Name:    input.Body.Name,
			Slug:    input.Body.Slug,
			Address: optional(input.Body.Address),
			City:    optional(input.Body.City),
			State:   optional(input.Body.State),
			Zip:     optional(input.Body.Zip),
			Phone:   optional(input.Body.Phone),
			Website: optional(input.Body.Website),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegisterTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants with lesson counts, newest first",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*ListTenantsOutput, error) {
		list, err := tenants.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantListItem, len(list))
		for i, t := range list {
			resp[i] = TenantListItem{
				TenantResponse: toTenantResponse(t.Tenant),
				LessonCount:    t.LessonCount,
			}
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{slug}",
		Summary:     "Get a tenant by slug",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		tenant, err := tenants.FindBySlug(ctx, input.Slug)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-lesson",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/lessons",
		Summary:     "Create a draft lesson under a tenant",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *CreateLessonInput) (*CreateLessonOutput, error) {
		date, err := time.Parse(dateFormat, input.Body.ScheduledDate)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("scheduled_date must be YYYY-MM-DD")
		}

		lesson, err := lessons.Create(ctx, input.TenantID, domain.CreateLessonInput{
			Title:         input.Body.Title,
			Subtitle:      optional(input.Body.Subtitle),
			ScheduledDate: date,
			Author:        input.Body.Author,
			Scripture:     domain.Scripture{Primary: input.Body.Scripture.Primary, Additional: input.Body.Scripture.Additional},
			Blocks:        toDomainBlocks(input.Body.Blocks),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateLessonOutput{Body: toLessonResponse(lesson)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-lessons",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/lessons",
		Summary:     "List a tenant's lessons, newest first",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *ListLessonsInput) (*ListLessonsOutput, error) {
		list, err := lessons.ListByTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]LessonResponse, len(list))
		for i, l := range list {
			resp[i] = toLessonResponse(l)
		}
		return &ListLessonsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lesson",
		Method:      http.MethodGet,
		Path:        "/api/v1/lessons/{id}",
		Summary:     "Get a lesson by ID",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *GetLessonInput) (*GetLessonOutput, error) {
		lesson, err := lessons.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetLessonOutput{Body: toLessonResponse(lesson)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-lesson",
		Method:      http.MethodPatch,
		Path:        "/api/v1/lessons/{id}",
		Summary:     "Edit a lesson (bumps version by 1)",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *EditLessonInput) (*EditLessonOutput, error) {
		edit := domain.EditLessonInput{
			Title:    input.Body.Title,
			Subtitle: input.Body.Subtitle,
			Author:   input.Body.Author,
			Blocks:   toDomainBlocks(input.Body.Blocks),
		}
		if input.Body.ScheduledDate != nil {
			date, err := time.Parse(dateFormat, *input.Body.ScheduledDate)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity("scheduled_date must be YYYY-MM-DD")
			}
			edit.ScheduledDate = &date
		}
		if input.Body.Scripture != nil {
			edit.Scripture = &domain.Scripture{
				Primary:    input.Body.Scripture.Primary,
				Additional: input.Body.Scripture.Additional,
			}
		}

		lesson, err := lessons.Edit(ctx, input.ID, input.Body.ExpectedVersion, edit)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EditLessonOutput{Body: toLessonResponse(lesson)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-lesson",
		Method:      http.MethodPost,
		Path:        "/api/v1/lessons/{id}/transitions",
		Summary:     "Move a lesson to a new publication state",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *TransitionLessonInput) (*TransitionLessonOutput, error) {
		lesson, err := lessons.Transition(ctx, input.ID, domain.Status(input.Body.State))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionLessonOutput{Body: toLessonResponse(lesson)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lesson-questions",
		Method:      http.MethodGet,
		Path:        "/api/v1/lessons/{id}/questions",
		Summary:     "List a lesson's discussion questions",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *GetLessonInput) (*QuestionsOutput, error) {
		questions, err := lessons.Questions(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		if questions == nil {
			questions = []string{}
		}
		return &QuestionsOutput{Body: questions}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lesson-projection",
		Method:      http.MethodGet,
		Path:        "/api/v1/lessons/{id}/projection",
		Summary:     "List a lesson's blocks flagged for shared display",
		Tags:        []string{"Lessons"},
	}, func(ctx context.Context, input *GetLessonInput) (*ProjectionOutput, error) {
		blocks, err := lessons.Projection(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]BlockPayload, len(blocks))
		for i, b := range blocks {
			resp[i] = BlockPayload{
				Type:        string(b.Type),
				Content:     b.Content,
				Projectable: b.Projectable,
				Reference:   b.Reference,
				Version:     b.Translation,
			}
		}
		return &ProjectionOutput{Body: resp}, nil
	})
}

// optional converts an empty form value to an absent one.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return huma.Error404NotFound("tenant not found")
	}
	if errors.Is(err, domain.ErrLessonNotFound) {
		return huma.Error404NotFound("lesson not found")
	}
	if errors.Is(err, domain.ErrLessonArchived) {
		return huma.Error422UnprocessableEntity("lesson is archived")
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error422UnprocessableEntity(vErr.Error())
	}

	var slugErr *domain.SlugConflictError
	if errors.As(err, &slugErr) {
		return huma.Error409Conflict(slugErr.Error())
	}

	var verErr *domain.VersionConflictError
	if errors.As(err, &verErr) {
		return huma.Error409Conflict(verErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
