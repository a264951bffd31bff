package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/lessonforge/internal/adapter/sqlite"
	"github.com/neomorfeo/lessonforge/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testTenant(id, slug string) domain.Tenant {
	city := "Austin"
	return domain.Tenant{
		ID:        id,
		Name:      "Grace Chapel",
		Slug:      slug,
		City:      &city,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func testLesson(id, tenantID string) domain.Lesson {
	return domain.Lesson{
		ID:            id,
		TenantID:      tenantID,
		Title:         "The Prodigal Son",
		Version:       1,
		ScheduledDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		Status:        domain.StatusDraft,
		Author:        "J. Smith",
		Scripture:     domain.Scripture{Primary: "Luke 15:11-32", Additional: []string{"Psalm 103:8-13"}},
		Blocks: []domain.Block{
			{Type: domain.BlockContext, Content: "Parables of the lost", Projectable: true},
			{Type: domain.BlockScriptureReading, Content: "Read aloud", Reference: "Luke 15:11-32", Translation: "NIV"},
			{Type: domain.BlockDiscussion, Content: "- What stood out?"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func mustCreateTenant(t *testing.T, store *sqlite.Store, tenant domain.Tenant) {
	t.Helper()
	if err := store.Tenants().Create(context.Background(), tenant); err != nil {
		t.Fatalf("creating tenant: %v", err)
	}
}

func mustCreateLesson(t *testing.T, store *sqlite.Store, lesson domain.Lesson) {
	t.Helper()
	if err := store.Lessons().Create(context.Background(), lesson); err != nil {
		t.Fatalf("creating lesson: %v", err)
	}
}

// --- Tenants ---

func TestTenantCreate_And_GetBySlug(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))

	got, err := store.Tenants().GetBySlug(ctx, "grace-chapel")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got.ID != "t-1" {
		t.Errorf("ID = %q, want %q", got.ID, "t-1")
	}
	if got.Name != "Grace Chapel" {
		t.Errorf("Name = %q, want %q", got.Name, "Grace Chapel")
	}
	if got.City == nil || *got.City != "Austin" {
		t.Errorf("City = %v, want %q", got.City, "Austin")
	}
	if got.Address != nil {
		t.Errorf("Address = %v, want nil for absent optional field", *got.Address)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestTenantGetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Tenants().GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestTenantGetBySlug_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Tenants().GetBySlug(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestTenantCreate_DuplicateSlug(t *testing.T) {
	store := newTestStore(t)

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))

	err := store.Tenants().Create(context.Background(), testTenant("t-2", "grace-chapel"))
	var slugErr *domain.SlugConflictError
	if !errors.As(err, &slugErr) {
		t.Fatalf("expected SlugConflictError, got %v", err)
	}
	if slugErr.Slug != "grace-chapel" {
		t.Errorf("slug = %q, want %q", slugErr.Slug, "grace-chapel")
	}
}

func TestTenantList_NewestFirstWithLessonCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testTenant("t-1", "first-baptist")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	mustCreateTenant(t, store, older)
	mustCreateTenant(t, store, testTenant("t-2", "grace-chapel"))

	mustCreateLesson(t, store, testLesson("l-1", "t-2"))
	l2 := testLesson("l-2", "t-2")
	mustCreateLesson(t, store, l2)

	tenants, err := store.Tenants().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("got %d tenants, want 2", len(tenants))
	}
	if tenants[0].Slug != "grace-chapel" {
		t.Errorf("first listed = %q, want newest %q", tenants[0].Slug, "grace-chapel")
	}
	if tenants[0].LessonCount != 2 {
		t.Errorf("LessonCount = %d, want 2", tenants[0].LessonCount)
	}
	if tenants[1].LessonCount != 0 {
		t.Errorf("LessonCount = %d, want 0", tenants[1].LessonCount)
	}
}

// --- Lessons ---

func TestLessonCreate_And_Get(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	mustCreateLesson(t, store, testLesson("l-1", "t-1"))

	got, err := store.Lessons().Get(ctx, "l-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Title != "The Prodigal Son" {
		t.Errorf("Title = %q, want %q", got.Title, "The Prodigal Son")
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if got.Status != domain.StatusDraft {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusDraft)
	}
	if got.IsPublished {
		t.Error("IsPublished should round-trip as false")
	}
	if got.Scripture.Primary != "Luke 15:11-32" {
		t.Errorf("Scripture.Primary = %q, want %q", got.Scripture.Primary, "Luke 15:11-32")
	}
	if len(got.Scripture.Additional) != 1 {
		t.Errorf("got %d additional references, want 1", len(got.Scripture.Additional))
	}
	if got.ScheduledDate != time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC) {
		t.Errorf("ScheduledDate = %v", got.ScheduledDate)
	}

	// Block order is presentation order and must survive the round trip.
	if len(got.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(got.Blocks))
	}
	wantTypes := []domain.BlockType{domain.BlockContext, domain.BlockScriptureReading, domain.BlockDiscussion}
	for i, want := range wantTypes {
		if got.Blocks[i].Type != want {
			t.Errorf("block[%d].Type = %q, want %q", i, got.Blocks[i].Type, want)
		}
	}
	if got.Blocks[1].Reference != "Luke 15:11-32" {
		t.Errorf("Reference = %q, want %q", got.Blocks[1].Reference, "Luke 15:11-32")
	}
	if got.Blocks[1].Translation != "NIV" {
		t.Errorf("Translation = %q, want %q", got.Blocks[1].Translation, "NIV")
	}
	if !got.Blocks[0].Projectable {
		t.Error("Projectable should round-trip as true")
	}
}

func TestLessonGet_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Lessons().Get(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrLessonNotFound) {
		t.Errorf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestLessonListByTenant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	mustCreateTenant(t, store, testTenant("t-2", "first-baptist"))

	l1 := testLesson("l-1", "t-1")
	l1.CreatedAt = l1.CreatedAt.Add(-time.Hour)
	mustCreateLesson(t, store, l1)
	mustCreateLesson(t, store, testLesson("l-2", "t-1"))
	mustCreateLesson(t, store, testLesson("l-3", "t-2"))

	lessons, err := store.Lessons().ListByTenant(ctx, "t-1")
	if err != nil {
		t.Fatalf("ListByTenant failed: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("got %d lessons, want 2", len(lessons))
	}
	if lessons[0].ID != "l-2" {
		t.Errorf("first listed = %q, want newest %q", lessons[0].ID, "l-2")
	}
}

func TestLessonUpdateIfVersionMatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	lesson := testLesson("l-1", "t-1")
	mustCreateLesson(t, store, lesson)

	lesson.Title = "Revised"
	lesson.Version = 2

	if err := store.Lessons().UpdateIfVersionMatches(ctx, lesson, 1); err != nil {
		t.Fatalf("UpdateIfVersionMatches failed: %v", err)
	}

	got, _ := store.Lessons().Get(ctx, "l-1")
	if got.Title != "Revised" {
		t.Errorf("Title = %q, want %q", got.Title, "Revised")
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
}

func TestLessonUpdate_VersionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	lesson := testLesson("l-1", "t-1")
	mustCreateLesson(t, store, lesson)

	// Someone else already moved the lesson to version 2.
	bumped := lesson
	bumped.Version = 2
	if err := store.Lessons().UpdateIfVersionMatches(ctx, bumped, 1); err != nil {
		t.Fatalf("setup update failed: %v", err)
	}

	stale := lesson
	stale.Title = "Stale edit"
	stale.Version = 2
	err := store.Lessons().UpdateIfVersionMatches(ctx, stale, 1)

	var confErr *domain.VersionConflictError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected VersionConflictError, got %v", err)
	}
	if confErr.LessonID != "l-1" {
		t.Errorf("LessonID = %q, want %q", confErr.LessonID, "l-1")
	}

	// The losing write must not have touched the row.
	got, _ := store.Lessons().Get(ctx, "l-1")
	if got.Title != "The Prodigal Son" {
		t.Errorf("Title = %q, lost update detected", got.Title)
	}
}

func TestTenantGet_CorruptedTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	if _, err := store.DB().ExecContext(ctx,
		`UPDATE tenants SET created_at = 'not-a-timestamp' WHERE id = ?`, "t-1"); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	if _, err := store.Tenants().GetByID(ctx, "t-1"); err == nil {
		t.Error("expected error for corrupted created_at, got nil")
	}
	if _, err := store.Tenants().List(ctx); err == nil {
		t.Error("expected error for corrupted created_at in list, got nil")
	}
}

func TestLessonGet_CorruptedDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateTenant(t, store, testTenant("t-1", "grace-chapel"))
	mustCreateLesson(t, store, testLesson("l-1", "t-1"))
	if _, err := store.DB().ExecContext(ctx,
		`UPDATE lessons SET scheduled_date = 'someday' WHERE id = ?`, "l-1"); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	if _, err := store.Lessons().Get(ctx, "l-1"); err == nil {
		t.Error("expected error for corrupted scheduled_date, got nil")
	}
}

func TestLessonUpdate_NotFound(t *testing.T) {
	store := newTestStore(t)

	lesson := testLesson("nonexistent", "t-1")
	err := store.Lessons().UpdateIfVersionMatches(context.Background(), lesson, 1)
	if !errors.Is(err, domain.ErrLessonNotFound) {
		t.Errorf("expected ErrLessonNotFound, got %v", err)
	}
}
