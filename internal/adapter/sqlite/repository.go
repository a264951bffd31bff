package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/lessonforge/internal/domain"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the SQLite connection shared by both repositories.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready store. Use this when the *sql.DB has been pre-configured
// (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Tenants returns the tenant repository backed by this store.
func (s *Store) Tenants() *TenantRepository {
	return &TenantRepository{db: s.db}
}

// Lessons returns the lesson repository backed by this store.
func (s *Store) Lessons() *LessonRepository {
	return &LessonRepository{db: s.db}
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const (
	timeFormat = "2006-01-02T15:04:05Z"
	dateFormat = "2006-01-02"
)

// --- Tenants ---

// TenantRepository implements domain.TenantRepository using SQLite.
// The UNIQUE index on slug makes Create an atomic check-and-insert; the
// table is append-only, so a slug is never reassigned once bound.
type TenantRepository struct {
	db *sql.DB
}

var _ domain.TenantRepository = (*TenantRepository)(nil)

func (r *TenantRepository) Create(ctx context.Context, t domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, slug, address, city, state, zip, phone, website, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Address, t.City, t.State, t.Zip, t.Phone, t.Website,
		t.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SlugConflictError{Slug: t.Slug}
		}
		return fmt.Errorf("inserting tenant: %w", err)
	}
	return nil
}

const tenantColumns = `id, name, slug, address, city, state, zip, phone, website, created_at`

func (r *TenantRepository) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return scanTenant(r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id,
	))
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return scanTenant(r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = ?`, slug,
	))
}

// List returns all tenants newest-first, each with its lesson count
// computed at read time.
func (r *TenantRepository) List(ctx context.Context) ([]domain.TenantWithLessonCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.slug, t.address, t.city, t.state, t.zip, t.phone, t.website, t.created_at,
		        COUNT(l.id)
		 FROM tenants t
		 LEFT JOIN lessons l ON l.tenant_id = t.id
		 GROUP BY t.id
		 ORDER BY t.created_at DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.TenantWithLessonCount
	for rows.Next() {
		var t domain.Tenant
		var createdAt string
		var count int
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Address, &t.City, &t.State,
			&t.Zip, &t.Phone, &t.Website, &createdAt, &count); err != nil {
			return nil, fmt.Errorf("scanning tenant row: %w", err)
		}
		if t.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing tenant created_at: %w", err)
		}
		tenants = append(tenants, domain.TenantWithLessonCount{Tenant: t, LessonCount: count})
	}

	return tenants, rows.Err()
}

func scanTenant(row *sql.Row) (domain.Tenant, error) {
	var t domain.Tenant
	var createdAt string

	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Address, &t.City, &t.State,
		&t.Zip, &t.Phone, &t.Website, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, fmt.Errorf("scanning tenant: %w", err)
	}

	if t.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return domain.Tenant{}, fmt.Errorf("parsing tenant created_at: %w", err)
	}
	return t, nil
}

// --- Lessons ---

// LessonRepository implements domain.LessonRepository using SQLite.
// Blocks and scripture are stored as JSON text; block order is the array
// order, preserved verbatim through every round trip. Updates are guarded
// by `WHERE version = ?` so concurrent writers serialize on the version.
type LessonRepository struct {
	db *sql.DB
}

var _ domain.LessonRepository = (*LessonRepository)(nil)

func (r *LessonRepository) Create(ctx context.Context, l domain.Lesson) error {
	blocks, scripture, err := marshalContent(l)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO lessons (id, tenant_id, title, subtitle, version, scheduled_date,
		                      status, is_published, author, scripture, blocks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.TenantID, l.Title, l.Subtitle, l.Version,
		l.ScheduledDate.Format(dateFormat),
		string(l.Status), boolToInt(l.IsPublished), l.Author, scripture, blocks,
		l.CreatedAt.Format(timeFormat),
		l.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting lesson: %w", err)
	}
	return nil
}

const lessonColumns = `id, tenant_id, title, subtitle, version, scheduled_date,
	status, is_published, author, scripture, blocks, created_at, updated_at`

func (r *LessonRepository) Get(ctx context.Context, id string) (domain.Lesson, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id,
	)

	l, err := scanLesson(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Lesson{}, domain.ErrLessonNotFound
		}
		return domain.Lesson{}, err
	}
	return l, nil
}

func (r *LessonRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons
		 WHERE tenant_id = ?
		 ORDER BY created_at DESC, id DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}

	return lessons, rows.Err()
}

// UpdateIfVersionMatches writes the lesson only if the stored version still
// equals expectedVersion. The conditional UPDATE is the compare-and-swap:
// of two racing writers, exactly one matches and the other gets a
// VersionConflictError.
func (r *LessonRepository) UpdateIfVersionMatches(ctx context.Context, l domain.Lesson, expectedVersion int) error {
	blocks, scripture, err := marshalContent(l)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE lessons
		 SET title = ?, subtitle = ?, version = ?, scheduled_date = ?,
		     status = ?, is_published = ?, author = ?, scripture = ?, blocks = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		l.Title, l.Subtitle, l.Version,
		l.ScheduledDate.Format(dateFormat),
		string(l.Status), boolToInt(l.IsPublished), l.Author, scripture, blocks,
		l.UpdatedAt.Format(timeFormat),
		l.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating lesson: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing lesson from a lost race.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM lessons WHERE id = ?`, l.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return domain.ErrLessonNotFound
		}
		if err != nil {
			return fmt.Errorf("checking lesson existence: %w", err)
		}
		return &domain.VersionConflictError{LessonID: l.ID, ExpectedVersion: expectedVersion}
	}

	return nil
}

func marshalContent(l domain.Lesson) (blocks, scripture []byte, err error) {
	blocks, err = json.Marshal(l.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling blocks: %w", err)
	}
	scripture, err = json.Marshal(l.Scripture)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling scripture: %w", err)
	}
	return blocks, scripture, nil
}

// scanLesson works for both *sql.Row and *sql.Rows via their Scan func.
func scanLesson(scan func(...any) error) (domain.Lesson, error) {
	var l domain.Lesson
	var scheduledDate, status, createdAt, updatedAt string
	var isPublished int
	var scripture, blocks []byte

	err := scan(&l.ID, &l.TenantID, &l.Title, &l.Subtitle, &l.Version, &scheduledDate,
		&status, &isPublished, &l.Author, &scripture, &blocks, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Lesson{}, err
		}
		return domain.Lesson{}, fmt.Errorf("scanning lesson: %w", err)
	}

	l.Status = domain.Status(status)
	l.IsPublished = isPublished != 0
	if l.ScheduledDate, err = time.Parse(dateFormat, scheduledDate); err != nil {
		return domain.Lesson{}, fmt.Errorf("parsing lesson scheduled_date: %w", err)
	}
	if l.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return domain.Lesson{}, fmt.Errorf("parsing lesson created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return domain.Lesson{}, fmt.Errorf("parsing lesson updated_at: %w", err)
	}

	if err := json.Unmarshal(scripture, &l.Scripture); err != nil {
		return domain.Lesson{}, fmt.Errorf("unmarshaling scripture: %w", err)
	}
	if err := json.Unmarshal(blocks, &l.Blocks); err != nil {
		return domain.Lesson{}, fmt.Errorf("unmarshaling blocks: %w", err)
	}

	return l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
