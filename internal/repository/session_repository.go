package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// SessionRepository provides persistence for class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns class sessions with optional filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error) {
	base := "FROM class_sessions cs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM courses c WHERE c.id = cs.course_id AND c.teacher_id = $%d)", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("cs.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("cs.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT cs.id, cs.course_id, cs.date, cs.start_time, cs.end_time, cs.room, cs.created_at, cs.updated_at %s ORDER BY cs.date %s, cs.start_time %s LIMIT %d OFFSET %d", base, order, order, size, offset)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class sessions: %w", err)
	}

	return sessions, total, nil
}

// ListByTeacherOnDate returns a teacher's sessions on a calendar date in
// stable creation order. The auto detector matches against this list.
func (r *SessionRepository) ListByTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.ClassSession, error) {
	const query = `SELECT cs.id, cs.course_id, cs.date, cs.start_time, cs.end_time, cs.room, cs.created_at, cs.updated_at FROM class_sessions cs JOIN courses c ON c.id = cs.course_id WHERE c.teacher_id = $1 AND cs.date = $2 ORDER BY cs.created_at ASC, cs.id ASC`
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list sessions by teacher on date: %w", err)
	}
	return sessions, nil
}

// FindByID loads a class session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	const query = `SELECT id, course_id, date, start_time, end_time, room, created_at, updated_at FROM class_sessions WHERE id = $1`
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores a new class session.
func (r *SessionRepository) Create(ctx context.Context, session *models.ClassSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO class_sessions (id, course_id, date, start_time, end_time, room, created_at, updated_at) VALUES (:id, :course_id, :date, :start_time, :end_time, :room, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create class session: %w", err)
	}
	return nil
}

// CountOnDate returns the number of sessions on a calendar date.
func (r *SessionRepository) CountOnDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM class_sessions WHERE date = $1`, date); err != nil {
		return 0, fmt.Errorf("count sessions on date: %w", err)
	}
	return count, nil
}
