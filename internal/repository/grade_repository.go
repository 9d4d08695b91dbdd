package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// GradeRepository provides persistence for grade entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade entries filtered by course and/or student.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, int, error) {
	base := "FROM grade_entries WHERE 1=1"
	var args []interface{}

	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		base += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		base += fmt.Sprintf(" AND student_id = $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, course_id, student_id, title, score, max_score, graded_by, graded_at, created_at, updated_at %s ORDER BY graded_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grade entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grade entries: %w", err)
	}

	return entries, total, nil
}

// Create stores a new grade entry.
func (r *GradeRepository) Create(ctx context.Context, entry *models.GradeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.GradedAt.IsZero() {
		entry.GradedAt = now
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO grade_entries (id, course_id, student_id, title, score, max_score, graded_by, graded_at, created_at, updated_at) VALUES (:id, :course_id, :student_id, :title, :score, :max_score, :graded_by, :graded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create grade entry: %w", err)
	}
	return nil
}
