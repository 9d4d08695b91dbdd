package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// EnrollmentRepository provides persistence for course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByCourse returns active enrollments for a course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, enrolled_at, dropped_at, status FROM enrollments WHERE course_id = $1 AND status = 'ACTIVE' ORDER BY enrolled_at ASC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list enrollments by course: %w", err)
	}
	return enrollments, nil
}

// Roster returns the enrolled students of the session's course joined with
// any attendance already recorded for that session, ordered by student name.
func (r *EnrollmentRepository) Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.id AS enrollment_id, u.id AS student_id, u.full_name AS student_name, u.email AS student_email, a.status, a.notes
FROM class_sessions cs
JOIN enrollments e ON e.course_id = cs.course_id AND e.status = 'ACTIVE'
JOIN users u ON u.id = e.student_id
LEFT JOIN attendance_records a ON a.session_id = cs.id AND a.enrollment_id = e.id
WHERE cs.id = $1
ORDER BY u.full_name ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, sessionID); err != nil {
		return nil, fmt.Errorf("load session roster: %w", err)
	}
	return roster, nil
}

// Create stores a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrolled_at, status) VALUES (:id, :student_id, :course_id, :enrolled_at, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Drop marks an enrollment as dropped.
func (r *EnrollmentRepository) Drop(ctx context.Context, id string, droppedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = 'DROPPED', dropped_at = $1 WHERE id = $2`, droppedAt, id); err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	return nil
}
