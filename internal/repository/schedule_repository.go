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

// ScheduleRepository provides persistence for weekly schedule blocks.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule blocks with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleBlock, int, error) {
	base := "FROM schedule_blocks s WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM courses c WHERE c.id = s.course_id AND c.teacher_id = $%d)", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("UPPER(s.day_of_week) = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.DayOfWeek))
	}
	if filter.Room != "" {
		conditions = append(conditions, fmt.Sprintf("s.room = $%d", len(args)+1))
		args = append(args, filter.Room)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"start_time":  true,
		"room":        true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT s.id, s.course_id, s.day_of_week, s.start_time, s.end_time, s.room, s.created_at, s.updated_at %s ORDER BY s.%s %s, s.start_time ASC LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule blocks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule blocks: %w", err)
	}

	return blocks, total, nil
}

// ListByCourse returns schedule blocks for a course ordered by day/time.
func (r *ScheduleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleBlock, error) {
	const query = `SELECT id, course_id, day_of_week, start_time, end_time, room, created_at, updated_at FROM schedule_blocks WHERE course_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, courseID); err != nil {
		return nil, fmt.Errorf("list schedule blocks by course: %w", err)
	}
	return blocks, nil
}

// ListByTeacher returns every schedule block of every course a teacher
// teaches, in stable creation order. The auto detector relies on this order
// for its first-match-wins rule.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error) {
	const query = `SELECT s.id, s.course_id, s.day_of_week, s.start_time, s.end_time, s.room, s.created_at, s.updated_at FROM schedule_blocks s JOIN courses c ON c.id = s.course_id WHERE c.teacher_id = $1 ORDER BY s.created_at ASC, s.id ASC`
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, teacherID); err != nil {
		return nil, fmt.Errorf("list schedule blocks by teacher: %w", err)
	}
	return blocks, nil
}

// FindByID loads a schedule block by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error) {
	const query = `SELECT id, course_id, day_of_week, start_time, end_time, room, created_at, updated_at FROM schedule_blocks WHERE id = $1`
	var block models.ScheduleBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// Create stores a new schedule block.
func (r *ScheduleRepository) Create(ctx context.Context, block *models.ScheduleBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	const query = `INSERT INTO schedule_blocks (id, course_id, day_of_week, start_time, end_time, room, created_at, updated_at) VALUES (:id, :course_id, :day_of_week, :start_time, :end_time, :room, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create schedule block: %w", err)
	}
	return nil
}

// Update modifies a schedule block.
func (r *ScheduleRepository) Update(ctx context.Context, block *models.ScheduleBlock) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_blocks SET course_id = :course_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, room = :room, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("update schedule block: %w", err)
	}
	return nil
}

// Delete removes a schedule block by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule block: %w", err)
	}
	return nil
}
