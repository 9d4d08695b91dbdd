package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// AttendanceRepository provides persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the attendance record for one enrollment in one
// session. The (session_id, enrollment_id) pair is unique.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance_records (id, session_id, enrollment_id, status, notes, marked_by, created_at, updated_at)
VALUES (:id, :session_id, :enrollment_id, :status, :notes, :marked_by, :created_at, :updated_at)
ON CONFLICT (session_id, enrollment_id) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}
	return record, nil
}

// BulkUpsert writes several attendance records inside a single transaction.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range records {
		payload := records[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO attendance_records (id, session_id, enrollment_id, status, notes, marked_by, created_at, updated_at)
VALUES (:id, :session_id, :enrollment_id, :status, :notes, :marked_by, :created_at, :updated_at)
ON CONFLICT (session_id, enrollment_id) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`, &payload); err != nil {
			return fmt.Errorf("bulk upsert attendance record: %w", err)
		}
		records[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance upsert: %w", err)
	}
	return nil
}

// ListBySession returns attendance records for a session.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, session_id, enrollment_id, status, notes, marked_by, created_at, updated_at FROM attendance_records WHERE session_id = $1 ORDER BY created_at ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance by session: %w", err)
	}
	return records, nil
}
