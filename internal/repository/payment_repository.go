package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// PaymentRepository provides persistence for payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payment records filtered by student and/or status.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, int, error) {
	base := "FROM payment_records WHERE 1=1"
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		base += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
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

	query := fmt.Sprintf("SELECT id, student_id, description, amount_cents, status, due_date, paid_at, created_at, updated_at %s ORDER BY due_date DESC LIMIT %d OFFSET %d", base, size, offset)
	var records []models.PaymentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payment records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payment records: %w", err)
	}

	return records, total, nil
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, record *models.PaymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = models.PaymentStatusPending
	}

	const query = `INSERT INTO payment_records (id, student_id, description, amount_cents, status, due_date, paid_at, created_at, updated_at) VALUES (:id, :student_id, :description, :amount_cents, :status, :due_date, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create payment record: %w", err)
	}
	return nil
}

// MarkPaid flips a payment record to PAID.
func (r *PaymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE payment_records SET status = 'PAID', paid_at = $1, updated_at = $1 WHERE id = $2`, paidAt, id); err != nil {
		return fmt.Errorf("mark payment paid: %w", err)
	}
	return nil
}

// CountUnpaid returns the number of records not yet paid.
func (r *PaymentRepository) CountUnpaid(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payment_records WHERE status <> 'PAID'`); err != nil {
		return 0, fmt.Errorf("count unpaid payments: %w", err)
	}
	return count, nil
}
