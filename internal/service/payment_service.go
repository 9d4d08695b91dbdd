package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, int, error)
	Create(ctx context.Context, record *models.PaymentRecord) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
}

// CreatePaymentRequest describes payload for creating an invoice.
type CreatePaymentRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	Description string `json:"description" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	DueDate     string `json:"due_date" validate:"required"`
}

// PaymentService coordinates tuition payment tracking.
type PaymentService struct {
	repo      paymentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService instantiates PaymentService.
func NewPaymentService(repo paymentRepository, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, validator: validate, logger: logger}
}

// List returns payment records with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// ListForStudent narrows the listing to one student, optionally by status.
func (s *PaymentService) ListForStudent(ctx context.Context, studentID, status string, page, pageSize int) ([]models.PaymentRecord, *models.Pagination, error) {
	filter := models.PaymentFilter{StudentID: studentID, Page: page, PageSize: pageSize}
	if status != "" {
		st := models.PaymentStatus(strings.ToUpper(status))
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment status")
		}
		filter.Status = &st
	}
	return s.List(ctx, filter)
}

// Create stores a new invoice for a student.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.PaymentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due_date format, expected YYYY-MM-DD")
	}

	record := models.PaymentRecord{
		StudentID:   req.StudentID,
		Description: req.Description,
		AmountCents: req.AmountCents,
		Status:      models.PaymentStatusPending,
		DueDate:     due,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return &record, nil
}

// MarkPaid settles an invoice.
func (s *PaymentService) MarkPaid(ctx context.Context, id string) error {
	if err := s.repo.MarkPaid(ctx, id, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark payment paid")
	}
	return nil
}
