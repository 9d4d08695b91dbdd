package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, int, error)
	Create(ctx context.Context, entry *models.GradeEntry) error
}

// RecordGradeRequest describes payload for recording a grade.
type RecordGradeRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Score     float64 `json:"score" validate:"min=0"`
	MaxScore  float64 `json:"max_score" validate:"required,gt=0"`
}

// GradeService coordinates grade listing and recording.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService instantiates GradeService.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// List returns grade entries with pagination metadata.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return entries, pagination, nil
}

// Record stores a grade entry for a student in a course. Scores above the
// maximum are rejected.
func (s *GradeService) Record(ctx context.Context, courseID, gradedBy string, req RecordGradeRequest) (*models.GradeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.Score > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score cannot exceed max_score")
	}

	entry := models.GradeEntry{
		CourseID:  courseID,
		StudentID: req.StudentID,
		Title:     req.Title,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		GradedBy:  gradedBy,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	return &entry, nil
}
