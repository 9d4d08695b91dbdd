package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleBlock, int, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleBlock, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error)
	Create(ctx context.Context, block *models.ScheduleBlock) error
	Update(ctx context.Context, block *models.ScheduleBlock) error
	Delete(ctx context.Context, id string) error
}

var clockTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var weekdayNames = map[string]struct{}{
	"MONDAY": {}, "TUESDAY": {}, "WEDNESDAY": {}, "THURSDAY": {},
	"FRIDAY": {}, "SATURDAY": {}, "SUNDAY": {},
}

// CreateScheduleRequest describes payload for creating a schedule block.
type CreateScheduleRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	DayOfWeek string `json:"day_of_week" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
	Room      string `json:"room" validate:"required"`
}

// UpdateScheduleRequest updates an existing schedule block.
type UpdateScheduleRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	DayOfWeek string `json:"day_of_week" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
	Room      string `json:"room" validate:"required"`
}

// ScheduleService coordinates weekly schedule management.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("clock_time", func(fl validator.FieldLevel) bool {
		return clockTimePattern.MatchString(fl.Field().String())
	})
	svc.validator.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := weekdayNames[strings.ToUpper(fl.Field().String())]
		return ok
	})
	return svc
}

// List returns schedule blocks with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleBlock, *models.Pagination, error) {
	blocks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule blocks")
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
	return blocks, pagination, nil
}

// ListByCourse returns schedule blocks for a course.
func (s *ScheduleService) ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleBlock, error) {
	blocks, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course schedule")
	}
	return blocks, nil
}

// ListByTeacher returns the weekly schedule across a teacher's courses.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error) {
	blocks, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedule")
	}
	return blocks, nil
}

// Create inserts a new schedule block. Start must precede end.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.StartTime >= req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	block := models.ScheduleBlock{
		CourseID:  req.CourseID,
		DayOfWeek: normalizeWeekday(req.DayOfWeek),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
	}
	if err := s.repo.Create(ctx, &block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule block")
	}
	return &block, nil
}

// Update modifies an existing schedule block.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.StartTime >= req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule block")
	}

	existing.CourseID = req.CourseID
	existing.DayOfWeek = normalizeWeekday(req.DayOfWeek)
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.Room = req.Room

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule block")
	}
	return existing, nil
}

// Delete removes a schedule block.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule block")
	}
	return nil
}

// normalizeWeekday stores weekdays in title case ("Monday") matching what
// time.Weekday.String produces, so detection can compare case-insensitively
// against consistent data.
func normalizeWeekday(day string) string {
	lower := strings.ToLower(strings.TrimSpace(day))
	if lower == "" {
		return day
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}
