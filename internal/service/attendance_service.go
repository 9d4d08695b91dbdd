package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	appErrors "github.com/campushub/portal-api/pkg/errors"
	"github.com/campushub/portal-api/pkg/export"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
}

type rosterRepository interface {
	Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error)
}

type attendanceSessionLookup interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
}

// MarkAttendanceRequest describes payload for marking a single student.
type MarkAttendanceRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Status       string  `json:"status" validate:"required,attendance_status"`
	Notes        *string `json:"notes"`
}

// BulkMarkAttendanceRequest marks several students in one call.
type BulkMarkAttendanceRequest struct {
	Items []MarkAttendanceRequest `json:"items" validate:"required,min=1,dive"`
}

// AttendanceService coordinates roster loading and attendance marking for a
// resolved class session.
type AttendanceService struct {
	records   attendanceRepository
	roster    rosterRepository
	sessions  attendanceSessionLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records attendanceRepository, roster rosterRepository, sessions attendanceSessionLookup, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{records: records, roster: roster, sessions: sessions, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Roster returns the session's enrolled students with any recorded statuses.
func (s *AttendanceService) Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	roster, err := s.roster.Roster(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

// Mark records one student's attendance for the session.
func (s *AttendanceService) Mark(ctx context.Context, sessionID, markedBy string, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	record := &models.AttendanceRecord{
		SessionID:    sessionID,
		EnrollmentID: req.EnrollmentID,
		Status:       models.AttendanceStatus(strings.ToUpper(req.Status)),
		Notes:        req.Notes,
		MarkedBy:     markedBy,
	}
	stored, err := s.records.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return stored, nil
}

// BulkMark records attendance for several students atomically.
func (s *AttendanceService) BulkMark(ctx context.Context, sessionID, markedBy string, req BulkMarkAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Items))
	for _, item := range req.Items {
		records = append(records, models.AttendanceRecord{
			SessionID:    sessionID,
			EnrollmentID: item.EnrollmentID,
			Status:       models.AttendanceStatus(strings.ToUpper(item.Status)),
			Notes:        item.Notes,
			MarkedBy:     markedBy,
		})
	}
	if err := s.records.BulkUpsert(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk mark attendance")
	}
	return len(records), nil
}

// ExportSheet renders the session's attendance sheet as CSV or PDF bytes.
func (s *AttendanceService) ExportSheet(ctx context.Context, sessionID, format string) ([]byte, string, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	roster, err := s.roster.Roster(ctx, sessionID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	sheet := export.Sheet{
		Title:   fmt.Sprintf("Attendance %s %s", session.Date.Format("2006-01-02"), session.StartTime),
		Headers: []string{"Student", "Email", "Status", "Notes"},
	}
	for _, entry := range roster {
		status := ""
		if entry.Status != nil {
			status = string(*entry.Status)
		}
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		sheet.Rows = append(sheet.Rows, []string{entry.StudentName, entry.StudentEmail, status, notes})
	}

	switch strings.ToLower(format) {
	case "pdf":
		data, err := export.RenderPDF(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	case "", "csv":
		data, err := export.RenderCSV(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
