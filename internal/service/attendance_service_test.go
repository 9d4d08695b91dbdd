package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/models"
)

type mockAttendanceRepo struct {
	upserted []models.AttendanceRecord
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	record.ID = "rec-1"
	m.upserted = append(m.upserted, *record)
	return record, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error {
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockAttendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	return m.upserted, nil
}

type mockRosterRepo struct {
	roster []models.RosterEntry
}

func (m *mockRosterRepo) Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	return m.roster, nil
}

type mockSessionLookup struct {
	session *models.ClassSession
	err     error
}

func (m *mockSessionLookup) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func testSession() *models.ClassSession {
	return &models.ClassSession{
		ID:        "session-1",
		CourseID:  "course-1",
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

func sampleRoster() []models.RosterEntry {
	present := models.AttendanceStatusPresent
	return []models.RosterEntry{
		{EnrollmentID: "e1", StudentID: "s1", StudentName: "Alice", StudentEmail: "alice@example.com", Status: &present},
		{EnrollmentID: "e2", StudentID: "s2", StudentName: "Bob", StudentEmail: "bob@example.com"},
	}
}

func TestMarkAttendanceNormalizesStatus(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := NewAttendanceService(records, &mockRosterRepo{}, &mockSessionLookup{session: testSession()}, nil, nil)

	record, err := svc.Mark(context.Background(), "session-1", "teacher-1", MarkAttendanceRequest{
		EnrollmentID: "e1",
		Status:       "present",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	assert.Equal(t, "teacher-1", record.MarkedBy)
}

func TestMarkAttendanceRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockRosterRepo{}, &mockSessionLookup{session: testSession()}, nil, nil)

	_, err := svc.Mark(context.Background(), "session-1", "teacher-1", MarkAttendanceRequest{
		EnrollmentID: "e1",
		Status:       "MAYBE",
	})
	assert.Error(t, err)
}

func TestBulkMarkAttendance(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := NewAttendanceService(records, &mockRosterRepo{}, &mockSessionLookup{session: testSession()}, nil, nil)

	count, err := svc.BulkMark(context.Background(), "session-1", "teacher-1", BulkMarkAttendanceRequest{
		Items: []MarkAttendanceRequest{
			{EnrollmentID: "e1", Status: "PRESENT"},
			{EnrollmentID: "e2", Status: "late"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, records.upserted, 2)
	assert.Equal(t, models.AttendanceStatusLate, records.upserted[1].Status)
}

func TestExportSheetCSV(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockRosterRepo{roster: sampleRoster()}, &mockSessionLookup{session: testSession()}, nil, nil)

	payload, contentType, err := svc.ExportSheet(context.Background(), "session-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	assert.True(t, strings.Contains(body, "Alice"))
	assert.True(t, strings.Contains(body, "PRESENT"))
}

func TestExportSheetPDF(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockRosterRepo{roster: sampleRoster()}, &mockSessionLookup{session: testSession()}, nil, nil)

	payload, contentType, err := svc.ExportSheet(context.Background(), "session-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, len(payload) > 0)
}

func TestExportSheetUnsupportedFormat(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockRosterRepo{}, &mockSessionLookup{session: testSession()}, nil, nil)

	_, _, err := svc.ExportSheet(context.Background(), "session-1", "xlsx")
	assert.Error(t, err)
}
