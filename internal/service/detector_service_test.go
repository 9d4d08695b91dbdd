package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/pkg/config"
)

type mockScheduleSource struct {
	blocks []models.ScheduleBlock
	err    error
}

func (m *mockScheduleSource) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error) {
	return m.blocks, m.err
}

type mockSessionStore struct {
	sessions    []models.ClassSession
	listErr     error
	createErr   error
	createCalls int
}

func (m *mockSessionStore) ListByTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.ClassSession, error) {
	return m.sessions, m.listErr
}

func (m *mockSessionStore) Create(ctx context.Context, session *models.ClassSession) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	session.ID = fmt.Sprintf("session-%d", m.createCalls)
	m.sessions = append(m.sessions, *session)
	return nil
}

func newTestDetector(store *mockSessionStore) *DetectorService {
	return NewDetectorService(&mockScheduleSource{}, store, config.DetectionConfig{
		GracePeriod:    30 * time.Minute,
		MatchTolerance: 15 * time.Minute,
		CreateTimeout:  time.Second,
		Timezone:       "UTC",
	}, nil)
}

// 2026-03-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func mondayBlock() models.ScheduleBlock {
	return models.ScheduleBlock{
		ID:        "block-1",
		CourseID:  "course-1",
		DayOfWeek: "Monday",
		StartTime: "09:00",
		EndTime:   "10:00",
		Room:      "B204",
	}
}

func TestDetectAtCreatesSessionInsideWindow(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{mondayBlock()}, nil)

	require.NotNil(t, resolved)
	assert.Equal(t, "course-1", resolved.CourseID)
	assert.Equal(t, "session-1", resolved.SessionID)
	assert.True(t, resolved.IsAutoDetected)
	assert.Equal(t, 1, store.createCalls)

	created := store.sessions[0]
	assert.Equal(t, "09:00", created.StartTime)
	assert.Equal(t, "10:00", created.EndTime)
	assert.Equal(t, "B204", created.Room)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), created.Date)
}

func TestDetectAtGracePeriodBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		minute int
		active bool
	}{
		{"grace start", 8, 30, true},
		{"before grace", 8, 29, false},
		{"class end", 10, 0, true},
		{"after end", 10, 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockSessionStore{}
			detector := newTestDetector(store)

			resolved := detector.DetectAt(context.Background(), mondayAt(tc.hour, tc.minute), []models.ScheduleBlock{mondayBlock()}, nil)

			if tc.active {
				assert.NotNil(t, resolved)
				assert.Equal(t, 1, store.createCalls)
			} else {
				assert.Nil(t, resolved)
				assert.Zero(t, store.createCalls)
			}
		})
	}
}

func TestDetectAtIgnoresOtherDays(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	block := mondayBlock()
	block.DayOfWeek = "Tuesday"

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{block}, nil)

	assert.Nil(t, resolved)
	assert.Zero(t, store.createCalls)
}

func TestDetectAtDayComparisonIsCaseInsensitive(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	block := mondayBlock()
	block.DayOfWeek = "MONDAY"

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{block}, nil)

	require.NotNil(t, resolved)
	assert.Equal(t, 1, store.createCalls)
}

func TestDetectAtResolvesExistingSessionWithinTolerance(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	existing := models.ClassSession{
		ID:        "existing-1",
		CourseID:  "course-1",
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "09:10",
		EndTime:   "10:10",
	}

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{mondayBlock()}, []models.ClassSession{existing})

	require.NotNil(t, resolved)
	assert.Equal(t, "existing-1", resolved.SessionID)
	assert.True(t, resolved.IsAutoDetected)
	assert.Zero(t, store.createCalls)
}

func TestDetectAtCreatesWhenExistingStartOutsideTolerance(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	existing := models.ClassSession{
		ID:        "existing-1",
		CourseID:  "course-1",
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "09:20",
	}

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{mondayBlock()}, []models.ClassSession{existing})

	require.NotNil(t, resolved)
	assert.Equal(t, "session-1", resolved.SessionID)
	assert.Equal(t, 1, store.createCalls)
}

func TestDetectAtIsIdempotentAcrossInvocations(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)
	blocks := []models.ScheduleBlock{mondayBlock()}

	first := detector.DetectAt(context.Background(), mondayAt(9, 0), blocks, store.sessions)
	require.NotNil(t, first)
	require.Equal(t, 1, store.createCalls)

	second := detector.DetectAt(context.Background(), mondayAt(9, 5), blocks, store.sessions)
	require.NotNil(t, second)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, store.createCalls)
}

func TestDetectAtFirstOverlappingBlockWins(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	second := mondayBlock()
	second.ID = "block-2"
	second.CourseID = "course-2"
	second.StartTime = "09:30"
	second.EndTime = "10:30"

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 45), []models.ScheduleBlock{mondayBlock(), second}, nil)

	require.NotNil(t, resolved)
	assert.Equal(t, "course-1", resolved.CourseID)
	assert.Equal(t, 1, store.createCalls)
}

func TestDetectAtCreationFailureDegradesSilently(t *testing.T) {
	store := &mockSessionStore{createErr: errors.New("connection refused")}
	detector := newTestDetector(store)

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{mondayBlock()}, nil)

	assert.Nil(t, resolved)
	assert.Equal(t, 1, store.createCalls)
}

func TestDetectAtSkipsCreationWhileAnotherIsInFlight(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)
	detector.creating.Store(true)

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), []models.ScheduleBlock{mondayBlock()}, nil)

	assert.Nil(t, resolved)
	assert.Zero(t, store.createCalls)
}

func TestDetectAtNoScheduleNoMutation(t *testing.T) {
	store := &mockSessionStore{}
	detector := newTestDetector(store)

	resolved := detector.DetectAt(context.Background(), mondayAt(9, 15), nil, nil)

	assert.Nil(t, resolved)
	assert.Zero(t, store.createCalls)
}

func TestToMinutes(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"09:05", 545},
		{"23:59", 1439},
		{" 08:30 ", 510},
		{"", 0},
		{"9am", 0},
		{"25:00", 0},
		{"12:75", 0},
		{"12", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, toMinutes(tc.input), "input %q", tc.input)
	}
}

func TestDetectLoadsScheduleAndSessions(t *testing.T) {
	schedules := &mockScheduleSource{blocks: []models.ScheduleBlock{}}
	store := &mockSessionStore{}
	detector := NewDetectorService(schedules, store, config.DetectionConfig{Timezone: "UTC"}, nil)

	resolved, err := detector.Detect(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestDetectPropagatesScheduleLoadError(t *testing.T) {
	schedules := &mockScheduleSource{err: errors.New("boom")}
	detector := NewDetectorService(schedules, &mockSessionStore{}, config.DetectionConfig{Timezone: "UTC"}, nil)

	_, err := detector.Detect(context.Background(), "teacher-1")
	assert.Error(t, err)
}
