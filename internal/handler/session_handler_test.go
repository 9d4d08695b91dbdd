package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/pkg/config"
)

type fakeScheduleSource struct {
	blocks []models.ScheduleBlock
}

func (f *fakeScheduleSource) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleBlock, error) {
	return f.blocks, nil
}

type fakeSessionStore struct {
	sessions    []models.ClassSession
	createCalls int
}

func (f *fakeSessionStore) ListByTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.ClassSession, error) {
	return f.sessions, nil
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.ClassSession) error {
	f.createCalls++
	session.ID = "auto-1"
	return nil
}

type fakeDetectionRecorder struct {
	outcomes []string
}

func (f *fakeDetectionRecorder) RecordDetection(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher, FullName: "Jane Teacher"}
}

func detectContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/detect", nil)
	c.Set(middleware.ContextUserKey, teacherClaims())
	return c, rec
}

// activeBlockNow builds a schedule block that is in session at the current
// wall clock, clamped so the window never crosses midnight.
func activeBlockNow() models.ScheduleBlock {
	now := time.Now()
	end := now.Add(50 * time.Minute)
	endStr := end.Format("15:04")
	if end.Day() != now.Day() {
		endStr = "23:59"
	}
	return models.ScheduleBlock{
		ID:        "block-1",
		CourseID:  "course-1",
		DayOfWeek: now.Weekday().String(),
		StartTime: now.Format("15:04"),
		EndTime:   endStr,
	}
}

func newDetectHandler(schedules *fakeScheduleSource, store *fakeSessionStore, recorder *fakeDetectionRecorder) *SessionHandler {
	detector := service.NewDetectorService(schedules, store, config.DetectionConfig{}, nil)
	return NewSessionHandler(nil, detector, recorder)
}

func TestDetectNoActiveClass(t *testing.T) {
	recorder := &fakeDetectionRecorder{}
	h := newDetectHandler(&fakeScheduleSource{}, &fakeSessionStore{}, recorder)

	c, rec := detectContext(t)
	h.Detect(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Meta["active"])
	assert.Equal(t, []string{"none"}, recorder.outcomes)
}

func TestDetectResolvesActiveClass(t *testing.T) {
	recorder := &fakeDetectionRecorder{}
	store := &fakeSessionStore{}
	h := newDetectHandler(&fakeScheduleSource{blocks: []models.ScheduleBlock{activeBlockNow()}}, store, recorder)

	c, rec := detectContext(t)
	h.Detect(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data *models.ResolvedSession `json:"data"`
		Meta map[string]interface{}  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	assert.Equal(t, "course-1", envelope.Data.CourseID)
	assert.Equal(t, "auto-1", envelope.Data.SessionID)
	assert.True(t, envelope.Data.IsAutoDetected)
	assert.Equal(t, true, envelope.Meta["active"])
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, []string{"resolved"}, recorder.outcomes)
}

func TestDetectRequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newDetectHandler(&fakeScheduleSource{}, &fakeSessionStore{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/detect", nil)

	h.Detect(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
