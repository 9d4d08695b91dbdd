package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	appErrors "github.com/campushub/portal-api/pkg/errors"
	"github.com/campushub/portal-api/pkg/response"
)

type detectionRecorder interface {
	RecordDetection(outcome string)
}

// SessionHandler manages class session endpoints including auto detection.
type SessionHandler struct {
	service  *service.SessionService
	detector *service.DetectorService
	metrics  detectionRecorder
}

// NewSessionHandler constructs handler. metrics may be nil.
func NewSessionHandler(svc *service.SessionService, detector *service.DetectorService, metrics detectionRecorder) *SessionHandler {
	return &SessionHandler{service: svc, detector: detector, metrics: metrics}
}

// List returns class sessions matching the query filters.
func (h *SessionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.SessionFilter
	filter.CourseID = c.Query("course_id")
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "limit", 20)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	if claims.Role == models.RoleTeacher {
		filter.TeacherID = claims.UserID
	} else {
		filter.TeacherID = c.Query("teacher_id")
	}

	if raw := c.Query("date_from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &from
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &to
		}
	}

	sessions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get returns a single session.
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create adds a session explicitly, the "New Session" action.
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Detect runs schedule-based auto detection for the calling teacher. The
// response carries the resolved session, or null data when no class is
// currently active.
func (h *SessionHandler) Detect(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resolved, err := h.detector.Detect(c.Request.Context(), claims.UserID)
	if err != nil {
		h.recordDetection("failed")
		response.Error(c, err)
		return
	}
	if resolved == nil {
		h.recordDetection("none")
		response.JSON(c, http.StatusOK, nil, nil, map[string]interface{}{"active": false})
		return
	}

	h.recordDetection("resolved")
	response.JSON(c, http.StatusOK, resolved, nil, map[string]interface{}{"active": true})
}

func (h *SessionHandler) recordDetection(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordDetection(outcome)
	}
}
