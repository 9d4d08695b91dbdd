package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/pkg/response"
)

// DashboardHandler exposes the admin summary endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary returns headline counts for the admin landing page.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Refresh drops the cached summary so the next read rebuilds it.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.service.Invalidate(c.Request.Context())
	response.NoContent(c)
}
