package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	appErrors "github.com/campushub/portal-api/pkg/errors"
	"github.com/campushub/portal-api/pkg/response"
)

// PaymentHandler manages tuition payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
}

// NewPaymentHandler constructs handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// List returns payment records. Students are scoped to their own invoices.
func (h *PaymentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	status := c.Query("status")

	if claims.Role == models.RoleStudent {
		records, pagination, err := h.service.ListForStudent(c.Request.Context(), claims.UserID, status, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, records, pagination)
		return
	}

	filter := models.PaymentFilter{
		StudentID: c.Query("student_id"),
		Page:      page,
		PageSize:  limit,
	}
	if status != "" {
		st := models.PaymentStatus(strings.ToUpper(status))
		if !st.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payment status"))
			return
		}
		filter.Status = &st
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Create adds an invoice for a student.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// MarkPaid settles an invoice.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	if err := h.service.MarkPaid(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
