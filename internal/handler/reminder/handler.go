package reminder

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/service/reminder"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
	"github.com/turnero/clinic-api/pkg/httputil"
)

type Handler struct {
	service *reminder.Service
}

func NewHandler(service *reminder.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments/:id/reminders", h.Schedule)
	r.GET("/appointments/:id/reminders", h.List)
}

func (h *Handler) Schedule(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	var req model.ScheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput(err.Error(), err))
		return
	}

	reminder, err := h.service.Schedule(c.Request.Context(), appointmentID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, reminder)
}

func (h *Handler) List(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	reminders, err := h.service.List(c.Request.Context(), appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reminders)
}
