package report

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/service/report"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
	"github.com/turnero/clinic-api/pkg/httputil"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/appointments-per-doctor", h.AppointmentsPerDoctor)
		reports.GET("/appointments-per-specialty", h.AppointmentsPerSpecialty)
		reports.GET("/attended-patients", h.AttendedPatients)
		reports.GET("/attendance", h.Attendance)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summary)
}

func (h *Handler) AppointmentsPerDoctor(c *gin.Context) {
	rows, err := h.service.AppointmentsPerDoctor(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rows)
}

func (h *Handler) AppointmentsPerSpecialty(c *gin.Context) {
	rows, err := h.service.AppointmentsPerSpecialty(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rows)
}

func (h *Handler) AttendedPatients(c *gin.Context) {
	var doctorID, specialtyID *uuid.UUID
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid doctor ID", err))
			return
		}
		doctorID = &id
	}
	if raw := c.Query("specialty_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid specialty ID", err))
			return
		}
		specialtyID = &id
	}

	rows, err := h.service.AttendedPatients(c.Request.Context(), c.Query("from"), c.Query("to"), doctorID, specialtyID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rows)
}

func (h *Handler) Attendance(c *gin.Context) {
	reportData, err := h.service.Attendance(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reportData)
}
