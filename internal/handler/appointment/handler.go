package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/service/scheduling"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
	"github.com/turnero/clinic-api/pkg/httputil"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PATCH("/:id", h.Reschedule)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/attend", h.Attend)
	}
	r.GET("/doctors/:id/slots", h.FreeSlots)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput(err.Error(), err))
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid doctor ID", err))
			return
		}
		filters.DoctorID = id
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid patient ID", err))
			return
		}
		filters.PatientID = id
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation(model.DateLayout, raw, time.Local)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid from date, use YYYY-MM-DD", err))
			return
		}
		filters.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation(model.DateLayout, raw, time.Local)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid to date, use YYYY-MM-DD", err))
			return
		}
		filters.To = to.Add(24*time.Hour - time.Minute)
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput(err.Error(), err))
		return
	}

	appointment, err := h.service.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": string(model.AppointmentStatusCancelled)})
}

func (h *Handler) Attend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	var req struct {
		PrescriptionURL *string `json:"prescription_url"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput(err.Error(), err))
			return
		}
	}

	if err := h.service.Attend(c.Request.Context(), id, req.PrescriptionURL); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": string(model.AppointmentStatusAttended)})
}

func (h *Handler) FreeSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid doctor ID", err))
		return
	}

	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.MalformedInput("the date query parameter is required", nil))
		return
	}

	durationMin := model.DefaultDurationMin
	if raw := c.Query("duration_min"); raw != "" {
		durationMin, err = strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.MalformedInput("invalid duration", err))
			return
		}
	}

	seq, err := h.service.FreeSlots(c.Request.Context(), doctorID, date, durationMin, c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots := make([]model.Slot, 0)
	for slot := range seq {
		slots = append(slots, slot)
	}
	httputil.RespondWithSuccess(c, slots)
}
