package consultation

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/service/consultation"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
	"github.com/turnero/clinic-api/pkg/httputil"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments/:id/consultation", h.Record)
	r.GET("/appointments/:id/consultation", h.Get)
	r.GET("/patients/:id/consultations", h.PatientHistory)
}

func (h *Handler) Record(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	var req model.RecordConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput(err.Error(), err))
		return
	}

	consultation, err := h.service.Record(c.Request.Context(), appointmentID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, consultation)
}

func (h *Handler) Get(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid appointment ID", err))
		return
	}

	consultation, err := h.service.ByAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if consultation == nil {
		httputil.RespondWithError(c, apperrors.NotFound("consultation", nil))
		return
	}
	httputil.RespondWithSuccess(c, consultation)
}

func (h *Handler) PatientHistory(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.MalformedInput("invalid patient ID", err))
		return
	}

	history, err := h.service.PatientHistory(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}
