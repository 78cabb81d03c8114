package patient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/patient"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

type Handler struct {
	service patient.Servicer
}

func NewHandler(service patient.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.PATCH("", h.PatchPatient)
		patients.GET("/export", h.ExportPatients)
		patients.POST("/import", h.ImportPatients)
		patients.GET("/template", h.PatientTemplate)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.PatientFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	view, err := h.service.List(c.Request.Context(), q, f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithRecords(c, view.Rows, view.Page, view.PageSize, view.Total)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, fmt.Errorf("invalid patient ID"))
		return
	}

	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithRecord(c, http.StatusOK, record)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	record, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithRecord(c, http.StatusCreated, record)
}

func (h *Handler) PatchPatient(c *gin.Context) {
	var req model.PatchPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	if err := h.service.Patch(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ExportPatients(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.PatientFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	csv, err := h.service.ExportCSV(c.Request.Context(), q, f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCSV(c, csv, "patients", time.Now())
}

func (h *Handler) ImportPatients(c *gin.Context) {
	text, err := httputil.ReadCSVUpload(c)
	if err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	result, err := h.service.ImportCSV(c.Request.Context(), text)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) PatientTemplate(c *gin.Context) {
	httputil.RespondWithCSV(c, h.service.CSVTemplate(), "patients_template", time.Now())
}
