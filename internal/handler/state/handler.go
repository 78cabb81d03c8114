package state

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/state"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

type Handler struct {
	service state.Servicer
}

func NewHandler(service state.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	states := r.Group("/states")
	{
		states.GET("", h.ListStates)
		states.POST("", h.CreateState)
		states.PATCH("", h.PatchState)
		states.GET("/export", h.ExportStates)
		states.POST("/import", h.ImportStates)
		states.GET("/template", h.StateTemplate)
	}
}

func (h *Handler) ListStates(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.StateFilters
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

func (h *Handler) CreateState(c *gin.Context) {
	var req model.CreateStateRequest
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

func (h *Handler) PatchState(c *gin.Context) {
	var req model.PatchStateRequest
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

func (h *Handler) ExportStates(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.StateFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	csv, err := h.service.ExportCSV(c.Request.Context(), q, f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCSV(c, csv, "states", time.Now())
}

func (h *Handler) ImportStates(c *gin.Context) {
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

func (h *Handler) StateTemplate(c *gin.Context) {
	httputil.RespondWithCSV(c, h.service.CSVTemplate(), "states_template", time.Now())
}
