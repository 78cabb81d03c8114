package city

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/city"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

type Handler struct {
	service city.Servicer
}

func NewHandler(service city.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cities := r.Group("/cities")
	{
		cities.GET("", h.ListCities)
		cities.POST("", h.CreateCity)
		cities.PATCH("", h.PatchCity)
		cities.GET("/export", h.ExportCities)
		cities.POST("/import", h.ImportCities)
		cities.GET("/template", h.CityTemplate)
	}
}

func (h *Handler) ListCities(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.CityFilters
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

func (h *Handler) CreateCity(c *gin.Context) {
	var req model.CreateCityRequest
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

func (h *Handler) PatchCity(c *gin.Context) {
	var req model.PatchCityRequest
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

func (h *Handler) ExportCities(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.CityFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	csv, err := h.service.ExportCSV(c.Request.Context(), q, f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCSV(c, csv, "cities", time.Now())
}

func (h *Handler) ImportCities(c *gin.Context) {
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

func (h *Handler) CityTemplate(c *gin.Context) {
	httputil.RespondWithCSV(c, h.service.CSVTemplate(), "cities_template", time.Now())
}
