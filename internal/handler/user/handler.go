package user

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/user"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

type Handler struct {
	service user.Servicer
}

func NewHandler(service user.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PATCH("", h.PatchUser)
		users.GET("/export", h.ExportUsers)
		users.POST("/import", h.ImportUsers)
		users.GET("/template", h.UserTemplate)
		users.GET("/:id", h.GetUser)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.UserFilters
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

func (h *Handler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, fmt.Errorf("invalid user ID"))
		return
	}

	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithRecord(c, http.StatusOK, record)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
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

func (h *Handler) PatchUser(c *gin.Context) {
	var req model.PatchUserRequest
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

func (h *Handler) ExportUsers(c *gin.Context) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	var f model.UserFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	csv, err := h.service.ExportCSV(c.Request.Context(), q, f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCSV(c, csv, "users", time.Now())
}

func (h *Handler) ImportUsers(c *gin.Context) {
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

func (h *Handler) UserTemplate(c *gin.Context) {
	httputil.RespondWithCSV(c, h.service.CSVTemplate(), "users_template", time.Now())
}
