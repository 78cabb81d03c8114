package preference

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/preference"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

var knownEntities = map[string]bool{
	"users":    true,
	"patients": true,
	"states":   true,
	"cities":   true,
}

type Handler struct {
	service preference.Servicer
}

func NewHandler(service preference.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prefs := r.Group("/preferences")
	{
		prefs.GET("/session", h.GetSessionProfile)
		prefs.GET("/:entity/searches", h.ListSavedSearches)
		prefs.POST("/:entity/searches", h.SaveSearch)
		prefs.DELETE("/:entity/searches/:id", h.DeleteSearch)
		prefs.GET("/:entity/columns", h.GetColumnVisibility)
		prefs.PUT("/:entity/columns", h.SetColumnVisibility)
	}
}

func (h *Handler) ListSavedSearches(c *gin.Context) {
	userID, entity, ok := h.scope(c)
	if !ok {
		return
	}

	searches, err := h.service.SavedSearches(c.Request.Context(), userID, entity)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

func (h *Handler) SaveSearch(c *gin.Context) {
	userID, entity, ok := h.scope(c)
	if !ok {
		return
	}

	var search model.SavedSearch
	if err := c.ShouldBindJSON(&search); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	saved, err := h.service.SaveSearch(c.Request.Context(), userID, entity, search)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithRecord(c, http.StatusCreated, saved)
}

func (h *Handler) DeleteSearch(c *gin.Context) {
	userID, entity, ok := h.scope(c)
	if !ok {
		return
	}

	searchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, fmt.Errorf("invalid search ID"))
		return
	}

	if err := h.service.DeleteSearch(c.Request.Context(), userID, entity, searchID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetColumnVisibility(c *gin.Context) {
	userID, entity, ok := h.scope(c)
	if !ok {
		return
	}

	cols, err := h.service.ColumnVisibility(c.Request.Context(), userID, entity)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

func (h *Handler) SetColumnVisibility(c *gin.Context) {
	userID, entity, ok := h.scope(c)
	if !ok {
		return
	}

	var cols model.ColumnVisibility
	if err := c.ShouldBindJSON(&cols); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	if err := h.service.SetColumnVisibility(c.Request.Context(), userID, entity, cols); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetSessionProfile(c *gin.Context) {
	userID, err := requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.SessionProfile(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) scope(c *gin.Context) (uuid.UUID, string, bool) {
	userID, err := requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return uuid.Nil, "", false
	}

	entity := c.Param("entity")
	if !knownEntities[entity] {
		httputil.RespondWithValidationError(c, fmt.Errorf("unknown entity %q", entity))
		return uuid.Nil, "", false
	}
	return userID, entity, true
}

func requestUserID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("missing user identity")
	}
	return id, nil
}
