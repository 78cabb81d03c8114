package lookup

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/service/lookup"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

// Handler serves the small reference collections used by entity forms
// and by the table filters: roles, states and cities. Responses come
// from the in-process lookup cache, not a per-request query.
type Handler struct {
	service *lookup.Service
}

func NewHandler(service *lookup.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	lookups := r.Group("/lookups")
	{
		lookups.GET("/roles", h.ListRoles)
		lookups.GET("/states", h.ListStates)
		lookups.GET("/cities", h.ListCities)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.Roles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": roles})
}

func (h *Handler) ListStates(c *gin.Context) {
	states, err := h.service.States(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": states})
}

// ListCities optionally scopes the collection to a parent state via
// the state_id query parameter.
func (h *Handler) ListCities(c *gin.Context) {
	var stateID *uuid.UUID
	if raw := c.Query("state_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithValidationError(c, err)
			return
		}
		stateID = &id
	}

	cities, err := h.service.Cities(c.Request.Context(), stateID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": cities})
}
