package nav

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/nav"
)

type Handler struct {
	service nav.Servicer
}

func NewHandler(service nav.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/nav/menu", h.GetMenu)
}

// GetMenu returns the sidebar sections for the authenticated role. A
// role outside the known set is surfaced as an error, not an empty menu.
func (h *Handler) GetMenu(c *gin.Context) {
	role := c.GetString("userRole")

	sections, err := h.service.MenuForRole(role)
	if err != nil {
		var unknownErr *model.ErrUnknownRole
		if errors.As(err, &unknownErr) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": sections})
}
