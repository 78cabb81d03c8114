package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medgrid/emr-admin/pkg/errors"
)

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// RecordsResponse wraps a record collection
type RecordsResponse struct {
	Records    interface{} `json:"records"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// RespondWithRecords sends a record collection with pagination metadata
func RespondWithRecords(c *gin.Context, records interface{}, page, pageSize, total int) {
	totalPages := 1
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
		if totalPages < 1 {
			totalPages = 1
		}
	}

	c.JSON(http.StatusOK, RecordsResponse{
		Records: records,
		Pagination: &Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPages,
		},
	})
}

// RespondWithRecord sends a single record
func RespondWithRecord(c *gin.Context, status int, record interface{}) {
	c.JSON(status, gin.H{"record": record})
}

// RespondWithError sends an error response, mapping AppError codes to
// HTTP statuses
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		message = appErr.Message
	}

	c.JSON(status, gin.H{"error": message})
}

// RespondWithValidationError sends a 400 for a pre-request validation
// failure; no downstream call was made
func RespondWithValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
