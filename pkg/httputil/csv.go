package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medgrid/emr-admin/pkg/table"
)

const maxCSVUploadBytes = 10 << 20

// RespondWithCSV streams CSV content as a dated file download.
func RespondWithCSV(c *gin.Context, csv, entity string, now time.Time) {
	filename := table.ExportFilename(entity, now)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// ReadCSVUpload accepts either a multipart "file" field or a raw
// text/csv request body.
func ReadCSVUpload(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxCSVUploadBytes))
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCSVUploadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	return string(data), nil
}
