package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-management-backend/internal/query"
	"visitor-management-backend/internal/sheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportBytes bounds an uploaded workbook; visitor logs are small.
const maxImportBytes = 20 << 20

// ExportVisitors handles GET /api/visitors/export?window=today|month|all,
// streaming the subset as an xlsx attachment.
func (h *Handler) ExportVisitors(c *gin.Context) {
	visitors, err := h.service.Visitors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	window := query.Window(c.DefaultQuery("window", "all"))
	visitors = query.InWindow(visitors, window, h.clock())

	data, err := sheet.Export(visitors)
	if err != nil {
		if errors.Is(err, sheet.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No visitor data found to export"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("visitors_%s_%s.xlsx", window, h.clock().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ImportVisitors handles POST /api/visitors/import with a multipart "file"
// field. Imported rows get fresh ids and are appended without dedup.
func (h *Handler) ImportVisitors(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	if fileHeader.Size > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	rows, err := sheet.Import(data)
	if err != nil {
		if errors.Is(err, sheet.ErrInvalidFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.service.ImportAppend(c.Request.Context(), rows)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	h.flushCache()
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
