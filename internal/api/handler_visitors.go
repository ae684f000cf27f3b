package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-management-backend/internal/query"
	"visitor-management-backend/internal/store"
	"visitor-management-backend/internal/visitor"
)

// ListVisitors handles GET /api/visitors with optional q (text search),
// date (exact calendar day), window (today|month|all) and status
// (present|out) parameters.
func (h *Handler) ListVisitors(c *gin.Context) {
	visitors, err := h.service.Visitors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	visitors = query.Filter(visitors, c.Query("q"), c.Query("date"))
	visitors = query.InWindow(visitors, query.Window(c.DefaultQuery("window", "all")), h.clock())

	switch c.Query("status") {
	case "present":
		visitors = query.Present(visitors)
	case "out":
		visitors = query.CheckedOut(visitors)
	case "":
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status must be 'present' or 'out'"})
		return
	}

	c.JSON(http.StatusOK, visitors)
}

// CheckIn handles POST /api/visitors.
func (h *Handler) CheckIn(c *gin.Context) {
	var in visitor.CheckInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.service.CheckIn(c.Request.Context(), in)
	if err != nil {
		var validationErr *visitor.ValidationError
		var photoErr *visitor.PhotoProcessingError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "missing": validationErr.Missing})
		case errors.As(err, &photoErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": photoErr.Error()})
		case errors.Is(err, store.ErrStorageQuota):
			c.JSON(http.StatusInsufficientStorage, gin.H{"error": "storage is full, clear old records and try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.flushCache()
	c.JSON(http.StatusCreated, v)
}

// Checkout handles POST /api/visitors/:id/checkout. Checking out an
// already-departed or unknown visitor succeeds without changing anything.
func (h *Handler) Checkout(c *gin.Context) {
	v, found, err := h.service.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	h.flushCache()
	if !found {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateVisitor handles PATCH /api/visitors/:id. Unknown ids succeed
// without changing anything.
func (h *Handler) UpdateVisitor(c *gin.Context) {
	var in visitor.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, found, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	h.flushCache()
	if !found {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteVisitor handles DELETE /api/visitors/:id.
func (h *Handler) DeleteVisitor(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeMutationError(c, err)
		return
	}
	h.flushCache()
	c.Status(http.StatusNoContent)
}

// DeleteVisitors handles DELETE /api/visitors?scope=month|all.
func (h *Handler) DeleteVisitors(c *gin.Context) {
	scope := visitor.DeleteScope(c.Query("scope"))
	if scope != visitor.ScopeMonth && scope != visitor.ScopeAll {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be 'month' or 'all'"})
		return
	}

	removed, err := h.service.DeleteAll(c.Request.Context(), scope)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	h.flushCache()
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) writeMutationError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrStorageQuota) {
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": "storage is full, clear old records and try again"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
