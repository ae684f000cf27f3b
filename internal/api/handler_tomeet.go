package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-management-backend/internal/visitor"
)

// ListToMeetOptions handles GET /api/to-meet-options.
func (h *Handler) ListToMeetOptions(c *gin.Context) {
	options, err := h.service.ToMeetOptions(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load options"})
		return
	}
	c.JSON(http.StatusOK, options)
}

type toMeetOptionRequest struct {
	Value string `json:"value" binding:"required"`
}

// AddToMeetOption handles POST /api/to-meet-options.
func (h *Handler) AddToMeetOption(c *gin.Context) {
	var req toMeetOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.AddToMeetOption(c.Request.Context(), req.Value); err != nil {
		h.writeOptionError(c, err)
		return
	}
	h.flushCache()
	c.Status(http.StatusCreated)
}

type renameToMeetOptionRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// RenameToMeetOption handles PUT /api/to-meet-options. Existing visitor
// records keep the old value.
func (h *Handler) RenameToMeetOption(c *gin.Context) {
	var req renameToMeetOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RenameToMeetOption(c.Request.Context(), req.From, req.To); err != nil {
		h.writeOptionError(c, err)
		return
	}
	h.flushCache()
	c.Status(http.StatusNoContent)
}

// RemoveToMeetOption handles DELETE /api/to-meet-options.
func (h *Handler) RemoveToMeetOption(c *gin.Context) {
	var req toMeetOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RemoveToMeetOption(c.Request.Context(), req.Value); err != nil {
		h.writeOptionError(c, err)
		return
	}
	h.flushCache()
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeOptionError(c *gin.Context, err error) {
	var validationErr *visitor.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}
	h.writeMutationError(c, err)
}
