package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-management-backend/internal/query"
)

// chartDays caps the bar-chart series to the most recent two weeks; the
// full grouping is still returned for the list view.
const chartDays = 14

// Calendar handles GET /api/visitors/calendar: the per-day grouping (dates
// descending) plus the capped chart series.
func (h *Handler) Calendar(c *gin.Context) {
	visitors, err := h.service.Visitors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	groups := query.GroupByDate(visitors)
	c.JSON(http.StatusOK, gin.H{
		"dates":  query.DatesDesc(groups),
		"groups": groups,
		"chart":  query.Chart(visitors, chartDays),
	})
}

// Stats handles GET /api/visitors/stats.
func (h *Handler) Stats(c *gin.Context) {
	visitors, err := h.service.Visitors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	c.JSON(http.StatusOK, query.Statistics(visitors, h.clock()))
}
