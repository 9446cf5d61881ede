package api

import (
	"net/http"
	"time"

	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	q     queries.AnalyticsQueries
	sweep commands.SweepCommands
	clock clock.Clock
}

func NewAnalyticsHandler(q queries.AnalyticsQueries, sweep commands.SweepCommands, clk clock.Clock) *AnalyticsHandler {
	return &AnalyticsHandler{q: q, sweep: sweep, clock: clk}
}

// @Summary Analytics summary
// @Description Reservation outcome rates, utilization and customer segmentation over a date range
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param from query string false "Range start (YYYY-MM-DD), default 30 days ago"
// @Param to query string false "Range end exclusive (YYYY-MM-DD), default tomorrow"
// @Success 200 {object} queries.AnalyticsSummary
// @Failure 400 {object} httperr.Response
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}

	now := h.clock.Now().UTC()
	from := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	to := now.AddDate(0, 0, 1).Truncate(24 * time.Hour)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid from date", nil)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid to date", nil)
			return
		}
		to = parsed
	}
	if !to.After(from) {
		httperr.AbortWithError(c, http.StatusBadRequest, queries.ErrInvalidRange, "to must be after from", nil)
		return
	}

	summary, err := h.q.Summary(c.Request.Context(), restaurantID, from, to)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to build summary", nil)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Run no-show sweep
// @Description Marks overdue booked/confirmed reservations as no-show; also runs periodically in the background
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /admin/sweep [post]
func (h *AnalyticsHandler) RunSweep(c *gin.Context) {
	result, err := h.sweep.RunNoShowSweep(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Sweep failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{Marked: result.Marked})
}
