package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/handler/middleware"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	cmds  commands.ReservationCommands
	q     queries.ReservationQueries
	clock clock.Clock
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries, clk clock.Clock) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q, clock: clk}
}

// @Summary Create reservation
// @Description Book a table for a time window; requires an Idempotency-Key header
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.CreateReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	restaurantID, userID, ok := identity(c)
	if !ok {
		return
	}

	idempotencyKey, err := uuid.Parse(c.GetHeader("Idempotency-Key"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Idempotency-Key header must be a UUID", nil)
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), restaurantID, userID, idempotencyKey, req)
	if err != nil {
		abortReservationError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.CreateReservationResponse{
		ID:       result.ID,
		Warnings: result.Warnings,
		Replayed: result.IsReplayed,
	})
}

// @Summary Day timeline
// @Description Full grid of tables and reservations for one service day
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param date query string false "Service day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} queries.TimelineView
// @Failure 400 {object} httperr.Response
// @Router /reservations/timeline [get]
func (h *ReservationHandler) Timeline(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}

	date := h.clock.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date, expected YYYY-MM-DD", nil)
			return
		}
		// anchor mid-day so the date is its own service day
		date = parsed.Add(12 * time.Hour)
	}

	view, err := h.q.Timeline(c.Request.Context(), restaurantID, date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load timeline", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} queries.ReservationView
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.q.Get(c.Request.Context(), restaurantID, id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Update reservation details
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateReservationRequest true "Updated details"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.UpdateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.Update(c.Request.Context(), restaurantID, id, req); err != nil {
		abortReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Reservation updated"})
}

// @Summary Move reservation
// @Description Move a reservation to another table and/or time window
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.MoveReservationRequest true "Target table and window"
// @Success 200 {object} resdto.MoveReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/move [post]
func (h *ReservationHandler) Move(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.MoveReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Move(c.Request.Context(), restaurantID, id, req)
	if err != nil {
		abortReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MoveReservationResponse{Warnings: result.Warnings})
}

// @Summary Change reservation status
// @Description Apply a lifecycle action: arrive, seat, finish, no_show, cancel
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ChangeReservationStatusRequest true "Lifecycle action"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reservations/{id}/status [post]
func (h *ReservationHandler) ChangeStatus(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.ChangeReservationStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.ChangeStatus(c.Request.Context(), restaurantID, id, req.Action); err != nil {
		abortReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Status updated"})
}

// @Summary Delete reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	if err := h.cmds.Delete(c.Request.Context(), restaurantID, id); err != nil {
		abortReservationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func abortReservationError(c *gin.Context, err error) {
	var conflict *commands.ConflictError
	switch {
	case errors.As(err, &conflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Time slot conflict", resdto.ConflictDetail{
			ConflictingID: conflict.ConflictingID,
			TableID:       conflict.TableID,
			StartTime:     conflict.StartTime.Format(time.RFC3339),
			EndTime:       conflict.EndTime.Format(time.RFC3339),
			Status:        conflict.Status,
		})
	case errors.Is(err, commands.ErrReservationConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Time slot conflict", nil)
	case errors.Is(err, commands.ErrTableNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Table not found", nil)
	case errors.Is(err, commands.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errors.Is(err, commands.ErrCustomerNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Customer not found", nil)
	case errors.Is(err, commands.ErrInvalidTimeSlot):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time slot", nil)
	case errors.Is(err, commands.ErrPastTime):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Time is in the past", nil)
	case errors.Is(err, commands.ErrInvalidAction):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid lifecycle action", nil)
	case errors.Is(err, commands.ErrIllegalTransition):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Illegal status transition", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	case errors.Is(err, commands.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err, "Duplicate request with different payload", nil)
	case errors.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is already being processed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// identity pulls the authenticated tenant off the context, aborting when the
// auth middleware did not run.
func identity(c *gin.Context) (restaurantID, userID uuid.UUID, ok bool) {
	restaurantID, rOK := middleware.GetRestaurantID(c)
	userID, uOK := middleware.GetUserID(c)
	if !rOK || !uOK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		c.Abort()
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, userID, true
}
