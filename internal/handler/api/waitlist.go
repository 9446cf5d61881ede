package api

import (
	"errors"
	"net/http"

	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WaitlistHandler struct {
	cmds commands.WaitlistCommands
	q    queries.WaitlistQueries
}

func NewWaitlistHandler(cmds commands.WaitlistCommands, q queries.WaitlistQueries) *WaitlistHandler {
	return &WaitlistHandler{cmds: cmds, q: q}
}

// @Summary Waitlist board
// @Description Active queue in position order with wait estimates
// @Tags waitlist
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.WaitlistEntryView
// @Router /waitlist [get]
func (h *WaitlistHandler) Board(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	views, err := h.q.Board(c.Request.Context(), restaurantID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load waitlist", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Get waitlist entry
// @Tags waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} queries.WaitlistEntryView
// @Failure 404 {object} httperr.Response
// @Router /waitlist/{id} [get]
func (h *WaitlistHandler) Get(c *gin.Context) {
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
		httperr.AbortWithError(c, http.StatusNotFound, err, "Waitlist entry not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Add walk-in party
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.EnqueueWaitlistRequest true "Walk-in party"
// @Success 201 {object} resdto.EnqueueWaitlistResponse
// @Failure 422 {object} httperr.Response
// @Router /waitlist [post]
func (h *WaitlistHandler) Enqueue(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	var req reqdto.EnqueueWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Enqueue(c.Request.Context(), restaurantID, req)
	if err != nil {
		abortWaitlistError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.EnqueueWaitlistResponse{ID: result.ID, Position: result.Position})
}

// @Summary Update waitlist entry
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param request body reqdto.UpdateWaitlistRequest true "Updated details"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Router /waitlist/{id} [put]
func (h *WaitlistHandler) Update(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.UpdateWaitlistRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.Update(c.Request.Context(), restaurantID, id, req); err != nil {
		abortWaitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Entry updated"})
}

// @Summary Change waitlist entry status
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param request body reqdto.ChangeWaitlistStatusRequest true "New status"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /waitlist/{id}/status [post]
func (h *WaitlistHandler) ChangeStatus(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.ChangeWaitlistStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.ChangeStatus(c.Request.Context(), restaurantID, id, req.Status); err != nil {
		abortWaitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Status updated"})
}

// @Summary Seat party from waitlist
// @Description Creates a seated reservation on the chosen table and closes the entry
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param request body reqdto.SeatWaitlistRequest true "Table assignment"
// @Success 201 {object} resdto.SeatWaitlistResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /waitlist/{id}/seat [post]
func (h *WaitlistHandler) Seat(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.SeatWaitlistRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Seat(c.Request.Context(), restaurantID, id, req)
	if err != nil {
		abortWaitlistError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.SeatWaitlistResponse{
		ReservationID: result.ReservationID,
		Warnings:      result.Warnings,
	})
}

// @Summary Remove waitlist entry
// @Description Marks the party as left and closes gaps in queue positions
// @Tags waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /waitlist/{id} [delete]
func (h *WaitlistHandler) Remove(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	if err := h.cmds.Remove(c.Request.Context(), restaurantID, id); err != nil {
		abortWaitlistError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func abortWaitlistError(c *gin.Context, err error) {
	var conflict *commands.ConflictError
	switch {
	case errors.Is(err, commands.ErrWaitlistEntryNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Waitlist entry not found", nil)
	case errors.Is(err, commands.ErrTableNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Table not found", nil)
	case errors.As(err, &conflict), errors.Is(err, commands.ErrReservationConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Time slot conflict", nil)
	case errors.Is(err, commands.ErrWaitlistEntryClosed):
		httperr.AbortWithError(c, http.StatusConflict, err, "Waitlist entry is closed", nil)
	case errors.Is(err, commands.ErrInvalidWaitlistStatus):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid waitlist status", nil)
	case errors.Is(err, commands.ErrInvalidTimeSlot):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time slot", nil)
	case errors.Is(err, commands.ErrPastTime):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Time is in the past", nil)
	case errors.Is(err, commands.ErrIllegalTransition):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Illegal status transition", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
