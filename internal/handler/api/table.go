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

type TableHandler struct {
	cmds commands.TableCommands
	q    queries.TableQueries
}

func NewTableHandler(cmds commands.TableCommands, q queries.TableQueries) *TableHandler {
	return &TableHandler{cmds: cmds, q: q}
}

// @Summary List tables
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.TableView
// @Router /tables [get]
func (h *TableHandler) List(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	views, err := h.q.List(c.Request.Context(), restaurantID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list tables", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Get table
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Success 200 {object} queries.TableView
// @Failure 404 {object} httperr.Response
// @Router /tables/{id} [get]
func (h *TableHandler) Get(c *gin.Context) {
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
		httperr.AbortWithError(c, http.StatusNotFound, err, "Table not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Create table
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateTableRequest true "Table definition"
// @Success 201 {object} resdto.CreatedResponse
// @Failure 422 {object} httperr.Response
// @Router /tables [post]
func (h *TableHandler) Create(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	var req reqdto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	id, err := h.cmds.Create(c.Request.Context(), restaurantID, req)
	if err != nil {
		abortTableError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

// @Summary Update table
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Param request body reqdto.UpdateTableRequest true "Updated definition"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Router /tables/{id} [put]
func (h *TableHandler) Update(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.UpdateTableRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.Update(c.Request.Context(), restaurantID, id, req); err != nil {
		abortTableError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Table updated"})
}

// @Summary Delete table
// @Description Refused while booked, confirmed or seated reservations reference the table
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /tables/{id} [delete]
func (h *TableHandler) Delete(c *gin.Context) {
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
		abortTableError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func abortTableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrTableNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Table not found", nil)
	case errors.Is(err, commands.ErrTableInUse):
		httperr.AbortWithError(c, http.StatusConflict, err, "Table has active reservations", nil)
	case errors.Is(err, commands.ErrDuplicateTableName):
		httperr.AbortWithError(c, http.StatusConflict, err, "Table name already in use", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
