package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultCustomerSearchLimit = 50

type CustomerHandler struct {
	cmds commands.CustomerCommands
	q    queries.CustomerQueries
	resQ queries.ReservationQueries
}

func NewCustomerHandler(cmds commands.CustomerCommands, q queries.CustomerQueries, resQ queries.ReservationQueries) *CustomerHandler {
	return &CustomerHandler{cmds: cmds, q: q, resQ: resQ}
}

// @Summary Search customers
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name substring"
// @Param phone query string false "Phone digits"
// @Param limit query int false "Max results"
// @Success 200 {array} queries.CustomerView
// @Router /customers [get]
func (h *CustomerHandler) Search(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}

	limit := defaultCustomerSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	views, err := h.q.Search(c.Request.Context(), restaurantID, c.Query("name"), c.Query("phone"), limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to search customers", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Match customers by phone
// @Description Fuzzy lookup used when taking a booking: exact digit matches first, then partial containment
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param phone query string true "Phone number in any format"
// @Success 200 {array} queries.CustomerMatch
// @Failure 400 {object} httperr.Response
// @Router /customers/match [get]
func (h *CustomerHandler) Match(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	phone := c.Query("phone")
	if phone == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("phone query parameter required"), "phone query parameter required", nil)
		return
	}

	matches, err := h.q.MatchByPhone(c.Request.Context(), restaurantID, phone)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to match customers", nil)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// @Summary Get customer
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} queries.CustomerView
// @Failure 404 {object} httperr.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
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
		httperr.AbortWithError(c, http.StatusNotFound, err, "Customer not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Customer reservation history
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {array} queries.ReservationView
// @Router /customers/{id}/reservations [get]
func (h *CustomerHandler) History(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	views, err := h.resQ.ListByCustomer(c.Request.Context(), restaurantID, id, defaultCustomerSearchLimit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load history", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateCustomerRequest true "Customer profile"
// @Success 201 {object} resdto.CreatedResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	var req reqdto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	id, err := h.cmds.Create(c.Request.Context(), restaurantID, req)
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

// @Summary Update customer profile
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param request body reqdto.UpdateCustomerRequest true "Updated profile"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.UpdateCustomerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.cmds.Update(c.Request.Context(), restaurantID, id, req); err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Customer updated"})
}

// @Summary Link customer to reservation
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param reservation_id path string true "Reservation ID"
// @Success 200 {object} resdto.MessageResponse
// @Failure 404 {object} httperr.Response
// @Router /customers/{id}/reservations/{reservation_id} [post]
func (h *CustomerHandler) LinkReservation(c *gin.Context) {
	restaurantID, _, ok := identity(c)
	if !ok {
		return
	}
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	reservationID, err := uuid.Parse(c.Param("reservation_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation id", nil)
		return
	}

	if err := h.cmds.LinkReservation(c.Request.Context(), restaurantID, customerID, reservationID); err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Customer linked"})
}

func abortCustomerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCustomerNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Customer not found", nil)
	case errors.Is(err, commands.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errors.Is(err, commands.ErrDuplicateCustomerPhone):
		httperr.AbortWithError(c, http.StatusConflict, err, "Customer with this phone already exists", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
