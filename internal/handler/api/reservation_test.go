//go:build unit

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"tablebook/internal/domain/user"
	"tablebook/internal/handler/api"
	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/middleware"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"
	"tablebook/tests/common/httptest"
	commandsmock "tablebook/tests/mock/commands"
	queriesmock "tablebook/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	restaurantID uuid.UUID
	userID       uuid.UUID
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.restaurantID = uuid.New()
	s.userID = uuid.New()

	handler := api.NewReservationHandler(s.mockCommands, s.mockQueries, clock.NewMockClock(time.Date(2026, 5, 12, 14, 0, 0, 0, time.UTC)))

	s.router.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, s.userID, s.restaurantID, user.RoleStaff)
	})
	s.router.POST("/reservations", handler.Create)
	s.router.GET("/reservations/timeline", handler.Timeline)
	s.router.GET("/reservations/:id", handler.Get)
	s.router.POST("/reservations/:id/move", handler.Move)
	s.router.POST("/reservations/:id/status", handler.ChangeStatus)
	s.router.DELETE("/reservations/:id", handler.Delete)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func (s *ReservationHandlerTestSuite) createRequest() reqdto.CreateReservationRequest {
	start := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	return reqdto.CreateReservationRequest{
		TableID:   uuid.New(),
		GuestName: "Tanaka",
		PartySize: 2,
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
	}
}

func (s *ReservationHandlerTestSuite) TestCreate() {
	url := "/reservations"
	req := s.createRequest()
	key := uuid.New()
	headers := map[string]string{"Idempotency-Key": key.String()}

	s.Run("success: returns 201 Created", func() {
		resID := uuid.New()
		s.mockCommands.EXPECT().
			Create(gomock.Any(), s.restaurantID, s.userID, key, req).
			Return(&commands.CreateReservationResult{ID: resID}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, req, headers)

		var response resdto.CreateReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(resID, response.ID)
		s.False(response.Replayed)
	})

	s.Run("success: replayed request returns 200 OK", func() {
		resID := uuid.New()
		s.mockCommands.EXPECT().
			Create(gomock.Any(), s.restaurantID, s.userID, key, req).
			Return(&commands.CreateReservationResult{ID: resID, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, req, headers)

		var response resdto.CreateReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.True(response.Replayed)
	})

	s.Run("error: 400 without an Idempotency-Key header", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("error: 400 on missing required fields", func() {
		invalid := req
		invalid.GuestName = ""
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, invalid, headers)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "table not found", commandsError: commands.ErrTableNotFound, expectedStatus: http.StatusNotFound},
			{name: "conflict sentinel", commandsError: commands.ErrReservationConflict, expectedStatus: http.StatusConflict},
			{name: "invalid time slot", commandsError: commands.ErrInvalidTimeSlot, expectedStatus: http.StatusBadRequest},
			{name: "time in the past", commandsError: commands.ErrPastTime, expectedStatus: http.StatusUnprocessableEntity},
			{name: "idempotency in progress", commandsError: commands.ErrIdempotencyInProgress, expectedStatus: http.StatusConflict},
			{name: "divergent duplicate", commandsError: commands.ErrDuplicateRequest, expectedStatus: http.StatusConflict},
			{name: "domain validation", commandsError: commands.ErrDomainValidation, expectedStatus: http.StatusUnprocessableEntity},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().
					Create(gomock.Any(), s.restaurantID, s.userID, key, req).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, req, headers)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})

	s.Run("error: 409 with conflict detail payload", func() {
		conflictingID := uuid.New()
		s.mockCommands.EXPECT().
			Create(gomock.Any(), s.restaurantID, s.userID, key, req).
			Return(nil, &commands.ConflictError{
				ConflictingID: conflictingID,
				TableID:       req.TableID,
				StartTime:     req.StartTime,
				EndTime:       req.EndTime,
				Status:        "booked",
			}).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, req, headers)

		s.Equal(http.StatusConflict, rec.Code)
		var body struct {
			Detail resdto.ConflictDetail `json:"detail"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal(conflictingID, body.Detail.ConflictingID)
	})
}

func (s *ReservationHandlerTestSuite) TestTimeline() {
	s.Run("success: passes the parsed service day through", func() {
		s.mockQueries.EXPECT().
			Timeline(gomock.Any(), s.restaurantID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, date time.Time) (*queries.TimelineView, error) {
				s.Equal(2026, date.Year())
				s.Equal(time.May, date.Month())
				s.Equal(10, date.Day())
				return &queries.TimelineView{Date: "2026-05-10", Lanes: []queries.TimelineLane{}}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/timeline?date=2026-05-10", nil, "")

		var view queries.TimelineView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
		s.Equal("2026-05-10", view.Date)
	})

	s.Run("success: defaults to today when no date is given", func() {
		s.mockQueries.EXPECT().
			Timeline(gomock.Any(), s.restaurantID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, date time.Time) (*queries.TimelineView, error) {
				s.Equal(2026, date.Year())
				s.Equal(time.May, date.Month())
				s.Equal(12, date.Day())
				return &queries.TimelineView{Date: "2026-05-12", Lanes: []queries.TimelineLane{}}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/timeline", nil, "")

		var view queries.TimelineView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
		s.Equal("2026-05-12", view.Date)
	})

	s.Run("error: 400 on malformed date", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/timeline?date=05-10-2026", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *ReservationHandlerTestSuite) TestChangeStatus() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/status"

	s.Run("success", func() {
		s.mockCommands.EXPECT().
			ChangeStatus(gomock.Any(), s.restaurantID, id, "seat").
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.ChangeReservationStatusRequest{Action: "seat"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 422 on illegal transition", func() {
		s.mockCommands.EXPECT().
			ChangeStatus(gomock.Any(), s.restaurantID, id, "seat").
			Return(commands.ErrIllegalTransition).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.ChangeReservationStatusRequest{Action: "seat"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")
	})

	s.Run("error: 400 on unknown action", func() {
		s.mockCommands.EXPECT().
			ChangeStatus(gomock.Any(), s.restaurantID, id, "vaporize").
			Return(commands.ErrInvalidAction).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.ChangeReservationStatusRequest{Action: "vaporize"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *ReservationHandlerTestSuite) TestDelete() {
	id := uuid.New()

	s.Run("success: 204", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), s.restaurantID, id).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/"+id.String(), nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 404", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), s.restaurantID, id).Return(commands.ErrReservationNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/not-a-uuid", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}
