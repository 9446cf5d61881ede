//go:build e2e

package reservation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"tablebook/internal/domain/user"
	"tablebook/internal/handler/dto/request"
	"tablebook/internal/handler/dto/response"
	"tablebook/internal/usecase/queries"
	"tablebook/tests/common/authtest"
	"tablebook/tests/common/dbtest"
	"tablebook/tests/common/httptest"
	"tablebook/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reservationsURL = "/api/reservations"
	timelineURL     = "/api/reservations/timeline?date=%s"
	statusURL       = "/api/reservations/%s/status"
)

type ReservationSuite struct {
	e2e.SharedSuite
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReservationSuite))
}

func (s *ReservationSuite) reservationWindow() (time.Time, time.Time) {
	day := time.Now().UTC().AddDate(0, 0, 7)
	start := time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, time.UTC)
	return start, start.Add(2 * time.Hour)
}

func (s *ReservationSuite) createReservation(t *testing.T, token string, req request.CreateReservationRequest, key uuid.UUID) *response.CreateReservationResponse {
	t.Helper()

	headers := map[string]string{
		"Authorization":   "Bearer " + token,
		"Idempotency-Key": key.String(),
	}
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, req, headers)
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())

	var created response.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.ID)
	return &created
}

// =============================================================================
// TestCreateReservation - booking API tests
// =============================================================================

func (s *ReservationSuite) TestCreateReservation() {
	s.Run("Normal case: staff can book a free table", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		created := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Sato",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}, uuid.New())

		var status string
		err := s.DB.QueryRow(context.Background(),
			"SELECT status FROM reservations WHERE id = $1", created.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "booked", status)
	})

	s.Run("Idempotency: replaying the same key returns the same reservation", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		req := request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Sato",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}
		key := uuid.New()

		first := s.createReservation(t, token, req, key)
		second := s.createReservation(t, token, req, key)

		require.Equal(t, first.ID, second.ID)
		require.True(t, second.Replayed)

		var count int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM reservations WHERE table_id = $1", tableID).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	s.Run("Conflict: overlapping booking on the same table is rejected", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		first := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Sato",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}, uuid.New())

		headers := map[string]string{
			"Authorization":   "Bearer " + token,
			"Idempotency-Key": uuid.New().String(),
		}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{
				TableID:   tableID,
				GuestName: "Suzuki",
				PartySize: 2,
				StartTime: start.Add(30 * time.Minute),
				EndTime:   end.Add(30 * time.Minute),
			}, headers)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var body struct {
			Detail response.ConflictDetail `json:"detail"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, first.ID, body.Detail.ConflictingID)
	})

	s.Run("Auth: booking without a token is rejected", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		start, end := s.reservationWindow()

		headers := map[string]string{"Idempotency-Key": uuid.New().String()}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{
				TableID:   tableID,
				GuestName: "Sato",
				PartySize: 2,
				StartTime: start,
				EndTime:   end,
			}, headers)
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestTimeline - day grid query tests
// =============================================================================

func (s *ReservationSuite) TestTimeline() {
	s.Run("Normal case: created reservation appears on its table lane", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		customerID := dbtest.CreateTestCustomer(t, s.DB, "Sato Taro", "090-1234-5678")
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		created := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:    tableID,
			CustomerID: &customerID,
			GuestName:  "Sato Taro",
			GuestPhone: "090-1234-5678",
			PartySize:  3,
			StartTime:  start,
			EndTime:    end,
		}, uuid.New())

		url := fmt.Sprintf(timelineURL, start.Format("2006-01-02"))
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view queries.TimelineView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, start.Format("2006-01-02"), view.Date)

		var lane *queries.TimelineLane
		for i := range view.Lanes {
			if view.Lanes[i].Table.ID == tableID {
				lane = &view.Lanes[i]
			}
		}
		require.NotNil(t, lane, "table lane missing from timeline")
		require.Len(t, lane.Reservations, 1)

		expected := queries.ReservationView{
			ID:         created.ID,
			TableID:    tableID,
			TableName:  "T1",
			CustomerID: &customerID,
			GuestName:  "Sato Taro",
			GuestPhone: "090-1234-5678",
			PartySize:  3,
			StartTime:  start,
			EndTime:    end,
			Status:     "booked",
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(queries.ReservationView{}, "CreatedAt", "UpdatedAt"),
			cmpopts.EquateApproxTime(time.Second),
		}
		if diff := cmp.Diff(expected, lane.Reservations[0], opts...); diff != "" {
			t.Errorf("ReservationView mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Validation: malformed date is rejected", func() {
		t := s.T()

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			"/api/reservations/timeline?date=yesterday", nil, token)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestReservationLifecycle - status actions and customer stats
// =============================================================================

func (s *ReservationSuite) TestReservationLifecycle() {
	s.Run("Seating a linked customer counts exactly one visit", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		customerID := dbtest.CreateTestCustomer(t, s.DB, "Sato Taro", "090-1234-5678")
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		created := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:    tableID,
			CustomerID: &customerID,
			GuestName:  "Sato Taro",
			PartySize:  2,
			StartTime:  start,
			EndTime:    end,
		}, uuid.New())

		url := fmt.Sprintf(statusURL, created.ID)
		for _, action := range []string{"seat", "finish"} {
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, url,
				request.ChangeReservationStatusRequest{Action: action}, token)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		var totalVisits int
		err := s.DB.QueryRow(context.Background(),
			"SELECT total_visits FROM customers WHERE id = $1", customerID).Scan(&totalVisits)
		require.NoError(t, err)
		require.Equal(t, 1, totalVisits)

		var status string
		err = s.DB.QueryRow(context.Background(),
			"SELECT status FROM reservations WHERE id = $1", created.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "finished", status)
	})

	s.Run("Terminal state rejects further actions", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		created := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Sato",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}, uuid.New())

		url := fmt.Sprintf(statusURL, created.ID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, url,
			request.ChangeReservationStatusRequest{Action: "cancel"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, url,
			request.ChangeReservationStatusRequest{Action: "seat"}, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})

	s.Run("Cancelled reservation frees the table for rebooking", func() {
		t := s.T()

		tableID := dbtest.CreateTestTable(t, s.DB, "T1", 4)
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		start, end := s.reservationWindow()
		created := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Sato",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}, uuid.New())

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete,
			reservationsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		rebooked := s.createReservation(t, token, request.CreateReservationRequest{
			TableID:   tableID,
			GuestName: "Suzuki",
			PartySize: 2,
			StartTime: start,
			EndTime:   end,
		}, uuid.New())
		require.NotEqual(t, created.ID, rebooked.ID)
	})
}
