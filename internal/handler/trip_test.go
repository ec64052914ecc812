package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

func janeByFolio() *mockShareholders {
	return &mockShareholders{
		getByFolioID: func(_ context.Context, folioID string) (domain.Shareholder, error) {
			if folioID != "FLN1001" {
				return domain.Shareholder{}, domain.ErrNotFound
			}
			return domain.Shareholder{ID: 7, FolioID: folioID}, nil
		},
	}
}

func TestSubmitTripRequest(t *testing.T) {
	var gotForm domain.TripRequestForm
	var gotActor domain.Actor
	trips := &mockTrips{
		submit: func(_ context.Context, actor domain.Actor, form domain.TripRequestForm) (domain.TripRequest, error) {
			gotActor, gotForm = actor, form
			return domain.TripRequest{ID: 3, ShareholderID: 7, FullName: form.FullName, Status: domain.TripStatusPending}, nil
		},
	}
	h := newRouter(janeByFolio(), trips)

	rec := do(t, h, http.MethodPost, "/shareholders/FLN1001/trip-requests", "clerk",
		`{"full_name":"Jane Doe","ticket_type":"Business","ticket_issue":1}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "clerk", gotActor.Name)
	assert.Equal(t, "FLN1001", gotForm.FolioID)
	require.NotNil(t, gotForm.TicketIssue)
	assert.Equal(t, 1, *gotForm.TicketIssue)

	env := decodeEnvelope(t, rec)
	var data struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(3), data.ID)
	assert.Equal(t, "Pending", data.Status)
}

func TestSubmitTripRequest_UnknownFolio(t *testing.T) {
	trips := &mockTrips{
		submit: func(_ context.Context, _ domain.Actor, _ domain.TripRequestForm) (domain.TripRequest, error) {
			return domain.TripRequest{}, domain.ErrNotFound
		},
	}
	h := newRouter(janeByFolio(), trips)

	rec := do(t, h, http.MethodPost, "/shareholders/FLN404/trip-requests", "clerk", `{"full_name":"x","ticket_type":"y"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Shareholder not found.", decodeEnvelope(t, rec).Message)
}

func TestListTripRequests(t *testing.T) {
	var gotID int64
	trips := &mockTrips{
		list: func(_ context.Context, shareholderID int64) ([]domain.TripRequest, error) {
			gotID = shareholderID
			return []domain.TripRequest{{ID: 2}, {ID: 1}}, nil
		},
	}
	h := newRouter(janeByFolio(), trips)

	rec := do(t, h, http.MethodGet, "/shareholders/FLN1001/trip-requests", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotID)
	var data []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Len(t, data, 2)
}

func TestListTripRequests_UnknownFolio(t *testing.T) {
	h := newRouter(janeByFolio(), &mockTrips{})

	rec := do(t, h, http.MethodGet, "/shareholders/FLN404/trip-requests", "", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTripRequest(t *testing.T) {
	departure := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	trips := &mockTrips{
		getByID: func(_ context.Context, id int64) (domain.TripRequest, error) {
			if id != 3 {
				return domain.TripRequest{}, domain.ErrNotFound
			}
			tr := domain.TripRequest{ID: 3, Status: domain.TripStatusApproved}
			tr.DepartureDate = &departure
			return tr, nil
		},
	}
	h := newRouter(&mockShareholders{}, trips)

	rec := do(t, h, http.MethodGet, "/trip-requests/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		DepartureDate string `json:"departure_date"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, "2025-03-01", data.DepartureDate)

	rec = do(t, h, http.MethodGet, "/trip-requests/4", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Trip request not found.", decodeEnvelope(t, rec).Message)
}

func TestGetTripRequest_BadID(t *testing.T) {
	h := newRouter(&mockShareholders{}, &mockTrips{})

	for _, id := range []string{"abc", "0", "-5"} {
		rec := do(t, h, http.MethodGet, "/trip-requests/"+id, "", "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, id)
	}
}

func TestApproveTripRequest(t *testing.T) {
	ref := uuid.MustParse("6f1c2a7e-8b7d-4c1e-9f3a-2d5b6c7e8f90")
	var gotManage domain.ManageRequest
	var gotID int64
	trips := &mockTrips{
		approve: func(_ context.Context, actor domain.Actor, id int64, m domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error) {
			gotID, gotManage = id, m
			tr := domain.TripRequest{ID: id, ShareholderID: 7, Status: domain.TripStatusApproved, UpdatedBy: actor.Name, ManageRequest: m}
			b := domain.BookingHistory{
				ID:               1,
				Reference:        ref,
				ShareholderID:    7,
				DepartureAirport: m.DepartureAirport,
				ArrivalAirport:   m.ArrivalAirport,
				Status:           domain.BookingStatusIssued,
			}
			return tr, b, nil
		},
	}
	h := newRouter(&mockShareholders{}, trips)

	rec := do(t, h, http.MethodPost, "/trip-requests/3/approve", "manager", `{
		"ticket_no": "TK-0001",
		"departure_airport": "CMB",
		"arrival_airport": "DXB",
		"departure_date": "2025-03-01",
		"return_date": "2025-03-10"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), gotID)
	assert.Equal(t, "CMB", gotManage.DepartureAirport)
	require.NotNil(t, gotManage.ReturnDate)
	assert.True(t, gotManage.ReturnDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	var data struct {
		TripRequest struct {
			Status    string `json:"status"`
			UpdatedBy string `json:"updated_by"`
		} `json:"trip_request"`
		Booking struct {
			Reference      string `json:"reference"`
			ArrivalAirport string `json:"arrival_airport"`
			Status         string `json:"status"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, "Approved", data.TripRequest.Status)
	assert.Equal(t, "manager", data.TripRequest.UpdatedBy)
	assert.Equal(t, ref.String(), data.Booking.Reference)
	assert.Equal(t, "DXB", data.Booking.ArrivalAirport)
	assert.Equal(t, "Issued", data.Booking.Status)
}

func TestApproveTripRequest_AlreadyApproved(t *testing.T) {
	trips := &mockTrips{
		approve: func(_ context.Context, _ domain.Actor, id int64, _ domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error) {
			return domain.TripRequest{}, domain.BookingHistory{},
				fmt.Errorf("service.TripService.ApproveTripRequest: %w: trip request %d is already Approved", domain.ErrConflict, id)
		},
	}
	h := newRouter(&mockShareholders{}, trips)

	rec := do(t, h, http.MethodPost, "/trip-requests/3/approve", "manager", `{"ticket_no":"TK-0001"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "conflict", env.Code)
	assert.Equal(t, "This trip request has already been approved.", env.Message)
}

func TestApproveTripRequest_BadDate(t *testing.T) {
	h := newRouter(&mockShareholders{}, &mockTrips{})

	rec := do(t, h, http.MethodPost, "/trip-requests/3/approve", "manager", `{"departure_date":"01/03/2025"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListBookings(t *testing.T) {
	var gotTerm string
	trips := &mockTrips{
		bookings: func(_ context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
			gotTerm = term
			return []domain.BookingHistory{}, nil
		},
	}
	h := newRouter(janeByFolio(), trips)

	rec := do(t, h, http.MethodGet, "/shareholders/FLN1001/bookings?q=doe", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doe", gotTerm)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}
