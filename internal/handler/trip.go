package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ShewonGun/Aeroholder/internal/middleware"
)

const (
	tripRequestNotFound = "Trip request not found."
	tripRequestHandled  = "This trip request has already been approved."
)

// ListTripRequests handles GET /shareholders/{folioID}/trip-requests.
func (s *Server) ListTripRequests(w http.ResponseWriter, r *http.Request) {
	const op = "ListTripRequests"
	sh, err := s.shareholders.GetShareholderByFolioID(r.Context(), chi.URLParam(r, "folioID"))
	if err != nil {
		s.writeError(w, r, op, shareholderNotFound, err)
		return
	}

	requests, err := s.trips.GetTripRequestsByShareholderID(r.Context(), sh.ID)
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	data := make([]tripRequestResponse, len(requests))
	for i, tr := range requests {
		data[i] = tripRequestToResponse(tr)
	}
	writeData(w, http.StatusOK, data)
}

// SubmitTripRequest handles POST /shareholders/{folioID}/trip-requests.
func (s *Server) SubmitTripRequest(w http.ResponseWriter, r *http.Request) {
	const op = "SubmitTripRequest"
	var body tripRequestBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, op, "", err)
		return
	}

	tr, err := s.trips.SubmitTripRequest(r.Context(), middleware.ActorFrom(r.Context()), body.toForm(chi.URLParam(r, "folioID")))
	if err != nil {
		s.writeError(w, r, op, shareholderNotFound, err)
		return
	}
	writeJSON(w, http.StatusCreated, Notice{
		Success:  true,
		Severity: SeveritySuccess,
		Message:  "Trip request submitted successfully.",
		Data:     tripRequestToResponse(tr),
	})
}

// GetTripRequest handles GET /trip-requests/{id}.
func (s *Server) GetTripRequest(w http.ResponseWriter, r *http.Request) {
	const op = "GetTripRequest"
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}

	tr, err := s.trips.GetTripRequestByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, op, tripRequestNotFound, err)
		return
	}
	writeData(w, http.StatusOK, tripRequestToResponse(tr))
}

// ApproveTripRequest handles POST /trip-requests/{id}/approve. The request
// is approved and its booking issued together, or not at all.
func (s *Server) ApproveTripRequest(w http.ResponseWriter, r *http.Request) {
	const op = "ApproveTripRequest"
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	var body approveBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, op, "", err)
		return
	}

	tr, booking, err := s.trips.ApproveTripRequest(r.Context(), middleware.ActorFrom(r.Context()), id, body.toDomain())
	if err != nil {
		s.writeErrorWith(w, r, op, tripRequestNotFound, tripRequestHandled, err)
		return
	}
	writeJSON(w, http.StatusOK, Notice{
		Success:  true,
		Severity: SeveritySuccess,
		Message:  "Trip request approved and booking issued.",
		Data: approveResponse{
			TripRequest: tripRequestToResponse(tr),
			Booking:     bookingToResponse(booking),
		},
	})
}

// ListBookings handles GET /shareholders/{folioID}/bookings.
// ?q= filters by passenger name, ticket number, or updating user.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	const op = "ListBookings"
	sh, err := s.shareholders.GetShareholderByFolioID(r.Context(), chi.URLParam(r, "folioID"))
	if err != nil {
		s.writeError(w, r, op, shareholderNotFound, err)
		return
	}

	bookings, err := s.trips.SearchBookingHistory(r.Context(), sh.ID, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, op, "", err)
		return
	}
	data := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = bookingToResponse(b)
	}
	writeData(w, http.StatusOK, data)
}
