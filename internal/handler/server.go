// Package handler implements the HTTP handlers for the Aeroholder API.
// All handlers are methods on Server; they are split into resource files
// (shareholder.go, trip.go, health.go) but share the same dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/middleware"
)

// ShareholderServicer is the shareholder aggregate as the handlers use it.
// Defined here, in the consumer, so tests can inject a mock.
type ShareholderServicer interface {
	ValidateFolioID(folioID string) bool
	GetShareholderByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error)
	GetShareholderDetails(ctx context.Context, folioID string) (domain.ShareholderDetails, error)
	ListShareholders(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, domain.Pagination, error)
	CreateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error)
	UpdateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error)
	DeleteShareholder(ctx context.Context, actor domain.Actor, folioID string) error
}

// TripServicer is the trip lifecycle as the handlers use it.
type TripServicer interface {
	SubmitTripRequest(ctx context.Context, actor domain.Actor, form domain.TripRequestForm) (domain.TripRequest, error)
	GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error)
	GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error)
	ApproveTripRequest(ctx context.Context, actor domain.Actor, id int64, m domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error)
	SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	shareholders ShareholderServicer
	trips        TripServicer
	log          *slog.Logger
}

// NewServer constructs the Server. A nil logger falls back to slog.Default.
func NewServer(shareholders ShareholderServicer, trips TripServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{shareholders: shareholders, trips: trips, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes registers every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithActor)

		r.Get("/folio-ids/{folioID}/validity", s.ValidateFolioID)

		r.Route("/shareholders", func(r chi.Router) {
			r.Get("/", s.ListShareholders)
			r.Post("/", s.CreateShareholder)

			r.Route("/{folioID}", func(r chi.Router) {
				r.Get("/", s.GetShareholder)
				r.Put("/", s.UpdateShareholder)
				r.Delete("/", s.DeleteShareholder)

				r.Get("/trip-requests", s.ListTripRequests)
				r.Post("/trip-requests", s.SubmitTripRequest)
				r.Get("/bookings", s.ListBookings)
			})
		})

		r.Route("/trip-requests/{id}", func(r chi.Router) {
			r.Get("/", s.GetTripRequest)
			r.Post("/approve", s.ApproveTripRequest)
		})
	})
}
