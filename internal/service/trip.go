package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/metrics"
	"github.com/ShewonGun/Aeroholder/internal/repo"
)

// TripService drives trip requests from Pending to Approved and issues the
// booking history row that records the approved trip.
//
//	CreateTripRequest ──► Pending ──UpdateTripRequest──► Approved
//	                                                        │
//	                                         CreateBookingFromTripRequest
//	                                                        ▼
//	                                                 BookingHistory
type TripService struct {
	trips        repo.TripRepo
	shareholders repo.ShareholderRepo
	tx           repo.TxRunner
	metrics      *metrics.Metrics

	// now and newReference are replaced in tests.
	now          func() time.Time
	newReference func() uuid.UUID
}

// NewTripService constructs a TripService. m may be nil.
func NewTripService(r repo.Repos, tx repo.TxRunner, m *metrics.Metrics) *TripService {
	return &TripService{
		trips:        r.Trips,
		shareholders: r.Shareholders,
		tx:           tx,
		metrics:      m,
		now:          time.Now,
		newReference: uuid.New,
	}
}

// CreateTripRequest validates and stores a new request. The stored status is
// always Pending; CreatedBy is the acting user.
func (s *TripService) CreateTripRequest(ctx context.Context, actor domain.Actor, tr domain.TripRequest) (domain.TripRequest, error) {
	const op = "service.TripService.CreateTripRequest"
	if err := authorize(actor); err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateTripRequest(tr); err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	tr.CreatedBy = actor.Name
	tr.Status = domain.TripStatusPending
	result, err := s.trips.CreateTripRequest(ctx, tr)
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncTripRequest()
	return result, nil
}

// SubmitTripRequest resolves form.FolioID to a shareholder and raises a trip
// request against it. Returns domain.ErrNotFound for an unknown folio id.
func (s *TripService) SubmitTripRequest(ctx context.Context, actor domain.Actor, form domain.TripRequestForm) (domain.TripRequest, error) {
	const op = "service.TripService.SubmitTripRequest"
	if err := authorize(actor); err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	folioID := strings.TrimSpace(form.FolioID)
	if folioID == "" {
		return domain.TripRequest{}, fmt.Errorf("%s: %w: folio id is required", op, domain.ErrValidation)
	}

	sh, err := s.shareholders.GetByFolioID(ctx, folioID)
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.CreateTripRequest(ctx, actor, domain.TripRequest{
		ShareholderID: sh.ID,
		FullName:      form.FullName,
		TicketType:    form.TicketType,
		Relationship:  form.Relationship,
		Remarks:       form.Remarks,
		TicketIssue:   form.TicketIssue,
		Entitlement:   form.Entitlement,
	})
}

// UpdateTripRequest persists the management fields and status of an existing
// request. The service does not infer transitions: callers set Status
// themselves. A blank status is stored as Approved.
// Returns domain.ErrNotFound if the request does not exist.
func (s *TripService) UpdateTripRequest(ctx context.Context, actor domain.Actor, tr domain.TripRequest) (domain.TripRequest, error) {
	const op = "service.TripService.UpdateTripRequest"
	if err := authorize(actor); err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	result, err := updateTripRequest(ctx, s.trips, actor, tr)
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	if result.Status == domain.TripStatusApproved {
		s.metrics.IncTripApproval()
	}
	return result, nil
}

// CreateBookingFromTripRequest derives a BookingHistory row from an approved
// request and appends it. The booking is stamped with the current time, the
// Issued status, and the acting user.
func (s *TripService) CreateBookingFromTripRequest(ctx context.Context, actor domain.Actor, tr domain.TripRequest) (domain.BookingHistory, error) {
	const op = "service.TripService.CreateBookingFromTripRequest"
	if err := authorize(actor); err != nil {
		return domain.BookingHistory{}, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.createBooking(ctx, s.trips, actor, tr)
	if err != nil {
		return domain.BookingHistory{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncBookingIssued()
	return result, nil
}

// ApproveTripRequest applies the management fields to request id, marks it
// Approved, and issues its booking, all in one transaction. If any step fails
// neither the approval nor the booking is stored. A request that is no longer
// Pending yields domain.ErrConflict, so each request is booked at most once.
func (s *TripService) ApproveTripRequest(ctx context.Context, actor domain.Actor, id int64, m domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error) {
	const op = "service.TripService.ApproveTripRequest"
	if err := authorize(actor); err != nil {
		return domain.TripRequest{}, domain.BookingHistory{}, fmt.Errorf("%s: %w", op, err)
	}
	if id <= 0 {
		return domain.TripRequest{}, domain.BookingHistory{}, fmt.Errorf("%s: %w: trip request id must be positive", op, domain.ErrValidation)
	}

	defer s.metrics.ObserveAggregate("approve_trip_request", time.Now())

	var (
		approved domain.TripRequest
		booking  domain.BookingHistory
	)
	err := s.tx.RunInTx(ctx, func(r repo.Repos) error {
		// The row lock makes a concurrent approval wait here, then see Approved.
		tr, err := r.Trips.LockTripRequest(ctx, id)
		if err != nil {
			return err
		}
		if tr.Status != domain.TripStatusPending {
			return fmt.Errorf("%w: trip request %d is already %s", domain.ErrConflict, id, tr.Status)
		}
		tr.ManageRequest = m
		tr.Status = domain.TripStatusApproved

		approved, err = updateTripRequest(ctx, r.Trips, actor, tr)
		if err != nil {
			return err
		}
		booking, err = s.createBooking(ctx, r.Trips, actor, approved)
		return err
	})
	if err != nil {
		return domain.TripRequest{}, domain.BookingHistory{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncTripApproval()
	s.metrics.IncBookingIssued()
	return approved, booking, nil
}

// GetTripRequestByID returns domain.ErrNotFound if the request does not exist.
func (s *TripService) GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error) {
	if id <= 0 {
		return domain.TripRequest{}, fmt.Errorf("service.TripService.GetTripRequestByID: %w: trip request id must be positive", domain.ErrValidation)
	}
	result, err := s.trips.GetTripRequestByID(ctx, id)
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("service.TripService.GetTripRequestByID: %w", err)
	}
	return result, nil
}

// GetTripRequestsByShareholderID returns a shareholder's requests, newest first.
func (s *TripService) GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error) {
	if shareholderID <= 0 {
		return nil, fmt.Errorf("service.TripService.GetTripRequestsByShareholderID: %w: shareholder id must be positive", domain.ErrValidation)
	}
	result, err := s.trips.GetTripRequestsByShareholderID(ctx, shareholderID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.GetTripRequestsByShareholderID: %w", err)
	}
	if result == nil {
		return []domain.TripRequest{}, nil
	}
	return result, nil
}

// GetBookingHistoryByShareholderID returns a shareholder's bookings, newest first.
func (s *TripService) GetBookingHistoryByShareholderID(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error) {
	if shareholderID <= 0 {
		return nil, fmt.Errorf("service.TripService.GetBookingHistoryByShareholderID: %w: shareholder id must be positive", domain.ErrValidation)
	}
	result, err := s.trips.GetBookingHistoryByShareholderID(ctx, shareholderID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.GetBookingHistoryByShareholderID: %w", err)
	}
	if result == nil {
		return []domain.BookingHistory{}, nil
	}
	return result, nil
}

// SearchBookingHistory filters a shareholder's bookings by passenger name,
// ticket number, or updated-by actor. A blank term returns every booking.
func (s *TripService) SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
	if shareholderID <= 0 {
		return nil, fmt.Errorf("service.TripService.SearchBookingHistory: %w: shareholder id must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(term) == "" {
		return s.GetBookingHistoryByShareholderID(ctx, shareholderID)
	}
	result, err := s.trips.SearchBookingHistory(ctx, shareholderID, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("service.TripService.SearchBookingHistory: %w", err)
	}
	if result == nil {
		return []domain.BookingHistory{}, nil
	}
	return result, nil
}

func updateTripRequest(ctx context.Context, trips repo.TripRepo, actor domain.Actor, tr domain.TripRequest) (domain.TripRequest, error) {
	if tr.ID <= 0 {
		return domain.TripRequest{}, fmt.Errorf("%w: trip request id must be positive", domain.ErrValidation)
	}
	if tr.Status == "" {
		tr.Status = domain.TripStatusApproved
	}
	if !tr.Status.Valid() {
		return domain.TripRequest{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, tr.Status)
	}
	if err := validateDates(tr.DepartureDate, tr.ReturnDate); err != nil {
		return domain.TripRequest{}, err
	}
	tr.UpdatedBy = actor.Name
	return trips.UpdateTripRequest(ctx, tr)
}

// createBooking derives the booking from tr and appends it through trips.
func (s *TripService) createBooking(ctx context.Context, trips repo.TripRepo, actor domain.Actor, tr domain.TripRequest) (domain.BookingHistory, error) {
	switch {
	case tr.ID <= 0:
		return domain.BookingHistory{}, fmt.Errorf("%w: trip request id must be positive", domain.ErrValidation)
	case tr.ShareholderID <= 0:
		return domain.BookingHistory{}, fmt.Errorf("%w: shareholder id must be positive", domain.ErrValidation)
	case tr.Status != domain.TripStatusApproved:
		return domain.BookingHistory{}, fmt.Errorf("%w: trip request %d is %s, only approved requests can be booked", domain.ErrValidation, tr.ID, tr.Status)
	}
	return trips.CreateBookingHistory(ctx, bookingFromTripRequest(tr, actor.Name, s.now(), s.newReference()))
}

// bookingFromTripRequest copies the traveller identity and route of tr into a
// new BookingHistory row.
func bookingFromTripRequest(tr domain.TripRequest, actor string, now time.Time, ref uuid.UUID) domain.BookingHistory {
	tripRequestID := tr.ID
	return domain.BookingHistory{
		Reference:        ref,
		ShareholderID:    tr.ShareholderID,
		TripRequestID:    &tripRequestID,
		TicketNo:         tr.TicketNo,
		PassengerName:    tr.FullName,
		TicketType:       tr.TicketType,
		Relationship:     tr.Relationship,
		TicketIssue:      tr.TicketIssue,
		Entitlement:      tr.Entitlement,
		PassportNumber:   tr.PassportNumber,
		DepartureAirport: tr.DepartureAirport,
		ArrivalAirport:   tr.ArrivalAirport,
		DepartureDate:    tr.DepartureDate,
		ReturnDate:       tr.ReturnDate,
		BookingDate:      now,
		Status:           domain.BookingStatusIssued,
		UpdatedBy:        actor,
	}
}

// validateTripRequest enforces the rules for raising a request.
func validateTripRequest(tr domain.TripRequest) error {
	switch {
	case tr.ShareholderID <= 0:
		return fmt.Errorf("%w: shareholder id must be positive", domain.ErrValidation)
	case strings.TrimSpace(tr.FullName) == "":
		return fmt.Errorf("%w: full name is required", domain.ErrValidation)
	case strings.TrimSpace(tr.TicketType) == "":
		return fmt.Errorf("%w: ticket type is required", domain.ErrValidation)
	case tr.TicketIssue != nil && *tr.TicketIssue < 0:
		return fmt.Errorf("%w: ticket issue cannot be negative", domain.ErrValidation)
	}
	return nil
}

// validateDates rejects a return date before the departure date.
// Same-day returns are allowed.
func validateDates(departure, ret *time.Time) error {
	if departure != nil && ret != nil && ret.Before(*departure) {
		return fmt.Errorf("%w: return date must not be before departure date", domain.ErrValidation)
	}
	return nil
}
