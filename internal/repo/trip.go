package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// TripRepo defines the persistence operations for TripRequests and the
// BookingHistory rows derived from them.
type TripRepo interface {
	// CreateTripRequest inserts a new request and returns the stored row.
	// Status is always stored as Pending regardless of the value supplied.
	CreateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error)

	// UpdateTripRequest writes only the management fields, status, and
	// updated_by of an existing request and re-stamps updated_at. The
	// traveller-intent fields are left untouched.
	// Returns domain.ErrNotFound if no request with tr.ID exists.
	UpdateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error)

	// GetTripRequestByID returns domain.ErrNotFound if no request matches.
	GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error)

	// LockTripRequest reads a request with SELECT ... FOR UPDATE so its row
	// stays locked until the surrounding transaction ends. Outside a
	// transaction the lock is released as soon as the statement completes.
	// Returns domain.ErrNotFound if no request matches.
	LockTripRequest(ctx context.Context, id int64) (domain.TripRequest, error)

	// GetTripRequestsByShareholderID returns a shareholder's requests, newest first.
	GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error)

	// CreateBookingHistory appends a booking row and returns it.
	CreateBookingHistory(ctx context.Context, b domain.BookingHistory) (domain.BookingHistory, error)

	// GetBookingHistoryByShareholderID returns a shareholder's bookings, newest first.
	GetBookingHistoryByShareholderID(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error)

	// SearchBookingHistory returns a shareholder's bookings whose passenger
	// name, ticket number, or updated-by actor contains term, newest first.
	SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripRequestColumns = `
	id, shareholder_id, full_name, ticket_type, relationship, remarks, ticket_issue, entitlement,
	ticket_no, passport_number, departure_airport, departure_city, arrival_airport, arrival_city,
	departure_date, return_date, status, created_at, updated_at, created_by, updated_by`

// CreateTripRequest inserts a new request in the Pending state.
func (r *pgTripRepo) CreateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	const q = `
		INSERT INTO trip_requests (shareholder_id, full_name, ticket_type, relationship, remarks,
		                           ticket_issue, entitlement, status, created_by, updated_by,
		                           created_at, updated_at)
		VALUES (@shareholder_id, @full_name, @ticket_type, @relationship, @remarks,
		        @ticket_issue, @entitlement, @status, @created_by, @created_by,
		        now(), now())
		RETURNING ` + tripRequestColumns

	args := pgx.NamedArgs{
		"shareholder_id": tr.ShareholderID,
		"full_name":      tr.FullName,
		"ticket_type":    tr.TicketType,
		"relationship":   tr.Relationship,
		"remarks":        tr.Remarks,
		"ticket_issue":   tr.TicketIssue,
		"entitlement":    tr.Entitlement,
		"status":         string(domain.TripStatusPending),
		"created_by":     tr.CreatedBy,
	}

	result, err := scanTripRequest(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("repo.TripRepo.CreateTripRequest: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) UpdateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	const q = `
		UPDATE trip_requests
		SET ticket_no         = @ticket_no,
		    passport_number   = @passport_number,
		    departure_airport = @departure_airport,
		    departure_city    = @departure_city,
		    arrival_airport   = @arrival_airport,
		    arrival_city      = @arrival_city,
		    departure_date    = @departure_date,
		    return_date       = @return_date,
		    status            = @status,
		    updated_by        = @updated_by,
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + tripRequestColumns

	args := pgx.NamedArgs{
		"id":                tr.ID,
		"ticket_no":         tr.TicketNo,
		"passport_number":   tr.PassportNumber,
		"departure_airport": tr.DepartureAirport,
		"departure_city":    tr.DepartureCity,
		"arrival_airport":   tr.ArrivalAirport,
		"arrival_city":      tr.ArrivalCity,
		"departure_date":    tr.DepartureDate,
		"return_date":       tr.ReturnDate,
		"status":            string(tr.Status),
		"updated_by":        tr.UpdatedBy,
	}

	result, err := scanTripRequest(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("repo.TripRepo.UpdateTripRequest: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error) {
	q := `SELECT ` + tripRequestColumns + ` FROM trip_requests WHERE id = @id`

	result, err := scanTripRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("repo.TripRepo.GetTripRequestByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) LockTripRequest(ctx context.Context, id int64) (domain.TripRequest, error) {
	q := `SELECT ` + tripRequestColumns + ` FROM trip_requests WHERE id = @id FOR UPDATE`

	result, err := scanTripRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("repo.TripRepo.LockTripRequest: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error) {
	q := `SELECT ` + tripRequestColumns + `
		FROM trip_requests
		WHERE shareholder_id = @shareholder_id
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetTripRequestsByShareholderID: %w", err)
	}
	defer rows.Close()

	requests := []domain.TripRequest{}
	for rows.Next() {
		tr, err := scanTripRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.GetTripRequestsByShareholderID: scan: %w", err)
		}
		requests = append(requests, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetTripRequestsByShareholderID: rows: %w", err)
	}
	return requests, nil
}

const bookingColumns = `
	id, reference, shareholder_id, trip_request_id, ticket_no, passenger_name, ticket_type,
	relationship, ticket_issue, entitlement, passport_number, departure_airport, arrival_airport,
	departure_date, return_date, booking_date, status, updated_by, created_at, updated_at`

// CreateBookingHistory appends a booking row. created_at and updated_at are
// stamped by the database.
func (r *pgTripRepo) CreateBookingHistory(ctx context.Context, b domain.BookingHistory) (domain.BookingHistory, error) {
	const q = `
		INSERT INTO booking_history (reference, shareholder_id, trip_request_id, ticket_no,
		                             passenger_name, ticket_type, relationship, ticket_issue,
		                             entitlement, passport_number, departure_airport, arrival_airport,
		                             departure_date, return_date, booking_date, status, updated_by,
		                             created_at, updated_at)
		VALUES (@reference, @shareholder_id, @trip_request_id, @ticket_no,
		        @passenger_name, @ticket_type, @relationship, @ticket_issue,
		        @entitlement, @passport_number, @departure_airport, @arrival_airport,
		        @departure_date, @return_date, @booking_date, @status, @updated_by,
		        now(), now())
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"reference":         b.Reference,
		"shareholder_id":    b.ShareholderID,
		"trip_request_id":   b.TripRequestID,
		"ticket_no":         b.TicketNo,
		"passenger_name":    b.PassengerName,
		"ticket_type":       b.TicketType,
		"relationship":      b.Relationship,
		"ticket_issue":      b.TicketIssue,
		"entitlement":       b.Entitlement,
		"passport_number":   b.PassportNumber,
		"departure_airport": b.DepartureAirport,
		"arrival_airport":   b.ArrivalAirport,
		"departure_date":    b.DepartureDate,
		"return_date":       b.ReturnDate,
		"booking_date":      b.BookingDate,
		"status":            b.Status,
		"updated_by":        b.UpdatedBy,
	}

	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BookingHistory{}, fmt.Errorf("repo.TripRepo.CreateBookingHistory: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetBookingHistoryByShareholderID(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error) {
	q := `SELECT ` + bookingColumns + `
		FROM booking_history
		WHERE shareholder_id = @shareholder_id
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetBookingHistoryByShareholderID: %w", err)
	}
	result, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetBookingHistoryByShareholderID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
	q := `SELECT ` + bookingColumns + `
		FROM booking_history
		WHERE shareholder_id = @shareholder_id
		  AND (passenger_name ILIKE @pattern
		       OR ticket_no   ILIKE @pattern
		       OR updated_by  ILIKE @pattern)
		ORDER BY created_at DESC, id DESC`

	args := pgx.NamedArgs{"shareholder_id": shareholderID, "pattern": containsPattern(term)}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.SearchBookingHistory: %w", err)
	}
	result, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.SearchBookingHistory: %w", err)
	}
	return result, nil
}

// scanTripRequest maps a single database row into a domain.TripRequest.
// It handles the nullable ticket_issue and date columns.
func scanTripRequest(s scanner) (domain.TripRequest, error) {
	var (
		tr                  domain.TripRequest
		ticketIssue         pgtype.Int4
		departure, returnOn pgtype.Date
		status              string
	)
	err := s.Scan(
		&tr.ID, &tr.ShareholderID, &tr.FullName, &tr.TicketType, &tr.Relationship, &tr.Remarks,
		&ticketIssue, &tr.Entitlement,
		&tr.TicketNo, &tr.PassportNumber, &tr.DepartureAirport, &tr.DepartureCity,
		&tr.ArrivalAirport, &tr.ArrivalCity, &departure, &returnOn,
		&status, &tr.CreatedAt, &tr.UpdatedAt, &tr.CreatedBy, &tr.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripRequest{}, domain.ErrNotFound
		}
		return domain.TripRequest{}, err
	}
	tr.TicketIssue = int4Ptr(ticketIssue)
	tr.DepartureDate = datePtr(departure)
	tr.ReturnDate = datePtr(returnOn)
	tr.Status = domain.TripStatus(status)
	return tr, nil
}

// scanBooking maps a single database row into a domain.BookingHistory.
func scanBooking(s scanner) (domain.BookingHistory, error) {
	var (
		b                   domain.BookingHistory
		reference           pgtype.UUID
		tripRequestID       pgtype.Int8
		ticketIssue         pgtype.Int4
		departure, returnOn pgtype.Date
	)
	err := s.Scan(
		&b.ID, &reference, &b.ShareholderID, &tripRequestID, &b.TicketNo, &b.PassengerName,
		&b.TicketType, &b.Relationship, &ticketIssue, &b.Entitlement, &b.PassportNumber,
		&b.DepartureAirport, &b.ArrivalAirport, &departure, &returnOn, &b.BookingDate,
		&b.Status, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BookingHistory{}, domain.ErrNotFound
		}
		return domain.BookingHistory{}, err
	}
	b.Reference = uuid.UUID(reference.Bytes)
	if tripRequestID.Valid {
		id := tripRequestID.Int64
		b.TripRequestID = &id
	}
	b.TicketIssue = int4Ptr(ticketIssue)
	b.DepartureDate = datePtr(departure)
	b.ReturnDate = datePtr(returnOn)
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.BookingHistory, error) {
	defer rows.Close()

	bookings := []domain.BookingHistory{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return bookings, nil
}
