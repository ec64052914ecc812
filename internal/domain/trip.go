package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a TripRequest.
type TripStatus string

const (
	// TripStatusPending is forced by the repository on every new request.
	TripStatusPending TripStatus = "Pending"
	// TripStatusApproved is set once the management fields have been filled in.
	TripStatusApproved TripStatus = "Approved"
)

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	return s == TripStatusPending || s == TripStatusApproved
}

// BookingStatusIssued is the terminal status stamped on every booking.
const BookingStatusIssued = "Issued"

// TripRequest is a travel ask raised against a shareholder.
// The first group of fields is supplied when the request is raised; the
// second group is only filled in when the request is managed into approval.
type TripRequest struct {
	ID            int64  `json:"id"`
	ShareholderID int64  `json:"shareholder_id"`
	FullName      string `json:"full_name"`
	TicketType    string `json:"ticket_type"`
	Relationship  string `json:"relationship,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	TicketIssue   *int   `json:"ticket_issue,omitempty"`
	Entitlement   string `json:"entitlement,omitempty"`

	ManageRequest

	Status    TripStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

// ManageRequest is the management field set applied to a TripRequest when it
// is approved.
type ManageRequest struct {
	TicketNo         string     `json:"ticket_no,omitempty"`
	PassportNumber   string     `json:"passport_number,omitempty"`
	DepartureAirport string     `json:"departure_airport,omitempty"`
	DepartureCity    string     `json:"departure_city,omitempty"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty"`
	ArrivalCity      string     `json:"arrival_city,omitempty"`
	DepartureDate    *time.Time `json:"departure_date,omitempty"`
	ReturnDate       *time.Time `json:"return_date,omitempty"`
}

// TripRequestForm is the traveller-intent submission keyed by folio id.
type TripRequestForm struct {
	FolioID      string
	FullName     string
	TicketType   string
	Relationship string
	Remarks      string
	TicketIssue  *int
	Entitlement  string
}

// BookingHistory is the append-only record of an issued trip. It is derived
// from an approved TripRequest and never updated afterwards.
type BookingHistory struct {
	ID               int64      `json:"id"`
	Reference        uuid.UUID  `json:"reference"`
	ShareholderID    int64      `json:"shareholder_id"`
	TripRequestID    *int64     `json:"trip_request_id,omitempty"`
	TicketNo         string     `json:"ticket_no,omitempty"`
	PassengerName    string     `json:"passenger_name"`
	TicketType       string     `json:"ticket_type,omitempty"`
	Relationship     string     `json:"relationship,omitempty"`
	TicketIssue      *int       `json:"ticket_issue,omitempty"`
	Entitlement      string     `json:"entitlement,omitempty"`
	PassportNumber   string     `json:"passport_number,omitempty"`
	DepartureAirport string     `json:"departure_airport,omitempty"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty"`
	DepartureDate    *time.Time `json:"departure_date,omitempty"`
	ReturnDate       *time.Time `json:"return_date,omitempty"`
	BookingDate      time.Time  `json:"booking_date"`
	Status           string     `json:"status"`
	UpdatedBy        string     `json:"updated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
