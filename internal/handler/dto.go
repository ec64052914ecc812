package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// --- request bodies ---------------------------------------------------------

type shareholderRequest struct {
	FolioID           string             `json:"folio_id"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	FullName          string             `json:"full_name"`
	Country           string             `json:"country"`
	Address1          string             `json:"address1"`
	Address2          string             `json:"address2"`
	City              string             `json:"city"`
	CompanyIndividual string             `json:"company_individual"`
	NoOfShares        int                `json:"no_of_shares"`
	NoOfTicketsIssued int                `json:"no_of_tickets_issued"`
	Entitlement       int                `json:"entitlement"`
	Passports         []passportBody     `json:"passports"`
	Dependents        []domain.Dependent `json:"dependents"`
}

type passportBody struct {
	ID             int64               `json:"id,omitempty"`
	PassportNumber string              `json:"passport_number"`
	IssuedCountry  string              `json:"issued_country,omitempty"`
	IssuedDate     *openapi_types.Date `json:"issued_date,omitempty"`
	ExpiryDate     *openapi_types.Date `json:"expiry_date,omitempty"`
}

type tripRequestBody struct {
	FullName     string `json:"full_name"`
	TicketType   string `json:"ticket_type"`
	Relationship string `json:"relationship"`
	Remarks      string `json:"remarks"`
	TicketIssue  *int   `json:"ticket_issue"`
	Entitlement  string `json:"entitlement"`
}

type approveBody struct {
	TicketNo         string              `json:"ticket_no"`
	PassportNumber   string              `json:"passport_number"`
	DepartureAirport string              `json:"departure_airport"`
	DepartureCity    string              `json:"departure_city"`
	ArrivalAirport   string              `json:"arrival_airport"`
	ArrivalCity      string              `json:"arrival_city"`
	DepartureDate    *openapi_types.Date `json:"departure_date"`
	ReturnDate       *openapi_types.Date `json:"return_date"`
}

// --- responses --------------------------------------------------------------

type shareholderDetailsResponse struct {
	Shareholder domain.Shareholder `json:"shareholder"`
	Passports   []passportBody     `json:"passports"`
	Dependents  []domain.Dependent `json:"dependents"`
}

type tripRequestResponse struct {
	ID               int64               `json:"id"`
	ShareholderID    int64               `json:"shareholder_id"`
	FullName         string              `json:"full_name"`
	TicketType       string              `json:"ticket_type"`
	Relationship     string              `json:"relationship,omitempty"`
	Remarks          string              `json:"remarks,omitempty"`
	TicketIssue      *int                `json:"ticket_issue,omitempty"`
	Entitlement      string              `json:"entitlement,omitempty"`
	TicketNo         string              `json:"ticket_no,omitempty"`
	PassportNumber   string              `json:"passport_number,omitempty"`
	DepartureAirport string              `json:"departure_airport,omitempty"`
	DepartureCity    string              `json:"departure_city,omitempty"`
	ArrivalAirport   string              `json:"arrival_airport,omitempty"`
	ArrivalCity      string              `json:"arrival_city,omitempty"`
	DepartureDate    *openapi_types.Date `json:"departure_date,omitempty"`
	ReturnDate       *openapi_types.Date `json:"return_date,omitempty"`
	Status           domain.TripStatus   `json:"status"`
	CreatedBy        string              `json:"created_by,omitempty"`
	UpdatedBy        string              `json:"updated_by,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type bookingResponse struct {
	ID               int64               `json:"id"`
	Reference        uuid.UUID           `json:"reference"`
	ShareholderID    int64               `json:"shareholder_id"`
	TripRequestID    *int64              `json:"trip_request_id,omitempty"`
	TicketNo         string              `json:"ticket_no,omitempty"`
	PassengerName    string              `json:"passenger_name"`
	TicketType       string              `json:"ticket_type,omitempty"`
	Relationship     string              `json:"relationship,omitempty"`
	TicketIssue      *int                `json:"ticket_issue,omitempty"`
	Entitlement      string              `json:"entitlement,omitempty"`
	PassportNumber   string              `json:"passport_number,omitempty"`
	DepartureAirport string              `json:"departure_airport,omitempty"`
	ArrivalAirport   string              `json:"arrival_airport,omitempty"`
	DepartureDate    *openapi_types.Date `json:"departure_date,omitempty"`
	ReturnDate       *openapi_types.Date `json:"return_date,omitempty"`
	BookingDate      time.Time           `json:"booking_date"`
	Status           string              `json:"status"`
	UpdatedBy        string              `json:"updated_by,omitempty"`
}

type approveResponse struct {
	TripRequest tripRequestResponse `json:"trip_request"`
	Booking     bookingResponse     `json:"booking"`
}

// --- decoding ---------------------------------------------------------------

// decodeBody reads a JSON body into v. Unknown fields are rejected so typos
// in field names surface as errors instead of silently dropped data.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", errBadRequest)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; absent yields nil.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return &n, nil
}

// --- mapping helpers --------------------------------------------------------

func (b shareholderRequest) toDomain(folioID string) domain.ShareholderDetails {
	d := domain.ShareholderDetails{
		Shareholder: domain.Shareholder{
			FolioID:           folioID,
			FirstName:         b.FirstName,
			LastName:          b.LastName,
			FullName:          b.FullName,
			Country:           b.Country,
			Address1:          b.Address1,
			Address2:          b.Address2,
			City:              b.City,
			CompanyIndividual: b.CompanyIndividual,
			NoOfShares:        b.NoOfShares,
			NoOfTicketsIssued: b.NoOfTicketsIssued,
			Entitlement:       b.Entitlement,
		},
		Passports:  make([]domain.Passport, 0, len(b.Passports)),
		Dependents: b.Dependents,
	}
	for _, p := range b.Passports {
		d.Passports = append(d.Passports, domain.Passport{
			PassportNumber: p.PassportNumber,
			IssuedCountry:  p.IssuedCountry,
			IssuedDate:     fromDate(p.IssuedDate),
			ExpiryDate:     fromDate(p.ExpiryDate),
		})
	}
	return d
}

func (b tripRequestBody) toForm(folioID string) domain.TripRequestForm {
	return domain.TripRequestForm{
		FolioID:      folioID,
		FullName:     b.FullName,
		TicketType:   b.TicketType,
		Relationship: b.Relationship,
		Remarks:      b.Remarks,
		TicketIssue:  b.TicketIssue,
		Entitlement:  b.Entitlement,
	}
}

func (b approveBody) toDomain() domain.ManageRequest {
	return domain.ManageRequest{
		TicketNo:         b.TicketNo,
		PassportNumber:   b.PassportNumber,
		DepartureAirport: b.DepartureAirport,
		DepartureCity:    b.DepartureCity,
		ArrivalAirport:   b.ArrivalAirport,
		ArrivalCity:      b.ArrivalCity,
		DepartureDate:    fromDate(b.DepartureDate),
		ReturnDate:       fromDate(b.ReturnDate),
	}
}

func detailsToResponse(d domain.ShareholderDetails) shareholderDetailsResponse {
	resp := shareholderDetailsResponse{
		Shareholder: d.Shareholder,
		Passports:   make([]passportBody, 0, len(d.Passports)),
		Dependents:  d.Dependents,
	}
	for _, p := range d.Passports {
		resp.Passports = append(resp.Passports, passportBody{
			ID:             p.ID,
			PassportNumber: p.PassportNumber,
			IssuedCountry:  p.IssuedCountry,
			IssuedDate:     toDate(p.IssuedDate),
			ExpiryDate:     toDate(p.ExpiryDate),
		})
	}
	return resp
}

func tripRequestToResponse(tr domain.TripRequest) tripRequestResponse {
	return tripRequestResponse{
		ID:               tr.ID,
		ShareholderID:    tr.ShareholderID,
		FullName:         tr.FullName,
		TicketType:       tr.TicketType,
		Relationship:     tr.Relationship,
		Remarks:          tr.Remarks,
		TicketIssue:      tr.TicketIssue,
		Entitlement:      tr.Entitlement,
		TicketNo:         tr.TicketNo,
		PassportNumber:   tr.PassportNumber,
		DepartureAirport: tr.DepartureAirport,
		DepartureCity:    tr.DepartureCity,
		ArrivalAirport:   tr.ArrivalAirport,
		ArrivalCity:      tr.ArrivalCity,
		DepartureDate:    toDate(tr.DepartureDate),
		ReturnDate:       toDate(tr.ReturnDate),
		Status:           tr.Status,
		CreatedBy:        tr.CreatedBy,
		UpdatedBy:        tr.UpdatedBy,
		CreatedAt:        tr.CreatedAt,
		UpdatedAt:        tr.UpdatedAt,
	}
}

func bookingToResponse(b domain.BookingHistory) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		Reference:        b.Reference,
		ShareholderID:    b.ShareholderID,
		TripRequestID:    b.TripRequestID,
		TicketNo:         b.TicketNo,
		PassengerName:    b.PassengerName,
		TicketType:       b.TicketType,
		Relationship:     b.Relationship,
		TicketIssue:      b.TicketIssue,
		Entitlement:      b.Entitlement,
		PassportNumber:   b.PassportNumber,
		DepartureAirport: b.DepartureAirport,
		ArrivalAirport:   b.ArrivalAirport,
		DepartureDate:    toDate(b.DepartureDate),
		ReturnDate:       toDate(b.ReturnDate),
		BookingDate:      b.BookingDate,
		Status:           b.Status,
		UpdatedBy:        b.UpdatedBy,
	}
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
