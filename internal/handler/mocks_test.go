package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/handler"
	"github.com/ShewonGun/Aeroholder/internal/middleware"
)

// mockShareholders is a hand-written handler.ShareholderServicer; set only
// the function fields a test needs.
type mockShareholders struct {
	getByFolioID func(ctx context.Context, folioID string) (domain.Shareholder, error)
	getDetails   func(ctx context.Context, folioID string) (domain.ShareholderDetails, error)
	list         func(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, domain.Pagination, error)
	create       func(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error)
	update       func(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error)
	delete       func(ctx context.Context, actor domain.Actor, folioID string) error
}

func (m *mockShareholders) ValidateFolioID(folioID string) bool {
	return domain.ValidFolioID(folioID)
}
func (m *mockShareholders) GetShareholderByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error) {
	return m.getByFolioID(ctx, folioID)
}
func (m *mockShareholders) GetShareholderDetails(ctx context.Context, folioID string) (domain.ShareholderDetails, error) {
	return m.getDetails(ctx, folioID)
}
func (m *mockShareholders) ListShareholders(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, domain.Pagination, error) {
	return m.list(ctx, term, p)
}
func (m *mockShareholders) CreateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error) {
	return m.create(ctx, actor, d)
}
func (m *mockShareholders) UpdateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error) {
	return m.update(ctx, actor, d)
}
func (m *mockShareholders) DeleteShareholder(ctx context.Context, actor domain.Actor, folioID string) error {
	return m.delete(ctx, actor, folioID)
}

type mockTrips struct {
	submit   func(ctx context.Context, actor domain.Actor, form domain.TripRequestForm) (domain.TripRequest, error)
	getByID  func(ctx context.Context, id int64) (domain.TripRequest, error)
	list     func(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error)
	approve  func(ctx context.Context, actor domain.Actor, id int64, m domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error)
	bookings func(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error)
}

func (m *mockTrips) SubmitTripRequest(ctx context.Context, actor domain.Actor, form domain.TripRequestForm) (domain.TripRequest, error) {
	return m.submit(ctx, actor, form)
}
func (m *mockTrips) GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error) {
	return m.getByID(ctx, id)
}
func (m *mockTrips) GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error) {
	return m.list(ctx, shareholderID)
}
func (m *mockTrips) ApproveTripRequest(ctx context.Context, actor domain.Actor, id int64, mr domain.ManageRequest) (domain.TripRequest, domain.BookingHistory, error) {
	return m.approve(ctx, actor, id, mr)
}
func (m *mockTrips) SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
	return m.bookings(ctx, shareholderID, term)
}

var (
	_ handler.ShareholderServicer = (*mockShareholders)(nil)
	_ handler.TripServicer        = (*mockTrips)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newRouter wires a Server over the mocks the same way main does.
func newRouter(sh handler.ShareholderServicer, trips handler.TripServicer) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(sh, trips, slog.New(slog.NewJSONHandler(io.Discard, nil))).Routes(r)
	return r
}

// do sends a request through h. A non-empty actor sets the actor header.
func do(t *testing.T, h http.Handler, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(middleware.ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors handler.Notice with Data left raw for per-test decoding.
type envelope struct {
	Success    bool               `json:"success"`
	Severity   string             `json:"severity"`
	Message    string             `json:"message"`
	Code       string             `json:"code"`
	Data       json.RawMessage    `json:"data"`
	Counts     *handler.Counts    `json:"counts"`
	Pagination *domain.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}
