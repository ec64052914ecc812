package service_test

import (
	"context"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/repo"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which fails the test and
// points at the unexpected call.

type mockShareholderRepo struct {
	getAll       func(ctx context.Context) ([]domain.Shareholder, error)
	getByID      func(ctx context.Context, id int64) (domain.Shareholder, error)
	getByFolioID func(ctx context.Context, folioID string) (domain.Shareholder, error)
	search       func(ctx context.Context, term string) ([]domain.Shareholder, error)
	listPaged    func(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, int64, error)
	add          func(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error)
	update       func(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error)
	delete       func(ctx context.Context, folioID string) error
	exists       func(ctx context.Context, folioID string) (bool, error)
	count        func(ctx context.Context) (int64, error)
}

func (m *mockShareholderRepo) GetAll(ctx context.Context) ([]domain.Shareholder, error) {
	return m.getAll(ctx)
}
func (m *mockShareholderRepo) GetByID(ctx context.Context, id int64) (domain.Shareholder, error) {
	return m.getByID(ctx, id)
}
func (m *mockShareholderRepo) GetByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error) {
	return m.getByFolioID(ctx, folioID)
}
func (m *mockShareholderRepo) Search(ctx context.Context, term string) ([]domain.Shareholder, error) {
	return m.search(ctx, term)
}
func (m *mockShareholderRepo) ListPaged(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, int64, error) {
	return m.listPaged(ctx, term, p)
}
func (m *mockShareholderRepo) Add(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error) {
	return m.add(ctx, s)
}
func (m *mockShareholderRepo) Update(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error) {
	return m.update(ctx, s)
}
func (m *mockShareholderRepo) Delete(ctx context.Context, folioID string) error {
	return m.delete(ctx, folioID)
}
func (m *mockShareholderRepo) Exists(ctx context.Context, folioID string) (bool, error) {
	return m.exists(ctx, folioID)
}
func (m *mockShareholderRepo) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}

type mockPassportRepo struct {
	add                     func(ctx context.Context, p domain.Passport) (domain.Passport, error)
	getByShareholderID      func(ctx context.Context, shareholderID int64) ([]domain.Passport, error)
	deleteByShareholderID   func(ctx context.Context, shareholderID int64) (int64, error)
	getCountByShareholderID func(ctx context.Context, shareholderID int64) (int64, error)
}

func (m *mockPassportRepo) Add(ctx context.Context, p domain.Passport) (domain.Passport, error) {
	return m.add(ctx, p)
}
func (m *mockPassportRepo) GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Passport, error) {
	return m.getByShareholderID(ctx, shareholderID)
}
func (m *mockPassportRepo) DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	return m.deleteByShareholderID(ctx, shareholderID)
}
func (m *mockPassportRepo) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	return m.getCountByShareholderID(ctx, shareholderID)
}

type mockDependentRepo struct {
	add                     func(ctx context.Context, d domain.Dependent) (domain.Dependent, error)
	getByShareholderID      func(ctx context.Context, shareholderID int64) ([]domain.Dependent, error)
	deleteByShareholderID   func(ctx context.Context, shareholderID int64) (int64, error)
	getCountByShareholderID func(ctx context.Context, shareholderID int64) (int64, error)
}

func (m *mockDependentRepo) Add(ctx context.Context, d domain.Dependent) (domain.Dependent, error) {
	return m.add(ctx, d)
}
func (m *mockDependentRepo) GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Dependent, error) {
	return m.getByShareholderID(ctx, shareholderID)
}
func (m *mockDependentRepo) DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	return m.deleteByShareholderID(ctx, shareholderID)
}
func (m *mockDependentRepo) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	return m.getCountByShareholderID(ctx, shareholderID)
}

type mockTripRepo struct {
	createTripRequest                func(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error)
	updateTripRequest                func(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error)
	getTripRequestByID               func(ctx context.Context, id int64) (domain.TripRequest, error)
	lockTripRequest                  func(ctx context.Context, id int64) (domain.TripRequest, error)
	getTripRequestsByShareholderID   func(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error)
	createBookingHistory             func(ctx context.Context, b domain.BookingHistory) (domain.BookingHistory, error)
	getBookingHistoryByShareholderID func(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error)
	searchBookingHistory             func(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error)
}

func (m *mockTripRepo) CreateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	return m.createTripRequest(ctx, tr)
}
func (m *mockTripRepo) UpdateTripRequest(ctx context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	return m.updateTripRequest(ctx, tr)
}
func (m *mockTripRepo) GetTripRequestByID(ctx context.Context, id int64) (domain.TripRequest, error) {
	return m.getTripRequestByID(ctx, id)
}
func (m *mockTripRepo) LockTripRequest(ctx context.Context, id int64) (domain.TripRequest, error) {
	return m.lockTripRequest(ctx, id)
}
func (m *mockTripRepo) GetTripRequestsByShareholderID(ctx context.Context, shareholderID int64) ([]domain.TripRequest, error) {
	return m.getTripRequestsByShareholderID(ctx, shareholderID)
}
func (m *mockTripRepo) CreateBookingHistory(ctx context.Context, b domain.BookingHistory) (domain.BookingHistory, error) {
	return m.createBookingHistory(ctx, b)
}
func (m *mockTripRepo) GetBookingHistoryByShareholderID(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error) {
	return m.getBookingHistoryByShareholderID(ctx, shareholderID)
}
func (m *mockTripRepo) SearchBookingHistory(ctx context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
	return m.searchBookingHistory(ctx, shareholderID, term)
}

// passThroughTx runs fn against a fixed set of repos and counts calls.
type passThroughTx struct {
	repos repo.Repos
	calls int
}

func (p *passThroughTx) RunInTx(_ context.Context, fn func(r repo.Repos) error) error {
	p.calls++
	return fn(p.repos)
}

// compile-time checks.
var (
	_ repo.ShareholderRepo = (*mockShareholderRepo)(nil)
	_ repo.PassportRepo    = (*mockPassportRepo)(nil)
	_ repo.DependentRepo   = (*mockDependentRepo)(nil)
	_ repo.TripRepo        = (*mockTripRepo)(nil)
	_ repo.TxRunner        = (*passThroughTx)(nil)
)
