package service_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/repo"
)

// memStore is an in-memory stand-in for the Postgres repos. RunInTx snapshots
// the state and restores it when fn fails, so rollback behaviour can be
// asserted without a database.
type memStore struct {
	mu    sync.Mutex
	state memState

	// failBookings makes CreateBookingHistory fail when set.
	failBookings error
}

type memState struct {
	nextID       int64
	shareholders []domain.Shareholder
	passports    []domain.Passport
	dependents   []domain.Dependent
	trips        []domain.TripRequest
	bookings     []domain.BookingHistory
}

func (s memState) clone() memState {
	return memState{
		nextID:       s.nextID,
		shareholders: slices.Clone(s.shareholders),
		passports:    slices.Clone(s.passports),
		dependents:   slices.Clone(s.dependents),
		trips:        slices.Clone(s.trips),
		bookings:     slices.Clone(s.bookings),
	}
}

var memEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) Repos() repo.Repos {
	return repo.Repos{
		Shareholders: memShareholders{m},
		Passports:    memPassports{m},
		Dependents:   memDependents{m},
		Trips:        memTrips{m},
	}
}

func (m *memStore) RunInTx(_ context.Context, fn func(r repo.Repos) error) error {
	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()

	if err := fn(m.Repos()); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// next returns a fresh id and a creation time that increases with it.
// Callers hold m.mu.
func (m *memStore) next() (int64, time.Time) {
	m.state.nextID++
	return m.state.nextID, memEpoch.Add(time.Duration(m.state.nextID) * time.Second)
}

// ---- shareholders ----------------------------------------------------------

type memShareholders struct{ m *memStore }

func (r memShareholders) withCount(sh domain.Shareholder) domain.Shareholder {
	n := 0
	for _, p := range r.m.state.passports {
		if p.ShareholderID == sh.ID {
			n++
		}
	}
	sh.NoOfPassports = n
	return sh
}

func (r memShareholders) sorted(match func(domain.Shareholder) bool) []domain.Shareholder {
	out := []domain.Shareholder{}
	for _, sh := range r.m.state.shareholders {
		if match(sh) {
			out = append(out, r.withCount(sh))
		}
	}
	slices.SortFunc(out, func(a, b domain.Shareholder) int { return strings.Compare(a.FolioID, b.FolioID) })
	return out
}

func shareholderMatches(term string) func(domain.Shareholder) bool {
	term = strings.ToLower(term)
	return func(sh domain.Shareholder) bool {
		for _, f := range []string{sh.FolioID, sh.FirstName, sh.LastName, sh.FullName} {
			if strings.Contains(strings.ToLower(f), term) {
				return true
			}
		}
		return false
	}
}

func (r memShareholders) GetAll(context.Context) ([]domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.sorted(func(domain.Shareholder) bool { return true }), nil
}

func (r memShareholders) GetByID(_ context.Context, id int64) (domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, sh := range r.m.state.shareholders {
		if sh.ID == id {
			return r.withCount(sh), nil
		}
	}
	return domain.Shareholder{}, domain.ErrNotFound
}

func (r memShareholders) GetByFolioID(_ context.Context, folioID string) (domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, sh := range r.m.state.shareholders {
		if sh.FolioID == folioID {
			return r.withCount(sh), nil
		}
	}
	return domain.Shareholder{}, domain.ErrNotFound
}

func (r memShareholders) Search(_ context.Context, term string) ([]domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.sorted(shareholderMatches(term)), nil
}

func (r memShareholders) ListPaged(_ context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := r.sorted(shareholderMatches(term))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (r memShareholders) Add(_ context.Context, sh domain.Shareholder) (domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.state.shareholders {
		if existing.FolioID == sh.FolioID {
			return domain.Shareholder{}, domain.ErrConflict
		}
	}
	sh.ID, sh.CreatedAt = r.m.next()
	sh.ModifiedAt = sh.CreatedAt
	r.m.state.shareholders = append(r.m.state.shareholders, sh)
	return r.withCount(sh), nil
}

func (r memShareholders) Update(_ context.Context, sh domain.Shareholder) (domain.Shareholder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, existing := range r.m.state.shareholders {
		if existing.FolioID == sh.FolioID {
			sh.ID = existing.ID
			sh.CreatedAt = existing.CreatedAt
			sh.ModifiedAt = existing.ModifiedAt.Add(time.Second)
			r.m.state.shareholders[i] = sh
			return r.withCount(sh), nil
		}
	}
	return domain.Shareholder{}, domain.ErrNotFound
}

func (r memShareholders) Delete(_ context.Context, folioID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	idx := slices.IndexFunc(r.m.state.shareholders, func(sh domain.Shareholder) bool { return sh.FolioID == folioID })
	if idx < 0 {
		return domain.ErrNotFound
	}
	id := r.m.state.shareholders[idx].ID
	r.m.state.shareholders = slices.Delete(r.m.state.shareholders, idx, idx+1)
	r.m.state.passports = slices.DeleteFunc(r.m.state.passports, func(p domain.Passport) bool { return p.ShareholderID == id })
	r.m.state.dependents = slices.DeleteFunc(r.m.state.dependents, func(d domain.Dependent) bool { return d.ShareholderID == id })
	r.m.state.trips = slices.DeleteFunc(r.m.state.trips, func(t domain.TripRequest) bool { return t.ShareholderID == id })
	r.m.state.bookings = slices.DeleteFunc(r.m.state.bookings, func(b domain.BookingHistory) bool { return b.ShareholderID == id })
	return nil
}

func (r memShareholders) Exists(_ context.Context, folioID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return slices.ContainsFunc(r.m.state.shareholders, func(sh domain.Shareholder) bool { return sh.FolioID == folioID }), nil
}

func (r memShareholders) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.state.shareholders)), nil
}

// ---- passports and dependents ----------------------------------------------

type memPassports struct{ m *memStore }

func (r memPassports) Add(_ context.Context, p domain.Passport) (domain.Passport, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID, p.CreatedAt = r.m.next()
	r.m.state.passports = append(r.m.state.passports, p)
	return p, nil
}

func (r memPassports) GetByShareholderID(_ context.Context, shareholderID int64) ([]domain.Passport, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Passport{}
	for _, p := range r.m.state.passports {
		if p.ShareholderID == shareholderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPassports) DeleteByShareholderID(_ context.Context, shareholderID int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	before := len(r.m.state.passports)
	r.m.state.passports = slices.DeleteFunc(r.m.state.passports, func(p domain.Passport) bool { return p.ShareholderID == shareholderID })
	return int64(before - len(r.m.state.passports)), nil
}

func (r memPassports) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	p, _ := r.GetByShareholderID(ctx, shareholderID)
	return int64(len(p)), nil
}

type memDependents struct{ m *memStore }

func (r memDependents) Add(_ context.Context, d domain.Dependent) (domain.Dependent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d.ID, d.CreatedAt = r.m.next()
	r.m.state.dependents = append(r.m.state.dependents, d)
	return d, nil
}

func (r memDependents) GetByShareholderID(_ context.Context, shareholderID int64) ([]domain.Dependent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Dependent{}
	for _, d := range r.m.state.dependents {
		if d.ShareholderID == shareholderID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r memDependents) DeleteByShareholderID(_ context.Context, shareholderID int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	before := len(r.m.state.dependents)
	r.m.state.dependents = slices.DeleteFunc(r.m.state.dependents, func(d domain.Dependent) bool { return d.ShareholderID == shareholderID })
	return int64(before - len(r.m.state.dependents)), nil
}

func (r memDependents) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	d, _ := r.GetByShareholderID(ctx, shareholderID)
	return int64(len(d)), nil
}

// ---- trips -----------------------------------------------------------------

type memTrips struct{ m *memStore }

func (r memTrips) CreateTripRequest(_ context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	tr.ID, tr.CreatedAt = r.m.next()
	tr.UpdatedAt = tr.CreatedAt
	tr.UpdatedBy = tr.CreatedBy
	tr.Status = domain.TripStatusPending
	r.m.state.trips = append(r.m.state.trips, tr)
	return tr, nil
}

func (r memTrips) UpdateTripRequest(_ context.Context, tr domain.TripRequest) (domain.TripRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, existing := range r.m.state.trips {
		if existing.ID == tr.ID {
			existing.ManageRequest = tr.ManageRequest
			existing.Status = tr.Status
			existing.UpdatedBy = tr.UpdatedBy
			existing.UpdatedAt = existing.UpdatedAt.Add(time.Second)
			r.m.state.trips[i] = existing
			return existing, nil
		}
	}
	return domain.TripRequest{}, domain.ErrNotFound
}

func (r memTrips) GetTripRequestByID(_ context.Context, id int64) (domain.TripRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, tr := range r.m.state.trips {
		if tr.ID == id {
			return tr, nil
		}
	}
	return domain.TripRequest{}, domain.ErrNotFound
}

// LockTripRequest is a plain read; memStore has no row locks.
func (r memTrips) LockTripRequest(ctx context.Context, id int64) (domain.TripRequest, error) {
	return r.GetTripRequestByID(ctx, id)
}

func (r memTrips) GetTripRequestsByShareholderID(_ context.Context, shareholderID int64) ([]domain.TripRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.TripRequest{}
	for _, tr := range slices.Backward(r.m.state.trips) {
		if tr.ShareholderID == shareholderID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (r memTrips) CreateBookingHistory(_ context.Context, b domain.BookingHistory) (domain.BookingHistory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failBookings != nil {
		return domain.BookingHistory{}, fmt.Errorf("insert booking: %w", r.m.failBookings)
	}
	b.ID, b.CreatedAt = r.m.next()
	b.UpdatedAt = b.CreatedAt
	r.m.state.bookings = append(r.m.state.bookings, b)
	return b, nil
}

func (r memTrips) GetBookingHistoryByShareholderID(ctx context.Context, shareholderID int64) ([]domain.BookingHistory, error) {
	return r.SearchBookingHistory(ctx, shareholderID, "")
}

func (r memTrips) SearchBookingHistory(_ context.Context, shareholderID int64, term string) ([]domain.BookingHistory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	term = strings.ToLower(term)
	out := []domain.BookingHistory{}
	for _, b := range slices.Backward(r.m.state.bookings) {
		if b.ShareholderID != shareholderID {
			continue
		}
		if term == "" ||
			strings.Contains(strings.ToLower(b.PassengerName), term) ||
			strings.Contains(strings.ToLower(b.TicketNo), term) ||
			strings.Contains(strings.ToLower(b.UpdatedBy), term) {
			out = append(out, b)
		}
	}
	return out, nil
}
