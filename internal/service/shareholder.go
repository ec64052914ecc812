// Package service contains the business logic for the Aeroholder backend.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShewonGun/Aeroholder/internal/domain"
	"github.com/ShewonGun/Aeroholder/internal/metrics"
	"github.com/ShewonGun/Aeroholder/internal/repo"
)

// ShareholderService implements the shareholder aggregate: the shareholder
// record plus its owned passports and dependents.
type ShareholderService struct {
	shareholders repo.ShareholderRepo
	passports    repo.PassportRepo
	dependents   repo.DependentRepo
	tx           repo.TxRunner
	metrics      *metrics.Metrics
}

// NewShareholderService constructs a ShareholderService. Reads go through r;
// aggregate writes go through tx so the shareholder and its children commit
// or roll back together. m may be nil.
func NewShareholderService(r repo.Repos, tx repo.TxRunner, m *metrics.Metrics) *ShareholderService {
	return &ShareholderService{
		shareholders: r.Shareholders,
		passports:    r.Passports,
		dependents:   r.Dependents,
		tx:           tx,
		metrics:      m,
	}
}

// ValidateFolioID reports whether folioID has the FLN<digits> shape.
func (s *ShareholderService) ValidateFolioID(folioID string) bool {
	return domain.ValidFolioID(folioID)
}

// GetAllShareholders returns every shareholder ordered by folio id.
// Always returns a non-nil slice.
func (s *ShareholderService) GetAllShareholders(ctx context.Context) ([]domain.Shareholder, error) {
	result, err := s.shareholders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ShareholderService.GetAllShareholders: %w", err)
	}
	if result == nil {
		return []domain.Shareholder{}, nil
	}
	return result, nil
}

// GetShareholderByID returns domain.ErrValidation for a non-positive id and
// domain.ErrNotFound when no shareholder has that id.
func (s *ShareholderService) GetShareholderByID(ctx context.Context, id int64) (domain.Shareholder, error) {
	if id <= 0 {
		return domain.Shareholder{}, fmt.Errorf("service.ShareholderService.GetShareholderByID: %w: shareholder id must be positive", domain.ErrValidation)
	}
	result, err := s.shareholders.GetByID(ctx, id)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("service.ShareholderService.GetShareholderByID: %w", err)
	}
	return result, nil
}

// GetShareholderByFolioID returns domain.ErrValidation for a blank folio id
// and domain.ErrNotFound when no shareholder has it.
func (s *ShareholderService) GetShareholderByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error) {
	folioID = strings.TrimSpace(folioID)
	if folioID == "" {
		return domain.Shareholder{}, fmt.Errorf("service.ShareholderService.GetShareholderByFolioID: %w: folio id is required", domain.ErrValidation)
	}
	result, err := s.shareholders.GetByFolioID(ctx, folioID)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("service.ShareholderService.GetShareholderByFolioID: %w", err)
	}
	return result, nil
}

// GetShareholderDetails returns a shareholder with its passports and
// dependents. The two child collections are loaded concurrently.
func (s *ShareholderService) GetShareholderDetails(ctx context.Context, folioID string) (domain.ShareholderDetails, error) {
	sh, err := s.GetShareholderByFolioID(ctx, folioID)
	if err != nil {
		return domain.ShareholderDetails{}, err
	}

	details := domain.ShareholderDetails{Shareholder: sh}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.passports.GetByShareholderID(gctx, sh.ID)
		details.Passports = p
		return err
	})
	g.Go(func() error {
		d, err := s.dependents.GetByShareholderID(gctx, sh.ID)
		details.Dependents = d
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ShareholderDetails{}, fmt.Errorf("service.ShareholderService.GetShareholderDetails: %w", err)
	}

	if details.Passports == nil {
		details.Passports = []domain.Passport{}
	}
	if details.Dependents == nil {
		details.Dependents = []domain.Dependent{}
	}
	return details, nil
}

// SearchShareholders matches term against folio id and names.
// A blank term returns every shareholder.
func (s *ShareholderService) SearchShareholders(ctx context.Context, term string) ([]domain.Shareholder, error) {
	if strings.TrimSpace(term) == "" {
		return s.GetAllShareholders(ctx)
	}
	result, err := s.shareholders.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("service.ShareholderService.SearchShareholders: %w", err)
	}
	if result == nil {
		return []domain.Shareholder{}, nil
	}
	return result, nil
}

// ListShareholders returns one page of shareholders matching term (blank
// matches all) together with its position in the full result set.
func (s *ShareholderService) ListShareholders(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, domain.Pagination, error) {
	result, total, err := s.shareholders.ListPaged(ctx, strings.TrimSpace(term), p)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("service.ShareholderService.ListShareholders: %w", err)
	}
	if result == nil {
		result = []domain.Shareholder{}
	}
	return result, p.Describe(total), nil
}

// GetTotalCount returns the number of stored shareholders.
func (s *ShareholderService) GetTotalCount(ctx context.Context) (int64, error) {
	n, err := s.shareholders.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.ShareholderService.GetTotalCount: %w", err)
	}
	return n, nil
}

// CreateShareholder validates and inserts a shareholder without children.
// Returns domain.ErrConflict if the folio id is already taken; nothing is
// written in that case.
func (s *ShareholderService) CreateShareholder(ctx context.Context, actor domain.Actor, sh domain.Shareholder) (domain.Shareholder, error) {
	const op = "service.ShareholderService.CreateShareholder"
	if err := authorize(actor); err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}
	sh = normalizeShareholder(sh)
	if err := validateShareholder(sh); err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}

	result, err := createShareholder(ctx, s.shareholders, sh)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncShareholderWrite("create")
	return result, nil
}

// UpdateShareholder validates and overwrites the mutable fields of the
// shareholder identified by sh.FolioID.
// Returns domain.ErrNotFound if no such shareholder exists.
func (s *ShareholderService) UpdateShareholder(ctx context.Context, actor domain.Actor, sh domain.Shareholder) (domain.Shareholder, error) {
	const op = "service.ShareholderService.UpdateShareholder"
	if err := authorize(actor); err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}
	sh = normalizeShareholder(sh)
	if err := validateShareholder(sh); err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.shareholders.Exists(ctx, sh.FolioID)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return domain.Shareholder{}, fmt.Errorf("%s: shareholder %q: %w", op, sh.FolioID, domain.ErrNotFound)
	}

	result, err := s.shareholders.Update(ctx, sh)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncShareholderWrite("update")
	return result, nil
}

// DeleteShareholder removes a shareholder and, by cascade, everything it owns.
// Returns domain.ErrValidation for a blank folio id and domain.ErrNotFound if
// the shareholder does not exist; nothing is written in either case.
func (s *ShareholderService) DeleteShareholder(ctx context.Context, actor domain.Actor, folioID string) error {
	const op = "service.ShareholderService.DeleteShareholder"
	if err := authorize(actor); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	folioID = strings.TrimSpace(folioID)
	if folioID == "" {
		return fmt.Errorf("%s: %w: folio id is required", op, domain.ErrValidation)
	}

	exists, err := s.shareholders.Exists(ctx, folioID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: shareholder %q: %w", op, folioID, domain.ErrNotFound)
	}

	if err := s.shareholders.Delete(ctx, folioID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncShareholderWrite("delete")
	return nil
}

// CreateShareholderWithDetails inserts a shareholder together with its
// passports and dependents in one transaction. Passports without a number and
// dependents without a name are skipped and counted in the result.
func (s *ShareholderService) CreateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error) {
	const op = "service.ShareholderService.CreateShareholderWithDetails"
	if err := authorize(actor); err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}
	sh := normalizeShareholder(d.Shareholder)
	if err := validateShareholder(sh); err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}

	defer s.metrics.ObserveAggregate("create_with_details", time.Now())

	var result domain.SaveResult
	err := s.tx.RunInTx(ctx, func(r repo.Repos) error {
		created, err := createShareholder(ctx, r.Shareholders, sh)
		if err != nil {
			return err
		}
		result, err = saveChildren(ctx, r, created, d.Passports, d.Dependents)
		return err
	})
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.recordSave("create", result)
	return result, nil
}

// UpdateShareholderWithDetails overwrites a shareholder and fully replaces
// its passports and dependents in one transaction: every existing child is
// deleted before the supplied sets are inserted. The stored children after a
// successful call are exactly the valid entries of d, never a merge.
// Returns domain.ErrNotFound if the shareholder does not exist.
func (s *ShareholderService) UpdateShareholderWithDetails(ctx context.Context, actor domain.Actor, d domain.ShareholderDetails) (domain.SaveResult, error) {
	const op = "service.ShareholderService.UpdateShareholderWithDetails"
	if err := authorize(actor); err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}
	sh := normalizeShareholder(d.Shareholder)
	if err := validateShareholder(sh); err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}

	defer s.metrics.ObserveAggregate("update_with_details", time.Now())

	var result domain.SaveResult
	err := s.tx.RunInTx(ctx, func(r repo.Repos) error {
		updated, err := r.Shareholders.Update(ctx, sh)
		if err != nil {
			return err
		}
		if _, err := r.Passports.DeleteByShareholderID(ctx, updated.ID); err != nil {
			return err
		}
		if _, err := r.Dependents.DeleteByShareholderID(ctx, updated.ID); err != nil {
			return err
		}
		result, err = saveChildren(ctx, r, updated, d.Passports, d.Dependents)
		return err
	})
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.recordSave("update", result)
	return result, nil
}

func (s *ShareholderService) recordSave(op string, r domain.SaveResult) {
	s.metrics.IncShareholderWrite(op)
	s.metrics.AddChildren(metrics.ChildPassport, r.PassportsSaved, r.PassportsSkipped)
	s.metrics.AddChildren(metrics.ChildDependent, r.DependentsSaved, r.DependentsSkipped)
}

// createShareholder checks the folio id is free and inserts sh. The store's
// unique constraint still backs the check when two creates race.
func createShareholder(ctx context.Context, shareholders repo.ShareholderRepo, sh domain.Shareholder) (domain.Shareholder, error) {
	exists, err := shareholders.Exists(ctx, sh.FolioID)
	if err != nil {
		return domain.Shareholder{}, err
	}
	if exists {
		return domain.Shareholder{}, fmt.Errorf("shareholder %q already exists: %w", sh.FolioID, domain.ErrConflict)
	}
	return shareholders.Add(ctx, sh)
}

// saveChildren inserts every passport and dependent that carries enough data
// and counts the ones it skipped. The returned result's NoOfPassports is
// refreshed to the number just stored.
func saveChildren(ctx context.Context, r repo.Repos, sh domain.Shareholder, passports []domain.Passport, dependents []domain.Dependent) (domain.SaveResult, error) {
	result := domain.SaveResult{Shareholder: sh}

	for _, p := range passports {
		if !p.HasData() {
			result.PassportsSkipped++
			continue
		}
		p.ShareholderID = sh.ID
		p.PassportNumber = strings.TrimSpace(p.PassportNumber)
		if _, err := r.Passports.Add(ctx, p); err != nil {
			return domain.SaveResult{}, err
		}
		result.PassportsSaved++
	}

	for _, d := range dependents {
		if !d.HasData() {
			result.DependentsSkipped++
			continue
		}
		d.ShareholderID = sh.ID
		d.FullName = strings.TrimSpace(d.FullName)
		if _, err := r.Dependents.Add(ctx, d); err != nil {
			return domain.SaveResult{}, err
		}
		result.DependentsSaved++
	}

	result.Shareholder.NoOfPassports = result.PassportsSaved
	return result, nil
}

// normalizeShareholder trims the fields that participate in validation.
func normalizeShareholder(sh domain.Shareholder) domain.Shareholder {
	sh.FolioID = strings.TrimSpace(sh.FolioID)
	sh.FirstName = strings.TrimSpace(sh.FirstName)
	sh.LastName = strings.TrimSpace(sh.LastName)
	sh.FullName = strings.TrimSpace(sh.FullName)
	return sh
}

// validateShareholder enforces the rules shared by create and update.
//   - First, last, and full name and folio id must be non-blank.
//   - Folio id must be "FLN" followed by digits.
//   - Share, ticket, and entitlement counts must not be negative.
func validateShareholder(sh domain.Shareholder) error {
	switch {
	case sh.FirstName == "":
		return fmt.Errorf("%w: first name is required", domain.ErrValidation)
	case sh.LastName == "":
		return fmt.Errorf("%w: last name is required", domain.ErrValidation)
	case sh.FullName == "":
		return fmt.Errorf("%w: full name is required", domain.ErrValidation)
	case sh.FolioID == "":
		return fmt.Errorf("%w: folio id is required", domain.ErrValidation)
	case !domain.ValidFolioID(sh.FolioID):
		return fmt.Errorf("%w: invalid folio id format, must start with %q followed by numbers", domain.ErrValidation, domain.FolioPrefix)
	case sh.NoOfShares < 0:
		return fmt.Errorf("%w: number of shares cannot be negative", domain.ErrValidation)
	case sh.NoOfTicketsIssued < 0:
		return fmt.Errorf("%w: number of tickets issued cannot be negative", domain.ErrValidation)
	case sh.Entitlement < 0:
		return fmt.Errorf("%w: entitlement cannot be negative", domain.ErrValidation)
	}
	return nil
}

// authorize rejects actors the session layer did not authorize.
func authorize(actor domain.Actor) error {
	if !actor.Authorized {
		return domain.ErrUnauthorized
	}
	return nil
}
