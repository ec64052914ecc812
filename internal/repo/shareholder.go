package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// ShareholderRepo defines the persistence operations for Shareholders.
// Rows are addressed by the folio id business key for writes; reads also
// accept the surrogate id. Every read returns the denormalised passport count.
type ShareholderRepo interface {
	// GetAll returns every shareholder ordered by folio id.
	GetAll(ctx context.Context) ([]domain.Shareholder, error)

	// GetByID retrieves a shareholder by surrogate id.
	// Returns domain.ErrNotFound if no row matches.
	GetByID(ctx context.Context, id int64) (domain.Shareholder, error)

	// GetByFolioID retrieves a shareholder by folio id.
	// Returns domain.ErrNotFound if no row matches.
	GetByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error)

	// Search returns shareholders whose folio id, first, last, or full name
	// contains term, case-insensitively, ordered by folio id.
	Search(ctx context.Context, term string) ([]domain.Shareholder, error)

	// ListPaged returns one page of shareholders matching term and the total
	// number of matches. An empty term matches every shareholder.
	ListPaged(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, int64, error)

	// Add inserts a shareholder and returns the stored row.
	// Returns domain.ErrConflict if the folio id is already taken.
	Add(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error)

	// Update overwrites every mutable field of the shareholder identified by
	// s.FolioID. The folio id itself is never changed.
	// Returns domain.ErrNotFound if no row matches.
	Update(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error)

	// Delete removes a shareholder by folio id; owned rows cascade.
	// Returns domain.ErrNotFound if no row matches.
	Delete(ctx context.Context, folioID string) error

	// Exists reports whether a shareholder with folioID is stored.
	Exists(ctx context.Context, folioID string) (bool, error)

	// Count returns the number of stored shareholders.
	Count(ctx context.Context) (int64, error)
}

// pgShareholderRepo is the Postgres implementation of ShareholderRepo.
type pgShareholderRepo struct {
	db db
}

// NewShareholderRepo constructs a ShareholderRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewShareholderRepo(db db) ShareholderRepo {
	return &pgShareholderRepo{db: db}
}

// shareholderSelect is shared by every read. The passport count is computed
// per row rather than stored.
const shareholderSelect = `
	SELECT s.id, s.folio_id, s.first_name, s.last_name, s.full_name, s.country,
	       s.address1, s.address2, s.city, s.company_individual,
	       s.no_of_shares, s.no_of_tickets_issued, s.entitlement,
	       (SELECT COUNT(*) FROM passports p WHERE p.shareholder_id = s.id),
	       s.created_at, s.modified_at
	FROM shareholders s`

// shareholderMatch filters on term; an empty @pattern of '%%' matches everything.
const shareholderMatch = `
	WHERE s.folio_id   ILIKE @pattern
	   OR s.first_name ILIKE @pattern
	   OR s.last_name  ILIKE @pattern
	   OR s.full_name  ILIKE @pattern`

func (r *pgShareholderRepo) GetAll(ctx context.Context) ([]domain.Shareholder, error) {
	rows, err := r.db.Query(ctx, shareholderSelect+` ORDER BY s.folio_id`)
	if err != nil {
		return nil, fmt.Errorf("repo.ShareholderRepo.GetAll: %w", err)
	}
	result, err := collectShareholders(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ShareholderRepo.GetAll: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) GetByID(ctx context.Context, id int64) (domain.Shareholder, error) {
	row := r.db.QueryRow(ctx, shareholderSelect+` WHERE s.id = @id`, pgx.NamedArgs{"id": id})
	result, err := scanShareholder(row)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("repo.ShareholderRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) GetByFolioID(ctx context.Context, folioID string) (domain.Shareholder, error) {
	row := r.db.QueryRow(ctx, shareholderSelect+` WHERE s.folio_id = @folio_id`,
		pgx.NamedArgs{"folio_id": folioID})
	result, err := scanShareholder(row)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("repo.ShareholderRepo.GetByFolioID: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) Search(ctx context.Context, term string) ([]domain.Shareholder, error) {
	q := shareholderSelect + shareholderMatch + ` ORDER BY s.folio_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"pattern": containsPattern(term)})
	if err != nil {
		return nil, fmt.Errorf("repo.ShareholderRepo.Search: %w", err)
	}
	result, err := collectShareholders(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ShareholderRepo.Search: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) ListPaged(ctx context.Context, term string, p domain.PaginationParams) ([]domain.Shareholder, int64, error) {
	args := pgx.NamedArgs{
		"pattern": containsPattern(term),
		"limit":   p.Limit,
		"offset":  p.Offset(),
	}

	var total int64
	countQ := `SELECT COUNT(*) FROM shareholders s` + shareholderMatch
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ShareholderRepo.ListPaged: count: %w", err)
	}

	q := shareholderSelect + shareholderMatch + `
		ORDER BY s.folio_id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ShareholderRepo.ListPaged: %w", err)
	}
	result, err := collectShareholders(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ShareholderRepo.ListPaged: %w", err)
	}
	return result, total, nil
}

// Add inserts a new shareholder. A freshly inserted row owns no passports,
// so the count is returned as a literal zero.
func (r *pgShareholderRepo) Add(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error) {
	const q = `
		INSERT INTO shareholders (folio_id, first_name, last_name, full_name, country,
		                          address1, address2, city, company_individual,
		                          no_of_shares, no_of_tickets_issued, entitlement)
		VALUES (@folio_id, @first_name, @last_name, @full_name, @country,
		        @address1, @address2, @city, @company_individual,
		        @no_of_shares, @no_of_tickets_issued, @entitlement)
		RETURNING id, folio_id, first_name, last_name, full_name, country,
		          address1, address2, city, company_individual,
		          no_of_shares, no_of_tickets_issued, entitlement, 0,
		          created_at, modified_at`

	row := r.db.QueryRow(ctx, q, shareholderArgs(s))
	result, err := scanShareholder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Shareholder{}, fmt.Errorf("repo.ShareholderRepo.Add: folio id %q: %w", s.FolioID, domain.ErrConflict)
		}
		return domain.Shareholder{}, fmt.Errorf("repo.ShareholderRepo.Add: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) Update(ctx context.Context, s domain.Shareholder) (domain.Shareholder, error) {
	const q = `
		WITH u AS (
			UPDATE shareholders
			SET first_name           = @first_name,
			    last_name            = @last_name,
			    full_name            = @full_name,
			    country              = @country,
			    address1             = @address1,
			    address2             = @address2,
			    city                 = @city,
			    company_individual   = @company_individual,
			    no_of_shares         = @no_of_shares,
			    no_of_tickets_issued = @no_of_tickets_issued,
			    entitlement          = @entitlement,
			    modified_at          = now()
			WHERE folio_id = @folio_id
			RETURNING *
		)
		SELECT u.id, u.folio_id, u.first_name, u.last_name, u.full_name, u.country,
		       u.address1, u.address2, u.city, u.company_individual,
		       u.no_of_shares, u.no_of_tickets_issued, u.entitlement,
		       (SELECT COUNT(*) FROM passports p WHERE p.shareholder_id = u.id),
		       u.created_at, u.modified_at
		FROM u`

	row := r.db.QueryRow(ctx, q, shareholderArgs(s))
	result, err := scanShareholder(row)
	if err != nil {
		return domain.Shareholder{}, fmt.Errorf("repo.ShareholderRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgShareholderRepo) Delete(ctx context.Context, folioID string) error {
	const q = `DELETE FROM shareholders WHERE folio_id = @folio_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"folio_id": folioID})
	if err != nil {
		return fmt.Errorf("repo.ShareholderRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ShareholderRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgShareholderRepo) Exists(ctx context.Context, folioID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM shareholders WHERE folio_id = @folio_id)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"folio_id": folioID}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.ShareholderRepo.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgShareholderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shareholders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.ShareholderRepo.Count: %w", err)
	}
	return n, nil
}

func shareholderArgs(s domain.Shareholder) pgx.NamedArgs {
	return pgx.NamedArgs{
		"folio_id":             strings.TrimSpace(s.FolioID),
		"first_name":           s.FirstName,
		"last_name":            s.LastName,
		"full_name":            s.FullName,
		"country":              s.Country,
		"address1":             s.Address1,
		"address2":             s.Address2,
		"city":                 s.City,
		"company_individual":   s.CompanyIndividual,
		"no_of_shares":         s.NoOfShares,
		"no_of_tickets_issued": s.NoOfTicketsIssued,
		"entitlement":          s.Entitlement,
	}
}

// scanShareholder maps a single database row into a domain.Shareholder.
func scanShareholder(s scanner) (domain.Shareholder, error) {
	var sh domain.Shareholder
	err := s.Scan(
		&sh.ID, &sh.FolioID, &sh.FirstName, &sh.LastName, &sh.FullName, &sh.Country,
		&sh.Address1, &sh.Address2, &sh.City, &sh.CompanyIndividual,
		&sh.NoOfShares, &sh.NoOfTicketsIssued, &sh.Entitlement, &sh.NoOfPassports,
		&sh.CreatedAt, &sh.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Shareholder{}, domain.ErrNotFound
		}
		return domain.Shareholder{}, err
	}
	return sh, nil
}

// collectShareholders drains rows into a non-nil slice and closes them.
func collectShareholders(rows pgx.Rows) ([]domain.Shareholder, error) {
	defer rows.Close()

	result := []domain.Shareholder{}
	for rows.Next() {
		sh, err := scanShareholder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result = append(result, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return result, nil
}
