package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// PassportRepo defines the persistence operations for Passports.
// Every operation is scoped by the owning shareholder's surrogate id.
type PassportRepo interface {
	// Add inserts a passport and returns the stored row.
	Add(ctx context.Context, p domain.Passport) (domain.Passport, error)

	// GetByShareholderID returns all passports owned by a shareholder in
	// insertion order.
	GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Passport, error)

	// DeleteByShareholderID removes every passport owned by a shareholder and
	// returns how many rows went. Removing zero rows is not an error.
	DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error)

	// GetCountByShareholderID returns how many passports a shareholder owns.
	GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error)
}

// pgPassportRepo is the Postgres implementation of PassportRepo.
type pgPassportRepo struct {
	db db
}

// NewPassportRepo constructs a PassportRepo backed by the provided db connection.
func NewPassportRepo(db db) PassportRepo {
	return &pgPassportRepo{db: db}
}

func (r *pgPassportRepo) Add(ctx context.Context, p domain.Passport) (domain.Passport, error) {
	const q = `
		INSERT INTO passports (shareholder_id, passport_number, issued_country, issued_date, expiry_date)
		VALUES (@shareholder_id, @passport_number, @issued_country, @issued_date, @expiry_date)
		RETURNING id, shareholder_id, passport_number, issued_country, issued_date, expiry_date, created_at`

	args := pgx.NamedArgs{
		"shareholder_id":  p.ShareholderID,
		"passport_number": p.PassportNumber,
		"issued_country":  p.IssuedCountry,
		"issued_date":     p.IssuedDate, // nil becomes NULL
		"expiry_date":     p.ExpiryDate,
	}

	result, err := scanPassport(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Passport{}, fmt.Errorf("repo.PassportRepo.Add: %w", err)
	}
	return result, nil
}

func (r *pgPassportRepo) GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Passport, error) {
	const q = `
		SELECT id, shareholder_id, passport_number, issued_country, issued_date, expiry_date, created_at
		FROM passports
		WHERE shareholder_id = @shareholder_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return nil, fmt.Errorf("repo.PassportRepo.GetByShareholderID: %w", err)
	}
	defer rows.Close()

	passports := []domain.Passport{}
	for rows.Next() {
		p, err := scanPassport(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PassportRepo.GetByShareholderID: scan: %w", err)
		}
		passports = append(passports, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PassportRepo.GetByShareholderID: rows: %w", err)
	}
	return passports, nil
}

func (r *pgPassportRepo) DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	const q = `DELETE FROM passports WHERE shareholder_id = @shareholder_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return 0, fmt.Errorf("repo.PassportRepo.DeleteByShareholderID: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgPassportRepo) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM passports WHERE shareholder_id = @shareholder_id`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PassportRepo.GetCountByShareholderID: %w", err)
	}
	return n, nil
}

// scanPassport maps a single database row into a domain.Passport,
// converting the nullable DATE columns.
func scanPassport(s scanner) (domain.Passport, error) {
	var (
		p                  domain.Passport
		issued, expiryDate pgtype.Date
	)
	err := s.Scan(&p.ID, &p.ShareholderID, &p.PassportNumber, &p.IssuedCountry, &issued, &expiryDate, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Passport{}, domain.ErrNotFound
		}
		return domain.Passport{}, err
	}
	p.IssuedDate = datePtr(issued)
	p.ExpiryDate = datePtr(expiryDate)
	return p, nil
}
