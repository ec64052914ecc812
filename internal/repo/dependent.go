package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// DependentRepo defines the persistence operations for Dependents.
// It mirrors PassportRepo: every operation is scoped by the owning shareholder.
type DependentRepo interface {
	Add(ctx context.Context, d domain.Dependent) (domain.Dependent, error)
	GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Dependent, error)
	// DeleteByShareholderID returns the number of rows removed; zero is not an error.
	DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error)
	GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error)
}

type pgDependentRepo struct {
	db db
}

// NewDependentRepo constructs a DependentRepo backed by the provided db connection.
func NewDependentRepo(db db) DependentRepo {
	return &pgDependentRepo{db: db}
}

func (r *pgDependentRepo) Add(ctx context.Context, d domain.Dependent) (domain.Dependent, error) {
	const q = `
		INSERT INTO dependents (shareholder_id, full_name, relationship, passport_number)
		VALUES (@shareholder_id, @full_name, @relationship, @passport_number)
		RETURNING id, shareholder_id, full_name, relationship, passport_number, created_at`

	args := pgx.NamedArgs{
		"shareholder_id":  d.ShareholderID,
		"full_name":       d.FullName,
		"relationship":    d.Relationship,
		"passport_number": d.PassportNumber,
	}

	result, err := scanDependent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Dependent{}, fmt.Errorf("repo.DependentRepo.Add: %w", err)
	}
	return result, nil
}

func (r *pgDependentRepo) GetByShareholderID(ctx context.Context, shareholderID int64) ([]domain.Dependent, error) {
	const q = `
		SELECT id, shareholder_id, full_name, relationship, passport_number, created_at
		FROM dependents
		WHERE shareholder_id = @shareholder_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return nil, fmt.Errorf("repo.DependentRepo.GetByShareholderID: %w", err)
	}
	defer rows.Close()

	dependents := []domain.Dependent{}
	for rows.Next() {
		d, err := scanDependent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DependentRepo.GetByShareholderID: scan: %w", err)
		}
		dependents = append(dependents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DependentRepo.GetByShareholderID: rows: %w", err)
	}
	return dependents, nil
}

func (r *pgDependentRepo) DeleteByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM dependents WHERE shareholder_id = @shareholder_id`,
		pgx.NamedArgs{"shareholder_id": shareholderID})
	if err != nil {
		return 0, fmt.Errorf("repo.DependentRepo.DeleteByShareholderID: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgDependentRepo) GetCountByShareholderID(ctx context.Context, shareholderID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM dependents WHERE shareholder_id = @shareholder_id`,
		pgx.NamedArgs{"shareholder_id": shareholderID}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.DependentRepo.GetCountByShareholderID: %w", err)
	}
	return n, nil
}

func scanDependent(s scanner) (domain.Dependent, error) {
	var d domain.Dependent
	err := s.Scan(&d.ID, &d.ShareholderID, &d.FullName, &d.Relationship, &d.PassportNumber, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Dependent{}, domain.ErrNotFound
		}
		return domain.Dependent{}, err
	}
	return d, nil
}
