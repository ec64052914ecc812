package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// defaultTxTimeout bounds a transaction when the caller's context has no deadline.
const defaultTxTimeout = 5 * time.Second

// Repos groups the repositories that share one connection or transaction.
type Repos struct {
	Shareholders ShareholderRepo
	Passports    PassportRepo
	Dependents   DependentRepo
	Trips        TripRepo
}

// NewRepos builds every repository on top of the same db handle.
func NewRepos(db db) Repos {
	return Repos{
		Shareholders: NewShareholderRepo(db),
		Passports:    NewPassportRepo(db),
		Dependents:   NewDependentRepo(db),
		Trips:        NewTripRepo(db),
	}
}

// TxRunner runs a unit of work inside a single database transaction.
// If fn returns an error the transaction is rolled back and the error is
// returned unchanged; otherwise it is committed.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx (where Begin
// opens a savepoint, which keeps rollback-isolated integration tests working).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTxRunner struct {
	db      beginner
	timeout time.Duration
}

// NewTxRunner returns a TxRunner that opens transactions on db.
func NewTxRunner(db beginner) TxRunner {
	return &pgTxRunner{db: db, timeout: defaultTxTimeout}
}

func (t *pgTxRunner) RunInTx(ctx context.Context, fn func(r Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.TxRunner.RunInTx: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	return pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}
