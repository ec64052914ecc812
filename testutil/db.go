// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when TEST_DATABASE_URL is not
// set, so unit tests run without a database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
)

// DSNEnv names the variable holding the integration test database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a *pgxpool.Pool on the test database. The pool is closed when
// the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction on a fresh test pool and rolls it back when the
// test finishes. Everything a test writes through the returned pgx.Tx is
// discarded, so tests can share one database without cleanup SQL.
//
// pgx.Tx also satisfies Begin (as a savepoint), so code that opens its own
// transactions can run inside it.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := NewPool(t)

	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a *sql.DB on the test database through the pgx
// database/sql driver, for goose. Closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for dsn and panics on any error.
// Use this in TestMain where no *testing.T is available; the caller closes it.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
