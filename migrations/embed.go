// Package migrations embeds the SQL migration files so they can be applied
// by the goose provider at server start and in integration tests.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration in FS to db.
// db must be a database/sql handle for a Postgres database.
func Up(ctx context.Context, db *sql.DB) ([]*goose.MigrationResult, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: %w", err)
	}
	return results, nil
}
