package state

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/primesecret/authgate/internal/client/migrations"

	_ "modernc.org/sqlite"
)

// InitDatabase opens (or creates) the client state database at dsn and runs
// the embedded schema migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
