package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/client/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// gooseUpContext is a test seam.
var gooseUpContext = goose.UpContext

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// OpenDatabase opens the SQLite file at dsn and brings its schema up to date.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}

	return db, nil
}
