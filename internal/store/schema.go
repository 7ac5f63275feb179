package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the users and vendors tables when they do not exist yet.
// Every statement is idempotent, so it is safe to run on each boot.
func ApplySchema(ctx context.Context, db *pgxpool.Pool) error {
	// Multiple statements require the simple protocol.
	if _, err := db.Exec(ctx, schemaSQL, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
