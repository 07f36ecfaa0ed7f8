package migrations

import (
	"context"
	"fmt"
	"strings"

	"bounty-recon/internal/storage/postgres"
)

// RunPostgresMigrations applies the snapshot schema. Every file uses
// IF NOT EXISTS, so re-running against a migrated database is a no-op.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if strings.TrimSpace(m.sql) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
