package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// migration is one named schema step. Statements must be idempotent in
// effect; a migration is applied at most once and recorded by name.
type migration struct {
	name  string
	stmts []string
}

// migrations is the ordered schema history. Append only; never reorder or
// rewrite an entry that has shipped.
var migrations = []migration{
	{
		name: "001_create_staff",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS staff (
				staff_id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				department TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		name: "002_create_attendance",
		stmts: []string{
			// staff_id is a loose reference on purpose: deleting a staff
			// member must never remove or block attendance history, so no
			// foreign key constraint is declared.
			`CREATE TABLE IF NOT EXISTS attendance (
				id BIGSERIAL PRIMARY KEY,
				staff_id TEXT NOT NULL,
				date TEXT NOT NULL,
				time_in TEXT,
				time_out TEXT,
				timestamp_in TIMESTAMP,
				timestamp_out TIMESTAMP,
				UNIQUE (staff_id, date)
			)`,
		},
	},
	{
		name: "003_index_attendance_timestamp_in",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_attendance_timestamp_in
				ON attendance (timestamp_in DESC)`,
		},
	},
}

// Migrate applies every pending migration in order, each inside its own
// transaction, and records it in schema_migrations. Safe to run on every
// startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(ctx, db, m.name)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.name, err)
		}
		if applied {
			continue
		}

		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		log.Info().Str("migration", m.name).Msg("Applied schema migration")
	}
	return nil
}

func migrationApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE name = $1`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
