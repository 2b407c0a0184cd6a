package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate brings the schema up to the latest version. Each version runs in its own transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if err := apply(ctx, db, v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration v%d: %w", v+1, err)
		}
	}

	return nil
}

func apply(ctx context.Context, db *sql.DB, version int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, version); err != nil {
		return err
	}

	return tx.Commit()
}

var migrations = [][]string{
	{
		`CREATE TABLE accounts (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id     UUID NOT NULL,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('bank','e_wallet','cash','credit_card','investment')),
			balance     NUMERIC(15,2) NOT NULL DEFAULT 0,
			currency    CHAR(3) NOT NULL,
			description TEXT,
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ
		)`,
		`CREATE INDEX idx_accounts_user ON accounts(user_id)`,
		`CREATE TABLE transactions (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id       UUID NOT NULL,
			type          TEXT NOT NULL CHECK (type IN ('income','expense','transfer')),
			amount        NUMERIC(15,2) NOT NULL CHECK (amount > 0),
			description   TEXT,
			date          DATE NOT NULL,
			account_id    UUID NOT NULL REFERENCES accounts(id),
			to_account_id UUID REFERENCES accounts(id),
			category_id   UUID,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ,
			CHECK ((type = 'transfer') = (to_account_id IS NOT NULL)),
			CHECK (to_account_id IS NULL OR to_account_id <> account_id)
		)`,
		`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date DESC, created_at DESC)`,
		`CREATE INDEX idx_transactions_account ON transactions(account_id, date)`,
		`CREATE INDEX idx_transactions_to_account ON transactions(to_account_id, date)`,
	},
}
