package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
)

// pgForeignKeyViolation is the SQLSTATE raised when a referenced row is deleted.
const pgForeignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns lists the account columns in the order ScanAccount expects, qualified by alias a.
const Columns = `
	a.id, a.user_id, a.name, a.type, a.balance, a.currency, a.description,
	a.is_active, a.created_at, a.updated_at
`

// ScanAccount reads an account row selected with Columns.
func ScanAccount(s Scanner) (*account.Account, error) {
	var a account.Account

	var typeStr string

	var desc sql.NullString

	if err := s.Scan(
		&a.ID, &a.OwnerID, &a.Name, &typeStr, &a.Balance, &a.Currency, &desc,
		&a.Active, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Type = account.Type(typeStr)
	a.Description = desc.String

	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (user_id, name, type, balance, currency, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, balance, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.OwnerID,
		a.Name,
		a.Type,
		a.Balance,
		a.Currency,
		a.Description,
		a.Active,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + Columns + ` FROM accounts a WHERE a.id = $1`

	a, err := ScanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + Columns + ` FROM accounts a WHERE a.user_id = $1 ORDER BY a.name ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := ScanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, type = $2, currency = $3, description = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Name,
		a.Type,
		a.Currency,
		a.Description,
		a.Active,
		a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.ErrNotFound
		}

		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

// DeleteAccount checks for referencing transactions and deletes inside one database transaction.
// The foreign keys on transactions catch a transaction inserted concurrently.
func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var lockedID uuid.UUID
	if err := dbTx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.ErrNotFound
		}

		return fmt.Errorf("locking account: %w", err)
	}

	var refs int

	countQuery := `SELECT COUNT(*) FROM transactions WHERE account_id = $1 OR to_account_id = $1`
	if err := dbTx.QueryRowContext(ctx, countQuery, id).Scan(&refs); err != nil {
		return fmt.Errorf("counting transactions: %w", err)
	}

	if refs > 0 {
		return account.ErrInUse
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return account.ErrInUse
		}

		return fmt.Errorf("deleting account: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
