package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	accountstore "github.com/MrJamesThe3rd/pennywise/internal/account/store"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanTransaction reads a transaction row selected with selectTransactionColumns.
func scanTransaction(s accountstore.Scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	var desc sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.OwnerID, &typeStr, &tx.Amount, &desc, &tx.Date,
		&tx.AccountID, &tx.ToAccountID, &tx.CategoryID,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Description = desc.String

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.user_id, t.type, t.amount, t.description, t.date,
	t.account_id, t.to_account_id, t.category_id, t.created_at, t.updated_at
`

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, s.db, id, "")
}

func getTransaction(ctx context.Context, q querier, id uuid.UUID, suffix string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1` + suffix

	tx, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.user_id = $1`

	args := []any{ownerID}

	argIdx := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND (t.account_id = $%d OR t.to_account_id = $%d)", argIdx, argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY t.date DESC, t.created_at DESC"

	return queryTransactions(ctx, s.db, query, args...)
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

// WithinUnit runs fn inside one database transaction.
func (s *Store) WithinUnit(ctx context.Context, fn func(transaction.Unit) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(&unit{tx: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

type unit struct {
	tx *sql.Tx
}

// LockAccounts takes row locks in id order so that two transfers between the same pair of
// accounts can never wait on each other.
func (u *unit) LockAccounts(ctx context.Context, ids []uuid.UUID) ([]*account.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `SELECT ` + accountstore.Columns + `
		FROM accounts a
		WHERE a.id = ANY($1::uuid[])
		ORDER BY a.id
		FOR UPDATE`

	rows, err := u.tx.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("locking accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := accountstore.ScanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	if len(accounts) != len(ids) {
		return nil, account.ErrNotFound
	}

	return accounts, nil
}

func (u *unit) LoadTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, u.tx, id, " FOR UPDATE")
}

func (u *unit) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`

	res, err := u.tx.ExecContext(ctx, query, delta, accountID)
	if err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}

	if n == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (u *unit) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, description, date, account_id, to_account_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, amount, date, created_at, updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		tx.OwnerID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.AccountID,
		tx.ToAccountID,
		tx.CategoryID,
	).Scan(&tx.ID, &tx.Amount, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (u *unit) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, description = $3, date = $4,
			account_id = $5, to_account_id = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING amount, date, updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.AccountID,
		tx.ToAccountID,
		tx.CategoryID,
		tx.ID,
	).Scan(&tx.Amount, &tx.Date, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (u *unit) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := u.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func importLockKey(accountID uuid.UUID, from, to time.Time) int64 {
	h := fnv.New64a()
	h.Write(accountID[:])
	h.Write([]byte(from.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(to.Format(time.DateOnly)))

	return int64(h.Sum64())
}

// FindDuplicates returns the account's transactions dated within [from, to]. It first takes an
// advisory lock on the range so that two imports of the same statement cannot both pass the check.
func (u *unit) FindDuplicates(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error) {
	if _, err := u.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(accountID, from, to)); err != nil {
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE (t.account_id = $1 OR t.to_account_id = $1) AND t.date >= $2 AND t.date <= $3
		ORDER BY t.date ASC`

	txs, err := queryTransactions(ctx, u.tx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	return txs, nil
}
