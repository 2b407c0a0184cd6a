package transaction

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error)

	// WithinUnit runs fn as one atomic unit: everything fn does through the Unit is
	// committed when fn returns nil and discarded when it returns an error.
	WithinUnit(ctx context.Context, fn func(Unit) error) error
}

// Unit is the store as seen from inside an atomic unit.
type Unit interface {
	// LockAccounts loads the accounts ordered by id and holds them until the unit ends.
	// It fails with account.ErrNotFound if any id does not resolve.
	LockAccounts(ctx context.Context, ids []uuid.UUID) ([]*account.Account, error)
	// LoadTransaction loads and locks a transaction row.
	LoadTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// AdjustBalance adds delta to the account balance in a single read-modify-write.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error

	// CreateTransaction and UpdateTransaction write tx and refresh it with the stored values.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	FindDuplicates(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*Transaction, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Type        Type
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	AccountID   uuid.UUID
	ToAccountID *uuid.UUID
	CategoryID  *uuid.UUID
}

// UpdateParams holds the fields to change; nil leaves a field as it is.
type UpdateParams struct {
	Type          *Type
	Amount        *decimal.Decimal
	Description   *string
	Date          *time.Time
	AccountID     *uuid.UUID
	ToAccountID   *uuid.UUID
	CategoryID    *uuid.UUID
	ClearCategory bool
}

type ListFilter struct {
	Type       *Type
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Result is a committed transaction together with the balances it touched, ordered by account id.
type Result struct {
	Transaction *Transaction
	Accounts    []*account.Account
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Result, error) {
	tx := params.transaction(ownerID)
	if err := tx.validate(); err != nil {
		return nil, err
	}

	var res *Result

	err := s.repo.WithinUnit(ctx, func(u Unit) error {
		p, _ := tx.Posting()

		ids := sortedIDs(p.Accounts())
		if _, err := lockOwned(ctx, u, ownerID, ids); err != nil {
			return err
		}

		if err := createAndApply(ctx, u, tx); err != nil {
			return err
		}

		accounts, err := u.LockAccounts(ctx, ids)
		if err != nil {
			return err
		}

		res = &Result{Transaction: tx, Accounts: accounts}

		return nil
	})
	if err != nil {
		return nil, unitError("creating transaction", err)
	}

	return res, nil
}

// Update reverses the stored transaction, writes the edit and applies the stored result.
// The reversal always uses the tuple as it was before the edit.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Result, error) {
	var res *Result

	err := s.repo.WithinUnit(ctx, func(u Unit) error {
		old, err := u.LoadTransaction(ctx, id)
		if err != nil {
			return err
		}

		if old.OwnerID != ownerID {
			return ErrForbidden
		}

		before, err := old.Posting()
		if err != nil {
			return err
		}

		next := params.apply(*old)
		if err := next.validate(); err != nil {
			return err
		}

		after, _ := next.Posting()

		ids := sortedIDs(append(before.Accounts(), after.Accounts()...))
		if _, err := lockOwned(ctx, u, ownerID, ids); err != nil {
			return err
		}

		if err := ledger.Reverse(ctx, u, before); err != nil {
			return err
		}

		if err := u.UpdateTransaction(ctx, &next); err != nil {
			return err
		}

		stored, err := next.Posting()
		if err != nil {
			return err
		}

		if err := ledger.Apply(ctx, u, stored); err != nil {
			return err
		}

		accounts, err := u.LockAccounts(ctx, ids)
		if err != nil {
			return err
		}

		res = &Result{Transaction: &next, Accounts: accounts}

		return nil
	})
	if err != nil {
		return nil, unitError("updating transaction", err)
	}

	return res, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.repo.WithinUnit(ctx, func(u Unit) error {
		tx, err := u.LoadTransaction(ctx, id)
		if err != nil {
			return err
		}

		if tx.OwnerID != ownerID {
			return ErrForbidden
		}

		p, err := tx.Posting()
		if err != nil {
			return err
		}

		if _, err := lockOwned(ctx, u, ownerID, sortedIDs(p.Accounts())); err != nil {
			return err
		}

		if err := ledger.Reverse(ctx, u, p); err != nil {
			return err
		}

		return u.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return unitError("deleting transaction", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ownerID, filter)
}

// createAndApply persists tx and applies the tuple the store handed back.
func createAndApply(ctx context.Context, u Unit, tx *Transaction) error {
	if err := u.CreateTransaction(ctx, tx); err != nil {
		return err
	}

	p, err := tx.Posting()
	if err != nil {
		return err
	}

	return ledger.Apply(ctx, u, p)
}

// lockOwned locks the accounts and rejects any that belong to someone else.
func lockOwned(ctx context.Context, u Unit, ownerID uuid.UUID, ids []uuid.UUID) ([]*account.Account, error) {
	accounts, err := u.LockAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, a := range accounts {
		if a.OwnerID != ownerID {
			return nil, ErrForbidden
		}
	}

	return accounts, nil
}

// sortedIDs dedupes ids and sorts them the way the stores lock rows.
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })

	return out
}

func (p CreateParams) transaction(ownerID uuid.UUID) *Transaction {
	tx := &Transaction{
		OwnerID:     ownerID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
		AccountID:   p.AccountID,
		ToAccountID: p.ToAccountID,
		CategoryID:  p.CategoryID,
	}
	tx.normalize()

	return tx
}

func (p UpdateParams) apply(tx Transaction) Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.Description != nil {
		tx.Description = *p.Description
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}

	if p.AccountID != nil {
		tx.AccountID = *p.AccountID
	}

	if p.ToAccountID != nil {
		tx.ToAccountID = p.ToAccountID
	}

	if p.CategoryID != nil {
		tx.CategoryID = p.CategoryID
	}

	if p.ClearCategory {
		tx.CategoryID = nil
	}

	tx.normalize()

	return tx
}
