// Package memory keeps accounts and transactions in process memory.
//
// It implements both account.Repository and transaction.Repository. Units are serialised by a
// single mutex and work on a copy of the state that replaces the live state only when the unit
// succeeds, so a failed unit leaves nothing behind.
package memory

import (
	"bytes"
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type state struct {
	accounts     map[uuid.UUID]account.Account
	transactions map[uuid.UUID]transaction.Transaction
}

func (s *state) clone() *state {
	return &state{
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
	}
}

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{
		state: &state{
			accounts:     make(map[uuid.UUID]account.Account),
			transactions: make(map[uuid.UUID]transaction.Transaction),
		},
		now: time.Now,
	}
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	a.ID = newID()
	a.Balance = money.Round(a.Balance)
	a.CreatedAt = now
	a.UpdatedAt = &now

	s.state.accounts[a.ID] = *a

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.state.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var accounts []*account.Account

	for _, a := range s.state.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, &a)
		}
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.state.accounts[a.ID]
	if !ok {
		return account.ErrNotFound
	}

	now := s.now()

	stored.Name = a.Name
	stored.Type = a.Type
	stored.Currency = a.Currency
	stored.Description = a.Description
	stored.Active = a.Active
	stored.UpdatedAt = &now

	s.state.accounts[a.ID] = stored
	a.UpdatedAt = &now

	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.accounts[id]; !ok {
		return account.ErrNotFound
	}

	for _, tx := range s.state.transactions {
		if references(&tx, id) {
			return account.ErrInUse
		}
	}

	delete(s.state.accounts, id)

	return nil
}

func references(tx *transaction.Transaction, accountID uuid.UUID) bool {
	return tx.AccountID == accountID || (tx.ToAccountID != nil && *tx.ToAccountID == accountID)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.state.transactions[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return &tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*transaction.Transaction

	for _, tx := range s.state.transactions {
		if tx.OwnerID != ownerID || !matches(&tx, filter) {
			continue
		}

		txs = append(txs, &tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}

		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	return txs, nil
}

func matches(tx *transaction.Transaction, f transaction.ListFilter) bool {
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}

	if f.AccountID != nil && !references(tx, *f.AccountID) {
		return false
	}

	if f.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *f.CategoryID) {
		return false
	}

	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}

	return true
}

// WithinUnit holds the write lock for the whole of fn.
func (s *Store) WithinUnit(ctx context.Context, fn func(transaction.Unit) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	u := &unit{state: s.state.clone(), now: s.now}
	if err := fn(u); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = u.state

	return nil
}

type unit struct {
	state *state
	now   func() time.Time
}

func (u *unit) LockAccounts(ctx context.Context, ids []uuid.UUID) ([]*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts := make([]*account.Account, 0, len(ids))

	for _, id := range ids {
		a, ok := u.state.accounts[id]
		if !ok {
			return nil, account.ErrNotFound
		}

		accounts = append(accounts, &a)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i].ID[:], accounts[j].ID[:]) < 0
	})

	return accounts, nil
}

func (u *unit) LoadTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, ok := u.state.transactions[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return &tx, nil
}

func (u *unit) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a, ok := u.state.accounts[accountID]
	if !ok {
		return account.ErrNotFound
	}

	now := u.now()

	a.Balance = money.Round(a.Balance.Add(delta))
	a.UpdatedAt = &now
	u.state.accounts[accountID] = a

	return nil
}

func (u *unit) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := u.checkRefs(ctx, tx); err != nil {
		return err
	}

	now := u.now()

	tx.ID = newID()
	tx.Amount = money.Round(tx.Amount)
	tx.Date = day(tx.Date)
	tx.CreatedAt = now
	tx.UpdatedAt = &now

	u.state.transactions[tx.ID] = *tx

	return nil
}

func (u *unit) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := u.checkRefs(ctx, tx); err != nil {
		return err
	}

	stored, ok := u.state.transactions[tx.ID]
	if !ok {
		return transaction.ErrNotFound
	}

	now := u.now()

	tx.Amount = money.Round(tx.Amount)
	tx.Date = day(tx.Date)
	tx.OwnerID = stored.OwnerID
	tx.CreatedAt = stored.CreatedAt
	tx.UpdatedAt = &now

	u.state.transactions[tx.ID] = *tx

	return nil
}

func (u *unit) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := u.state.transactions[id]; !ok {
		return transaction.ErrNotFound
	}

	delete(u.state.transactions, id)

	return nil
}

func (u *unit) FindDuplicates(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from, to = day(from), day(to)

	var txs []*transaction.Transaction

	for _, tx := range u.state.transactions {
		if !references(&tx, accountID) || tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}

		txs = append(txs, &tx)
	}

	return txs, nil
}

// checkRefs stands in for the foreign keys on the transactions table.
func (u *unit) checkRefs(ctx context.Context, tx *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := u.state.accounts[tx.AccountID]; !ok {
		return account.ErrNotFound
	}

	if tx.ToAccountID != nil {
		if _, ok := u.state.accounts[*tx.ToAccountID]; !ok {
			return account.ErrNotFound
		}
	}

	return nil
}

// day truncates t to midnight UTC of its calendar date, as a DATE column would.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
