package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/memory"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

func seed(t *testing.T, s *memory.Store, owner uuid.UUID, name, balance string) *account.Account {
	t.Helper()

	a := &account.Account{
		OwnerID:  owner,
		Name:     name,
		Type:     account.TypeBank,
		Balance:  decimal.RequireFromString(balance),
		Currency: "USD",
		Active:   true,
	}
	require.NoError(t, s.CreateAccount(context.Background(), a))

	return a
}

func TestStore_WithinUnit_DiscardsOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := seed(t, s, uuid.New(), "Checking", "100.00")

	boom := errors.New("boom")

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		require.NoError(t, u.AdjustBalance(ctx, a.ID, decimal.NewFromInt(-40)))
		require.NoError(t, u.CreateTransaction(ctx, &transaction.Transaction{
			OwnerID:   a.OwnerID,
			Type:      transaction.TypeExpense,
			Amount:    decimal.NewFromInt(40),
			Date:      time.Now(),
			AccountID: a.ID,
		}))

		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.00").Equal(got.Balance))

	txs, err := s.ListTransactions(ctx, a.OwnerID, transaction.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestStore_WithinUnit_Commits(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := seed(t, s, uuid.New(), "Checking", "100.00")

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		return u.AdjustBalance(ctx, a.ID, decimal.RequireFromString("0.125"))
	})
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.13").Equal(got.Balance))
}

func TestStore_WithinUnit_CancelledContext(t *testing.T) {
	s := memory.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinUnit(ctx, func(transaction.Unit) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_LockAccounts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner := uuid.New()
	a := seed(t, s, owner, "A", "1.00")
	b := seed(t, s, owner, "B", "2.00")

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		accounts, err := u.LockAccounts(ctx, []uuid.UUID{b.ID, a.ID})
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		first, second := a.ID, b.ID
		if second.String() < first.String() {
			first, second = second, first
		}

		assert.Equal(t, first, accounts[0].ID)
		assert.Equal(t, second, accounts[1].ID)

		_, err = u.LockAccounts(ctx, []uuid.UUID{a.ID, uuid.New()})
		assert.ErrorIs(t, err, account.ErrNotFound)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_CreateTransaction_Normalises(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := seed(t, s, uuid.New(), "Checking", "0")

	tx := &transaction.Transaction{
		OwnerID:   a.OwnerID,
		Type:      transaction.TypeIncome,
		Amount:    decimal.RequireFromString("10.005"),
		Date:      time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC),
		AccountID: a.ID,
	}

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		return u.CreateTransaction(ctx, tx)
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.True(t, decimal.RequireFromString("10.01").Equal(tx.Amount))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Date)
}

func TestStore_CreateTransaction_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		return u.CreateTransaction(ctx, &transaction.Transaction{
			Type:      transaction.TypeIncome,
			Amount:    decimal.NewFromInt(1),
			AccountID: uuid.New(),
		})
	})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestStore_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	type testCase struct {
		name       string
		referenced bool
		wantErr    error
	}

	tests := []testCase{
		{name: "Unreferenced"},
		{name: "ReferencedAsDestination", referenced: true, wantErr: account.ErrInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memory.New()
			src := seed(t, s, owner, "Source", "50.00")
			dst := seed(t, s, owner, "Destination", "0")

			if tt.referenced {
				err := s.WithinUnit(ctx, func(u transaction.Unit) error {
					return u.CreateTransaction(ctx, &transaction.Transaction{
						OwnerID:     owner,
						Type:        transaction.TypeTransfer,
						Amount:      decimal.NewFromInt(5),
						Date:        time.Now(),
						AccountID:   src.ID,
						ToAccountID: &dst.ID,
					})
				})
				require.NoError(t, err)
			}

			err := s.DeleteAccount(ctx, dst.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			_, err = s.GetAccount(ctx, dst.ID)
			assert.ErrorIs(t, err, account.ErrNotFound)
		})
	}
}

func TestStore_UpdateAccount_IgnoresBalance(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := seed(t, s, uuid.New(), "Checking", "10.00")

	a.Name = "Main"
	a.Balance = decimal.NewFromInt(9999)
	require.NoError(t, s.UpdateAccount(ctx, a))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Balance))
}

func TestStore_ListTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner := uuid.New()
	a := seed(t, s, owner, "A", "0")
	b := seed(t, s, owner, "B", "0")
	category := uuid.New()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	rows := []*transaction.Transaction{
		{OwnerID: owner, Type: transaction.TypeIncome, Amount: decimal.NewFromInt(1), Date: day(1), AccountID: a.ID, CategoryID: &category},
		{OwnerID: owner, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(2), Date: day(3), AccountID: a.ID},
		{OwnerID: owner, Type: transaction.TypeTransfer, Amount: decimal.NewFromInt(3), Date: day(2), AccountID: a.ID, ToAccountID: &b.ID},
		{OwnerID: uuid.New(), Type: transaction.TypeIncome, Amount: decimal.NewFromInt(4), Date: day(2), AccountID: b.ID},
	}

	err := s.WithinUnit(ctx, func(u transaction.Unit) error {
		for _, tx := range rows {
			if err := u.CreateTransaction(ctx, tx); err != nil {
				return err
			}
		}

		return nil
	})
	require.NoError(t, err)

	type testCase struct {
		name   string
		filter transaction.ListFilter
		want   []uuid.UUID
	}

	tests := []testCase{
		{name: "All", want: []uuid.UUID{rows[1].ID, rows[2].ID, rows[0].ID}},
		{name: "Type", filter: transaction.ListFilter{Type: new(transaction.TypeExpense)}, want: []uuid.UUID{rows[1].ID}},
		{name: "DestinationAccount", filter: transaction.ListFilter{AccountID: &b.ID}, want: []uuid.UUID{rows[2].ID}},
		{name: "Category", filter: transaction.ListFilter{CategoryID: &category}, want: []uuid.UUID{rows[0].ID}},
		{name: "DateRange", filter: transaction.ListFilter{StartDate: new(day(2)), EndDate: new(day(2))}, want: []uuid.UUID{rows[2].ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := s.ListTransactions(ctx, owner, tt.filter)
			require.NoError(t, err)

			got := make([]uuid.UUID, len(txs))
			for i, tx := range txs {
				got[i] = tx.ID
			}

			assert.Equal(t, tt.want, got)
		})
	}
}
