// Package ledger turns a posting into balance deltas and pushes them through an Adjuster.
//
// A posting is the (type, amount, source, destination) tuple of a transaction captured at the
// moment of the call. Apply makes it take effect on account balances, Reverse undoes it, and
// Reverse(p) after Apply(p) leaves every balance exactly where it started.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjuster mutates a single account balance by delta as one atomic read-modify-write.
type Adjuster interface {
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
}

// Posting is one of Income, Expense or Transfer.
type Posting interface {
	// Deltas lists the signed balance changes in the order they are applied.
	Deltas() []Delta
	// Accounts lists every account the posting touches.
	Accounts() []uuid.UUID
}

// Delta is a signed change to one account balance.
type Delta struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// Income credits Account.
type Income struct {
	Account uuid.UUID
	Amount  decimal.Decimal
}

func (p Income) Deltas() []Delta {
	return []Delta{{AccountID: p.Account, Amount: p.Amount}}
}

func (p Income) Accounts() []uuid.UUID { return []uuid.UUID{p.Account} }

// Expense debits Account.
type Expense struct {
	Account uuid.UUID
	Amount  decimal.Decimal
}

func (p Expense) Deltas() []Delta {
	return []Delta{{AccountID: p.Account, Amount: p.Amount.Neg()}}
}

func (p Expense) Accounts() []uuid.UUID { return []uuid.UUID{p.Account} }

// Transfer moves Amount from From to To. From and To must differ.
type Transfer struct {
	From   uuid.UUID
	To     uuid.UUID
	Amount decimal.Decimal
}

func (p Transfer) Deltas() []Delta {
	return []Delta{
		{AccountID: p.From, Amount: p.Amount.Neg()},
		{AccountID: p.To, Amount: p.Amount},
	}
}

func (p Transfer) Accounts() []uuid.UUID { return []uuid.UUID{p.From, p.To} }

// Apply makes p take effect on the balances behind adj.
func Apply(ctx context.Context, adj Adjuster, p Posting) error {
	return post(ctx, adj, p.Deltas())
}

// Reverse undoes a previously applied p.
func Reverse(ctx context.Context, adj Adjuster, p Posting) error {
	return post(ctx, adj, Invert(p.Deltas()))
}

// Invert negates every delta, keeping the order.
func Invert(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}

	return out
}

// Net sums deltas per account.
func Net(deltas []Delta) map[uuid.UUID]decimal.Decimal {
	net := make(map[uuid.UUID]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		net[d.AccountID] = net[d.AccountID].Add(d.Amount)
	}

	return net
}

// post stops at the first failing adjustment; the caller's atomic unit discards the rest.
func post(ctx context.Context, adj Adjuster, deltas []Delta) error {
	for _, d := range deltas {
		if err := adj.AdjustBalance(ctx, d.AccountID, d.Amount); err != nil {
			return err
		}
	}

	return nil
}
