package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
)

type ImportResult struct {
	Imported  []*Transaction
	Accounts  []*account.Account
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(date time.Time, amount string, typ Type, desc string) dupKey {
	return dupKey{Date: date.Format(time.DateOnly), Amount: amount, Type: typ, Description: strings.TrimSpace(desc)}
}

// ImportBatch books a statement's rows against accountID. When any row matches an existing
// transaction on the account nothing is written and the conflicts are returned for review.
func (s *Service) ImportBatch(ctx context.Context, ownerID, accountID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	txs, err := prepareBatch(ownerID, accountID, params)
	if err != nil {
		return nil, err
	}

	ids := batchAccountIDs(txs)
	minDate, maxDate := dateRange(txs)

	var res *ImportResult

	err = s.repo.WithinUnit(ctx, func(u Unit) error {
		// Ownership first: conflicts expose the account's existing transactions.
		if _, err := lockOwned(ctx, u, ownerID, ids); err != nil {
			return err
		}

		duplicates, err := u.FindDuplicates(ctx, accountID, minDate, maxDate)
		if err != nil {
			return err
		}

		lookup := make(map[dupKey]*Transaction, len(duplicates))
		for _, d := range duplicates {
			lookup[keyOf(d.Date, d.Amount.StringFixed(2), d.Type, d.Description)] = d
		}

		var fresh []CreateParams

		var conflicts []Conflict

		for i, tx := range txs {
			existing, found := lookup[keyOf(tx.Date, tx.Amount.StringFixed(2), tx.Type, tx.Description)]
			if found {
				conflicts = append(conflicts, Conflict{Incoming: params[i], Existing: existing})
				continue
			}

			fresh = append(fresh, params[i])
		}

		if len(conflicts) > 0 {
			res = &ImportResult{New: fresh, Conflicts: conflicts}
			return nil
		}

		accounts, err := createBatch(ctx, u, ids, txs)
		if err != nil {
			return err
		}

		res = &ImportResult{Imported: txs, Accounts: accounts}

		return nil
	})
	if err != nil {
		return nil, unitError("importing transactions", err)
	}

	return res, nil
}

// CreateBatch books every row against accountID without looking for duplicates.
func (s *Service) CreateBatch(ctx context.Context, ownerID, accountID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	txs, err := prepareBatch(ownerID, accountID, params)
	if err != nil {
		return nil, err
	}

	ids := batchAccountIDs(txs)

	var res *ImportResult

	err = s.repo.WithinUnit(ctx, func(u Unit) error {
		if _, err := lockOwned(ctx, u, ownerID, ids); err != nil {
			return err
		}

		accounts, err := createBatch(ctx, u, ids, txs)
		if err != nil {
			return err
		}

		res = &ImportResult{Imported: txs, Accounts: accounts}

		return nil
	})
	if err != nil {
		return nil, unitError("creating transactions", err)
	}

	return res, nil
}

func prepareBatch(ownerID, accountID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))

	for i, p := range params {
		p.AccountID = accountID

		tx := p.transaction(ownerID)
		if err := tx.validate(); err != nil {
			return nil, err
		}

		txs[i] = tx
	}

	return txs, nil
}

// batchAccountIDs lists every account the rows touch, in lock order.
func batchAccountIDs(txs []*Transaction) []uuid.UUID {
	var ids []uuid.UUID

	for _, tx := range txs {
		p, _ := tx.Posting()
		ids = append(ids, p.Accounts()...)
	}

	return sortedIDs(ids)
}

// createBatch expects ids to be locked and owned already.
func createBatch(ctx context.Context, u Unit, ids []uuid.UUID, txs []*Transaction) ([]*account.Account, error) {
	for _, tx := range txs {
		if err := createAndApply(ctx, u, tx); err != nil {
			return nil, err
		}
	}

	return u.LockAccounts(ctx, ids)
}

func dateRange(txs []*Transaction) (time.Time, time.Time) {
	minDate := txs[0].Date
	maxDate := txs[0].Date

	for _, tx := range txs[1:] {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}

		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
	}

	return minDate, maxDate
}
