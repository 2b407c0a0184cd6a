package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// Type represents the type of transaction.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// Transaction is a single income, expense or transfer recorded against an owner's accounts.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Type        Type
	Amount      decimal.Decimal // Major units, two fractional digits
	Description string
	Date        time.Time
	AccountID   uuid.UUID
	ToAccountID *uuid.UUID // Transfers only
	CategoryID  *uuid.UUID // Income and expense only
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Posting captures the balance-relevant tuple of the transaction as it is right now.
func (t *Transaction) Posting() (ledger.Posting, error) {
	switch t.Type {
	case TypeIncome:
		if t.ToAccountID != nil {
			return nil, ErrInvalidTransfer
		}

		return ledger.Income{Account: t.AccountID, Amount: t.Amount}, nil
	case TypeExpense:
		if t.ToAccountID != nil {
			return nil, ErrInvalidTransfer
		}

		return ledger.Expense{Account: t.AccountID, Amount: t.Amount}, nil
	case TypeTransfer:
		if t.ToAccountID == nil || *t.ToAccountID == t.AccountID {
			return nil, ErrInvalidTransfer
		}

		return ledger.Transfer{From: t.AccountID, To: *t.ToAccountID, Amount: t.Amount}, nil
	}

	return nil, ErrInvalidType
}

// normalize drops the fields that carry no meaning for the transaction's type.
func (t *Transaction) normalize() {
	if t.Type == TypeTransfer {
		t.CategoryID = nil
		return
	}

	t.ToAccountID = nil
}

func (t *Transaction) validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	_, err := t.Posting()

	return err
}
