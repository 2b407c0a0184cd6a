package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the kind of account.
type Type string

const (
	TypeBank       Type = "bank"
	TypeEWallet    Type = "e_wallet"
	TypeCash       Type = "cash"
	TypeCreditCard Type = "credit_card"
	TypeInvestment Type = "investment"
)

// Valid reports whether t is one of the known account types.
func (t Type) Valid() bool {
	switch t {
	case TypeBank, TypeEWallet, TypeCash, TypeCreditCard, TypeInvestment:
		return true
	}

	return false
}

// Account holds money for a single owner.
// Balance starts at the seed value given on creation and is afterwards
// only changed by applying or reversing transactions.
type Account struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Type        Type
	Balance     decimal.Decimal
	Currency    string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
