package view

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

const dbTimeout = 5 * time.Second

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(money.Places)
}

// FormatBalance renders the balance with the account's currency symbol.
func FormatBalance(a *account.Account) string {
	return money.Format(a.Balance, a.Currency)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for storage operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func accountNames(accounts []*account.Account) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	return names
}
