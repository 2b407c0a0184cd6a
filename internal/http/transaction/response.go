package transaction

import (
	"time"

	"github.com/google/uuid"

	accounthttp "github.com/MrJamesThe3rd/pennywise/internal/http/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Response struct {
	ID          uuid.UUID        `json:"id"`
	Type        transaction.Type `json:"type"`
	Amount      string           `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	AccountID   uuid.UUID        `json:"account_id"`
	ToAccountID *uuid.UUID       `json:"to_account_id,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

// resultResponse carries the committed transaction and the balances it left behind.
type resultResponse struct {
	Transaction Response               `json:"transaction"`
	Accounts    []accounthttp.Response `json:"accounts"`
}

func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      tx.Amount.StringFixed(money.Places),
		Description: tx.Description,
		Date:        tx.Date.Format(time.DateOnly),
		AccountID:   tx.AccountID,
		ToAccountID: tx.ToAccountID,
		CategoryID:  tx.CategoryID,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

func toResultResponse(res *transaction.Result) resultResponse {
	return resultResponse{
		Transaction: ToResponse(res.Transaction),
		Accounts:    accounthttp.ToResponseList(res.Accounts),
	}
}
