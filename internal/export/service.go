// Package export renders an account's transactions as a statement, either as CSV in the
// layout the generic importer reads back or as a plain-text summary.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// Header is the CSV header row. Its first three columns match the generic "signed" layout.
var Header = []string{"Date", "Description", "Amount", "Type", "Counterparty"}

// Row is one statement line, signed from the statement account's point of view.
type Row struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Type         transaction.Type
	Counterparty string
}

// Statement is the account plus its rows, oldest first.
type Statement struct {
	Account *account.Account
	Rows    []Row
}

type Service struct {
	accounts     *account.Service
	transactions *transaction.Service
}

func NewService(accounts *account.Service, transactions *transaction.Service) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
	}
}

// Statement builds the statement of accountID between the optional inclusive bounds.
func (s *Service) Statement(ctx context.Context, ownerID, accountID uuid.UUID, from, to *time.Time) (*Statement, error) {
	acc, err := s.accounts.Get(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.List(ctx, ownerID, transaction.ListFilter{
		AccountID: &accountID,
		StartDate: from,
		EndDate:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	accounts, err := s.accounts.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	rows := make([]Row, 0, len(txs))

	// Listings come newest first; statements read oldest first.
	for i := len(txs) - 1; i >= 0; i-- {
		rows = append(rows, rowFor(txs[i], accountID, names))
	}

	return &Statement{Account: acc, Rows: rows}, nil
}

func rowFor(tx *transaction.Transaction, accountID uuid.UUID, names map[uuid.UUID]string) Row {
	row := Row{
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
	}

	switch tx.Type {
	case transaction.TypeExpense:
		row.Amount = tx.Amount.Neg()
	case transaction.TypeTransfer:
		if tx.AccountID == accountID {
			row.Amount = tx.Amount.Neg()
			row.Counterparty = names[*tx.ToAccountID]
		} else {
			row.Counterparty = names[tx.AccountID]
		}
	}

	return row
}

// Net is the sum of the signed rows.
func (st *Statement) Net() decimal.Decimal {
	net := decimal.Zero
	for _, r := range st.Rows {
		net = net.Add(r.Amount)
	}

	return net
}

// WriteCSV writes the statement with dot decimals and ISO dates.
func (st *Statement) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range st.Rows {
		record := []string{
			r.Date.Format(time.DateOnly),
			r.Description,
			r.Amount.StringFixed(money.Places),
			string(r.Type),
			r.Counterparty,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders one line per row followed by the net movement and the current balance.
func (st *Statement) Summary() string {
	var sb strings.Builder

	cur := st.Account.Currency

	fmt.Fprintf(&sb, "%s (%s)\n", st.Account.Name, cur)

	for _, r := range st.Rows {
		line := fmt.Sprintf("* %s | %s | %s", r.Date.Format(time.DateOnly), r.Description, money.Format(r.Amount, cur))
		if r.Counterparty != "" {
			line += " | " + r.Counterparty
		}

		sb.WriteString(line + "\n")
	}

	fmt.Fprintf(&sb, "Net: %s\nBalance: %s\n", money.Format(st.Net(), cur), money.Format(st.Account.Balance, cur))

	return sb.String()
}
