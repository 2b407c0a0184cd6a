package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t)
}

func printAccounts(w io.Writer, accounts []*account.Account) {
	rows := make([][]string, len(accounts))
	for i, a := range accounts {
		rows[i] = []string{a.ID.String(), a.Name, string(a.Type), money.Format(a.Balance, a.Currency)}
	}

	printTable(w, []string{"ID", "NAME", "TYPE", "BALANCE"}, rows)
}

func printTransactions(w io.Writer, txs []*transaction.Transaction) {
	rows := make([][]string, len(txs))
	for i, tx := range txs {
		to := ""
		if tx.ToAccountID != nil {
			to = tx.ToAccountID.String()
		}

		rows[i] = []string{
			tx.ID.String(),
			tx.Date.Format(time.DateOnly),
			string(tx.Type),
			tx.Amount.StringFixed(money.Places),
			tx.Description,
			tx.AccountID.String(),
			to,
		}
	}

	printTable(w, []string{"ID", "DATE", "TYPE", "AMOUNT", "DESCRIPTION", "ACCOUNT", "TO"}, rows)
}
