package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "Record and inspect transactions",
}

var (
	txType    string
	txAmount  string
	txDesc    string
	txDate    string
	txAccount string
	txTo      string
)

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an income, expense or transfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := txParams()
		if err != nil {
			return err
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := svc.Transactions.Create(cmd.Context(), owner, params)
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), res.Transaction, res.Accounts)

		return nil
	},
}

func txParams() (transaction.CreateParams, error) {
	var p transaction.CreateParams

	amount, err := money.Parse(txAmount)
	if err != nil {
		return p, err
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if txDate != "" {
		if date, err = time.Parse(time.DateOnly, txDate); err != nil {
			return p, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
	}

	accountID, err := uuid.Parse(txAccount)
	if err != nil {
		return p, fmt.Errorf("invalid --account: %w", err)
	}

	p = transaction.CreateParams{
		Type:        transaction.Type(txType),
		Amount:      amount,
		Description: txDesc,
		Date:        date,
		AccountID:   accountID,
	}

	if txTo != "" {
		to, err := uuid.Parse(txTo)
		if err != nil {
			return p, fmt.Errorf("invalid --to: %w", err)
		}

		p.ToAccountID = &to
	}

	return p, nil
}

var (
	txListAccount string
	txListFrom    string
	txListTo      string
)

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter transaction.ListFilter

		if txListAccount != "" {
			id, err := uuid.Parse(txListAccount)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}

			filter.AccountID = &id
		}

		var err error

		if filter.StartDate, err = parseDay(txListFrom); err != nil {
			return err
		}

		if filter.EndDate, err = parseDay(txListTo); err != nil {
			return err
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		txs, err := svc.Transactions.List(cmd.Context(), owner, filter)
		if err != nil {
			return err
		}

		if len(txs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
			return nil
		}

		printTransactions(cmd.OutOrStdout(), txs)

		return nil
	},
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction and reverse its effect on balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid transaction id: %w", err)
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.Transactions.Delete(cmd.Context(), owner, id); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Transaction deleted.")

		return nil
	},
}

func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("dates must be YYYY-MM-DD: %w", err)
	}

	return &d, nil
}

func printResult(w io.Writer, tx *transaction.Transaction, accounts []*account.Account) {
	printTransactions(w, []*transaction.Transaction{tx})
	printAccounts(w, accounts)
}

func init() {
	txAddCmd.Flags().StringVar(&txType, "type", string(transaction.TypeExpense), "income, expense or transfer")
	txAddCmd.Flags().StringVar(&txAmount, "amount", "", "Positive amount")
	txAddCmd.Flags().StringVar(&txDesc, "description", "", "Description")
	txAddCmd.Flags().StringVar(&txDate, "date", "", "Date as YYYY-MM-DD (defaults to today)")
	txAddCmd.Flags().StringVar(&txAccount, "account", "", "Source account id")
	txAddCmd.Flags().StringVar(&txTo, "to", "", "Destination account id for transfers")
	_ = txAddCmd.MarkFlagRequired("amount")
	_ = txAddCmd.MarkFlagRequired("account")

	txListCmd.Flags().StringVar(&txListAccount, "account", "", "Only transactions touching this account")
	txListCmd.Flags().StringVar(&txListFrom, "from", "", "Earliest date, YYYY-MM-DD")
	txListCmd.Flags().StringVar(&txListTo, "until", "", "Latest date, YYYY-MM-DD")

	txCmd.AddCommand(txAddCmd, txListCmd, txDeleteCmd)
	rootCmd.AddCommand(txCmd)
}
