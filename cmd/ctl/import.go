package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var (
	importBank    string
	importAccount string
	importForce   bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a bank statement into an account",
	Long: "Parses the statement and books every row against the account. If any row looks like " +
		"an existing transaction nothing is written unless --force is given.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, err := uuid.Parse(importAccount)
		if err != nil {
			return fmt.Errorf("invalid --account: %w", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		params, err := svc.Importer.Import(importer.Bank(importBank), f)
		if err != nil {
			return err
		}

		res, err := svc.Transactions.ImportBatch(cmd.Context(), owner, accountID, params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(res.Conflicts) > 0 {
			rows := make([][]string, len(res.Conflicts))
			for i, c := range res.Conflicts {
				rows[i] = []string{
					c.Incoming.Date.Format("2006-01-02"),
					string(c.Incoming.Type),
					c.Incoming.Amount.StringFixed(money.Places),
					c.Incoming.Description,
					c.Existing.ID.String(),
				}
			}

			fmt.Fprintf(out, "%d new rows, %d possible duplicates:\n", len(res.New), len(res.Conflicts))
			printTable(out, []string{"DATE", "TYPE", "AMOUNT", "DESCRIPTION", "EXISTING"}, rows)

			if !importForce {
				fmt.Fprintln(out, "Nothing imported. Re-run with --force to import every row anyway.")
				return nil
			}

			all := append([]transaction.CreateParams{}, res.New...)
			for _, c := range res.Conflicts {
				all = append(all, c.Incoming)
			}

			if res, err = svc.Transactions.CreateBatch(cmd.Context(), owner, accountID, all); err != nil {
				return err
			}
		}

		fmt.Fprintf(out, "Imported %d transactions.\n", len(res.Imported))
		printAccounts(out, res.Accounts)

		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importBank, "bank", string(importer.BankGeneric), "Statement format: cgd or generic")
	importCmd.Flags().StringVar(&importAccount, "account", "", "Account id to import into")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import rows even when they look like duplicates")
	_ = importCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(importCmd)
}
