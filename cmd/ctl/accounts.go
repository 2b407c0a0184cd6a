package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account"},
	Short:   "Manage accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		accounts, err := svc.Accounts.List(cmd.Context(), owner)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts found.")
			return nil
		}

		printAccounts(cmd.OutOrStdout(), accounts)

		return nil
	},
}

var (
	acctName     string
	acctType     string
	acctCurrency string
	acctBalance  string
	acctDesc     string
)

var accountsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with an opening balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		balance, err := money.Parse(acctBalance)
		if err != nil {
			return err
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		a, err := svc.Accounts.Create(cmd.Context(), owner, account.CreateParams{
			Name:        acctName,
			Type:        account.Type(acctType),
			Balance:     balance,
			Currency:    acctCurrency,
			Description: acctDesc,
			Active:      true,
		})
		if err != nil {
			return err
		}

		printAccounts(cmd.OutOrStdout(), []*account.Account{a})

		return nil
	},
}

var accountsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total balance of active accounts per currency",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		totals, err := svc.Accounts.Totals(cmd.Context(), owner)
		if err != nil {
			return err
		}

		rows := make([][]string, len(totals))
		for i, t := range totals {
			rows[i] = []string{t.Currency, money.Format(t.Balance, t.Currency), fmt.Sprint(t.Accounts)}
		}

		printTable(cmd.OutOrStdout(), []string{"CURRENCY", "TOTAL", "ACCOUNTS"}, rows)

		return nil
	},
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an account that has no transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.Accounts.Delete(cmd.Context(), owner, id); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")

		return nil
	},
}

func init() {
	accountsCreateCmd.Flags().StringVar(&acctName, "name", "", "Account name")
	accountsCreateCmd.Flags().StringVar(&acctType, "type", string(account.TypeBank), "bank, e_wallet, cash, credit_card or investment")
	accountsCreateCmd.Flags().StringVar(&acctCurrency, "currency", "EUR", "ISO 4217 currency code")
	accountsCreateCmd.Flags().StringVar(&acctBalance, "balance", "0", "Opening balance")
	accountsCreateCmd.Flags().StringVar(&acctDesc, "description", "", "Free-form description")
	_ = accountsCreateCmd.MarkFlagRequired("name")

	accountsCmd.AddCommand(accountsListCmd, accountsCreateCmd, accountsSummaryCmd, accountsDeleteCmd)
	rootCmd.AddCommand(accountsCmd)
}
