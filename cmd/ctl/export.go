package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportFrom  string
	exportUntil string
	exportText  bool
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export [account-id]",
	Short: "Write an account statement as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}

		from, err := parseDay(exportFrom)
		if err != nil {
			return err
		}

		until, err := parseDay(exportUntil)
		if err != nil {
			return err
		}

		svc, owner, closeFn, err := session(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		st, err := svc.Export.Statement(cmd.Context(), owner, accountID, from, until)
		if err != nil {
			return err
		}

		if exportText {
			_, err := fmt.Fprint(cmd.OutOrStdout(), st.Summary())
			return err
		}

		if exportOut == "" {
			return st.WriteCSV(cmd.OutOrStdout())
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := st.WriteCSV(f); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(st.Rows), exportOut)

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Earliest date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "Latest date, YYYY-MM-DD")
	exportCmd.Flags().BoolVar(&exportText, "text", false, "Print a readable summary instead of CSV")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to a file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
