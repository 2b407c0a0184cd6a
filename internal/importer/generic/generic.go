// Package generic reads plain comma-separated statements with ISO dates and dot decimals,
// the shape most banks and spreadsheet tools export by default.
package generic

import (
	"time"

	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

var Format = statement.Format{
	Name:        "generic",
	Comma:       ',',
	DateLayout:  time.DateOnly,
	ParseAmount: money.Parse,
	Profiles: []statement.Profile{
		{
			Name:       "debit-credit",
			DateCol:    "Date",
			DescCol:    "Description",
			AmountMode: statement.AmountSplit,
			DebitCol:   "Debit",
			CreditCol:  "Credit",
		},
		{
			Name:       "signed",
			DateCol:    "Date",
			DescCol:    "Description",
			AmountMode: statement.AmountSingle,
			AmountCol:  "Amount",
		},
	},
}

func NewParser() *statement.Parser {
	return statement.NewParser(Format)
}
