// Package cgd reads the CSV exports of Caixa Geral de Depósitos.
package cgd

import (
	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

// Format covers the three CGD exports: card movements (cartão), statements (extrato)
// and the current-account listing (conta).
var Format = statement.Format{
	Name:        "cgd",
	Comma:       ';',
	DateLayout:  "02-01-2006",
	ParseAmount: money.ParseEuropean,
	Profiles: []statement.Profile{
		{
			Name:       "cartão",
			DateCol:    "Data",
			DescCol:    "Descrição",
			AmountMode: statement.AmountSplit,
			DebitCol:   "Débito",
			CreditCol:  "Crédito",
		},
		{
			Name:       "extrato",
			DateCol:    "Data mov.",
			DescCol:    "Descrição",
			AmountMode: statement.AmountSingle,
			AmountCol:  "Movimento",
		},
		{
			Name:       "conta",
			DateCol:    "Data mov.",
			DescCol:    "Descrição",
			AmountMode: statement.AmountSingle,
			AmountCol:  "Montante",
		},
	},
}

func NewParser() *statement.Parser {
	return statement.NewParser(Format)
}
