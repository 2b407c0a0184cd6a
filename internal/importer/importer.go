package importer

import (
	"io"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Bank string

const (
	BankCGD     Bank = "cgd"
	BankGeneric Bank = "generic"
)

// Parser turns a statement into unbooked transaction params; the account is chosen at import time.
type Parser interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
