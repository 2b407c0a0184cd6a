package importer

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/MrJamesThe3rd/pennywise/internal/importer/cgd"
	"github.com/MrJamesThe3rd/pennywise/internal/importer/generic"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var ErrUnknownBank = errors.New("unknown bank")

type Service struct {
	parsers map[Bank]Parser
}

func NewService() *Service {
	return &Service{
		parsers: map[Bank]Parser{
			BankCGD:     cgd.NewParser(),
			BankGeneric: generic.NewParser(),
		},
	}
}

func (s *Service) Import(bank Bank, r io.Reader) ([]transaction.CreateParams, error) {
	parser, ok := s.parsers[bank]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBank, bank)
	}

	return parser.Parse(r)
}

// Banks lists the supported banks in a stable order.
func (s *Service) Banks() []Bank {
	banks := make([]Bank, 0, len(s.parsers))
	for b := range s.parsers {
		banks = append(banks, b)
	}

	slices.Sort(banks)

	return banks
}
