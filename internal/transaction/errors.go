package transaction

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrForbidden       = errors.New("transaction or account belongs to another owner")
	ErrInvalidTransfer = errors.New("transfer needs a destination account different from the source")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidType     = errors.New("type must be income, expense or transfer")

	// ErrStorage marks a failure of the underlying store; the atomic unit was rolled back.
	ErrStorage = errors.New("storage failure")
)

var domainErrors = []error{
	ErrNotFound,
	ErrForbidden,
	ErrInvalidTransfer,
	ErrInvalidAmount,
	ErrInvalidType,
	account.ErrNotFound,
}

// unitError passes domain errors through and tags everything else as ErrStorage.
func unitError(op string, err error) error {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}
