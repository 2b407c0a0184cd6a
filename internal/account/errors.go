package account

import "errors"

var (
	ErrNotFound        = errors.New("account not found")
	ErrForbidden       = errors.New("account belongs to another owner")
	ErrInUse           = errors.New("account has transactions")
	ErrNameRequired    = errors.New("account name is required")
	ErrInvalidType     = errors.New("invalid account type")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO code")
	ErrNegativeSeed    = errors.New("initial balance cannot be negative")
)
