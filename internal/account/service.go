package account

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	// UpdateAccount writes every field except Balance.
	UpdateAccount(ctx context.Context, a *Account) error
	// DeleteAccount fails with ErrInUse while any transaction references the account.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	Type        Type
	Balance     decimal.Decimal
	Currency    string
	Description string
	Active      bool
}

// UpdateParams carries the editable fields. Balance is deliberately absent.
type UpdateParams struct {
	Name        *string
	Type        *Type
	Currency    *string
	Description *string
	Active      *bool
}

// Total is the summed balance of an owner's active accounts in one currency.
type Total struct {
	Currency string
	Balance  decimal.Decimal
	Accounts int
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Account, error) {
	a := &Account{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(params.Name),
		Type:        params.Type,
		Balance:     money.Round(params.Balance),
		Currency:    strings.ToUpper(params.Currency),
		Description: params.Description,
		Active:      params.Active,
	}

	if err := validate(a); err != nil {
		return nil, err
	}

	if a.Balance.IsNegative() {
		return nil, ErrNegativeSeed
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	return a, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		a.Name = strings.TrimSpace(*params.Name)
	}

	if params.Type != nil {
		a.Type = *params.Type
	}

	if params.Currency != nil {
		a.Currency = strings.ToUpper(*params.Currency)
	}

	if params.Description != nil {
		a.Description = *params.Description
	}

	if params.Active != nil {
		a.Active = *params.Active
	}

	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	return s.repo.DeleteAccount(ctx, id)
}

// Totals sums the balances of the owner's active accounts, one entry per currency,
// sorted by currency code.
func (s *Service) Totals(ctx context.Context, ownerID uuid.UUID) ([]Total, error) {
	accounts, err := s.repo.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	byCurrency := make(map[string]*Total)

	for _, a := range accounts {
		if !a.Active {
			continue
		}

		t, ok := byCurrency[a.Currency]
		if !ok {
			t = &Total{Currency: a.Currency}
			byCurrency[a.Currency] = t
		}

		t.Balance = t.Balance.Add(a.Balance)
		t.Accounts++
	}

	totals := make([]Total, 0, len(byCurrency))
	for _, t := range byCurrency {
		totals = append(totals, *t)
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })

	return totals, nil
}

func validate(a *Account) error {
	if a.Name == "" {
		return ErrNameRequired
	}

	if !a.Type.Valid() {
		return ErrInvalidType
	}

	if !money.ValidCurrency(a.Currency) {
		return ErrInvalidCurrency
	}

	return nil
}
