package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
)

func TestService_Create(t *testing.T) {
	owner := uuid.New()

	type args struct {
		params account.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *account.MockRepository)
		wantErr   bool
		wantIs    error
	}

	valid := account.CreateParams{
		Name:     "Checking",
		Type:     account.TypeBank,
		Balance:  decimal.RequireFromString("1000.005"),
		Currency: "usd",
		Active:   true,
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: valid},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *account.Account) error {
						a.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "MissingName",
			args:    args{params: account.CreateParams{Type: account.TypeCash, Currency: "USD"}},
			wantErr: true,
			wantIs:  account.ErrNameRequired,
		},
		{
			name:    "UnknownType",
			args:    args{params: account.CreateParams{Name: "X", Type: "piggy_bank", Currency: "USD"}},
			wantErr: true,
			wantIs:  account.ErrInvalidType,
		},
		{
			name:    "UnknownCurrency",
			args:    args{params: account.CreateParams{Name: "X", Type: account.TypeCash, Currency: "ZZZ"}},
			wantErr: true,
			wantIs:  account.ErrInvalidCurrency,
		},
		{
			name: "NegativeSeed",
			args: args{params: account.CreateParams{
				Name: "Card", Type: account.TypeCreditCard, Currency: "USD", Balance: decimal.NewFromInt(-1),
			}},
			wantErr: true,
			wantIs:  account.ErrNegativeSeed,
		},
		{
			name: "RepoError",
			args: args{params: valid},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := account.NewService(repo)
			got, err := svc.Create(context.Background(), owner, tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, owner, got.OwnerID)
			assert.Equal(t, "USD", got.Currency)
			assert.True(t, decimal.RequireFromString("1000.01").Equal(got.Balance))
		})
	}
}

func TestService_Get_OtherOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, OwnerID: uuid.New()}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, account.ErrForbidden)
}

func TestService_Update_KeepsBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	owner, id := uuid.New(), uuid.New()
	stored := &account.Account{
		ID:       id,
		OwnerID:  owner,
		Name:     "Wallet",
		Type:     account.TypeEWallet,
		Balance:  decimal.RequireFromString("42.00"),
		Currency: "EUR",
		Active:   true,
	}

	repo.EXPECT().GetAccount(gomock.Any(), id).Return(stored, nil)
	repo.EXPECT().
		UpdateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *account.Account) error {
			assert.Equal(t, "Travel wallet", a.Name)
			assert.False(t, a.Active)
			assert.True(t, decimal.RequireFromString("42.00").Equal(a.Balance))

			return nil
		})

	got, err := svc.Update(context.Background(), owner, id, account.UpdateParams{
		Name:   new("Travel wallet"),
		Active: new(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Travel wallet", got.Name)
}

func TestService_Delete(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	type testCase struct {
		name      string
		setupMock func(m *account.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, OwnerID: owner}, nil)
				m.EXPECT().DeleteAccount(gomock.Any(), id).Return(nil)
			},
		},
		{
			name: "InUse",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, OwnerID: owner}, nil)
				m.EXPECT().DeleteAccount(gomock.Any(), id).Return(account.ErrInUse)
			},
			wantErr: account.ErrInUse,
		},
		{
			name: "NotFound",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := account.NewService(repo).Delete(context.Background(), owner, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Totals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	owner := uuid.New()

	repo.EXPECT().ListAccounts(gomock.Any(), owner).Return([]*account.Account{
		{Currency: "USD", Balance: decimal.RequireFromString("100.50"), Active: true},
		{Currency: "USD", Balance: decimal.RequireFromString("-20.25"), Active: true},
		{Currency: "USD", Balance: decimal.RequireFromString("999.00"), Active: false},
		{Currency: "EUR", Balance: decimal.RequireFromString("10.00"), Active: true},
	}, nil)

	totals, err := account.NewService(repo).Totals(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "EUR", totals[0].Currency)
	assert.Equal(t, 1, totals[0].Accounts)
	assert.Equal(t, "USD", totals[1].Currency)
	assert.Equal(t, 2, totals[1].Accounts)
	assert.True(t, decimal.RequireFromString("80.25").Equal(totals[1].Balance))
}
