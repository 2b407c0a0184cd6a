// Package app wires the services to the storage driver chosen in config.
package app

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	accountStore "github.com/MrJamesThe3rd/pennywise/internal/account/store"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/memory"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
)

type Services struct {
	Accounts     *account.Service
	Transactions *transaction.Service
	Importer     *importer.Service
	Export       *export.Service
}

// Open builds the services. The returned func releases the storage and is never nil.
func Open(ctx context.Context, cfg *config.Config) (*Services, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.New()

		return newServices(store, store), func() {}, nil
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, func() {}, err
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, func() {}, fmt.Errorf("migrating database: %w", err)
		}

		return newServices(accountStore.New(db), txStore.New(db)), func() { db.Close() }, nil
	}

	return nil, func() {}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func newServices(accounts account.Repository, transactions transaction.Repository) *Services {
	accountSvc := account.NewService(accounts)
	transactionSvc := transaction.NewService(transactions)

	return &Services{
		Accounts:     accountSvc,
		Transactions: transactionSvc,
		Importer:     importer.NewService(),
		Export:       export.NewService(accountSvc, transactionSvc),
	}
}
