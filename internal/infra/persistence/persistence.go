// Package persistence selects the repository implementations for the configured storage driver.
package persistence

import (
	"marketplace/internal/domain/constants"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/persistence/memory"
	"marketplace/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Module provides the TransactionManager and every repository for driver.
func Module(driver string) fx.Option {
	if driver == constants.StorageDriverMemory {
		return fx.Provide(
			memory.NewStore,
			func(store *memory.Store) repository.TransactionManager { return store },
			func(store *memory.Store) repository.RepositoryFactory { return store.Repositories() },
			func(f repository.RepositoryFactory) repository.AccountRepository { return f.AccountRepo() },
			func(f repository.RepositoryFactory) repository.RoleProfileRepository { return f.RoleProfileRepo() },
			func(f repository.RepositoryFactory) repository.CatalogRepository { return f.CatalogRepo() },
			func(f repository.RepositoryFactory) repository.CartRepository { return f.CartRepo() },
			func(f repository.RepositoryFactory) repository.OrderRepository { return f.OrderRepo() },
		)
	}

	return fx.Provide(
		postgres.New,
		postgres.NewTransactionManager,
		postgres.NewAccountRepository,
		postgres.NewRoleProfileRepository,
		postgres.NewCatalogRepository,
		postgres.NewCartRepository,
		postgres.NewOrderRepository,
	)
}
