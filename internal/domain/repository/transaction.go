package repository

import (
	"context"

	"marketplace/internal/errors"
)

// ErrTxConflict is returned by Execute when the store aborted the transaction because of a
// concurrent writer (serialization failure or deadlock). The whole unit may be retried.
var ErrTxConflict = errors.New("transaction aborted by a concurrent writer")

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back. Otherwise, it's committed.
	// All repository operations within the function will use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides a way to get repository instances that are bound to a specific transaction.
// This ensures all repository operations within a transaction use the same database connection.
type RepositoryFactory interface {
	AccountRepo() AccountRepository
	RoleProfileRepo() RoleProfileRepository
	CatalogRepo() CatalogRepository
	CartRepo() CartRepository
	OrderRepo() OrderRepository
}
