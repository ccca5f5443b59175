package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrCatalogItemNotFound is returned when a catalog item is not found.
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	// ErrStockExhausted is returned when a conditional stock decrement matched no row.
	ErrStockExhausted = errors.New("stock exhausted")
)

// CatalogRepository is the read/stock side of the catalog collaborator.
type CatalogRepository interface {
	// FindByID retrieves a catalog item by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error)

	// DecrementStock takes qty units from a stock-tracked item only if at least qty remain.
	// It returns ErrStockExhausted when the condition fails, so concurrent writers re-validate on write.
	// Items that do not track stock are left untouched.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error
}
