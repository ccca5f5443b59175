package usecase

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// CartItemInput adds or updates a single cart line.
type CartItemInput struct {
	AccountID     uuid.UUID
	CatalogItemID uuid.UUID
	Quantity      int64
}

// CartView is a cart together with its derived total.
type CartView struct {
	Cart  *entity.Cart
	Total int64
}

// CartUsecase defines the per-account cart operations.
type CartUsecase interface {
	// AddOrUpdate replaces the line for the item (refreshing its price) or appends a new one.
	AddOrUpdate(ctx context.Context, input *CartItemInput) (*CartView, error)
	Remove(ctx context.Context, accountID, catalogItemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, accountID uuid.UUID) (*CartView, error)
	Get(ctx context.Context, accountID uuid.UUID) (*CartView, error)
}
