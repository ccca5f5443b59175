package repository

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// CartRepository persists per-account carts.
type CartRepository interface {
	// FindByAccountID returns the account's cart. A missing cart is returned as an empty cart.
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Cart, error)

	// LockByAccountID is FindByAccountID that also holds the cart lines against concurrent
	// writers until the enclosing transaction ends. A concurrent checkout that committed
	// first leaves the caller with an empty cart.
	LockByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Cart, error)

	// Save replaces the stored lines of the cart with cart.Lines.
	Save(ctx context.Context, cart *entity.Cart) error

	// Clear removes every line from the account's cart.
	Clear(ctx context.Context, accountID uuid.UUID) error
}
