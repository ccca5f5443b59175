package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists orders. Line items and amounts are write-once;
// only status and agent assignment change after Create.
type OrderRepository interface {
	// Create persists a new order with its frozen line items.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order with its line items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// UpdateStatus writes the order's Status, AssignedAgentID and UpdatedAt.
	UpdateStatus(ctx context.Context, order *entity.Order) error
}
