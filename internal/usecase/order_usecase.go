package usecase

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// CheckoutInput defines the data required to turn a cart into an order.
type CheckoutInput struct {
	AccountID     uuid.UUID
	DeliveryFee   int64                `validate:"gte=0"`
	Address       string               `validate:"required,max=500"`
	Phone         string               `validate:"required,e164"`
	PaymentMethod entity.PaymentMethod `validate:"required,oneof=cash card wallet"`
}

// SetStatusInput requests an order status transition.
type SetStatusInput struct {
	Actor   entity.Actor
	OrderID uuid.UUID
	Target  entity.OrderStatus
}

// AssignAgentInput requests assigning a delivery agent to an order.
type AssignAgentInput struct {
	Actor   entity.Actor
	OrderID uuid.UUID
	AgentID uuid.UUID
}

// CheckoutUsecase converts carts into committed orders.
type CheckoutUsecase interface {
	Checkout(ctx context.Context, input *CheckoutInput) (*entity.Order, error)
}

// OrderUsecase governs the order lifecycle after checkout.
type OrderUsecase interface {
	SetStatus(ctx context.Context, input *SetStatusInput) (*entity.Order, error)
	AssignAgent(ctx context.Context, input *AssignAgentInput) (*entity.Order, error)
	GetOrder(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*entity.Order, error)
}
