package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the opaque payment option chosen at checkout.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

// OrderLine is a line item frozen at checkout time.
type OrderLine struct {
	CatalogItemID uuid.UUID
	Name          string
	UnitPrice     int64
	Quantity      int64
}

// Order is the immutable snapshot of a checked-out cart plus its mutable delivery status.
// Only Status, AssignedAgentID and UpdatedAt change after creation.
type Order struct {
	ID              uuid.UUID
	AccountID       uuid.UUID // The customer who placed the order.
	Lines           []OrderLine
	Subtotal        int64
	DeliveryFee     int64
	Total           int64
	Status          OrderStatus
	AssignedAgentID *uuid.UUID
	DeliveryAddress string
	Phone           string
	PaymentMethod   PaymentMethod
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrderFromCart freezes the cart lines into a pending order.
// The subtotal uses the unit prices captured in the cart, not current catalog prices.
// It fails with ErrAmountOverflow when the subtotal or total does not fit in int64.
func NewOrderFromCart(cart *Cart, deliveryFee int64, address, phone string, payment PaymentMethod, now time.Time) (*Order, error) {
	subtotal, err := cart.CheckedTotal()
	if err != nil {
		return nil, err
	}
	total, err := addAmount(subtotal, deliveryFee)
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, OrderLine{
			CatalogItemID: line.CatalogItemID,
			Name:          line.Name,
			UnitPrice:     line.UnitPrice,
			Quantity:      line.Quantity,
		})
	}

	return &Order{
		ID:              uuid.New(),
		AccountID:       cart.AccountID,
		Lines:           lines,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		Total:           total,
		Status:          OrderStatusPending,
		DeliveryAddress: address,
		Phone:           phone,
		PaymentMethod:   payment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsAssignedTo reports whether the order is assigned to the given delivery agent.
func (o *Order) IsAssignedTo(agentID uuid.UUID) bool {
	return o.AssignedAgentID != nil && *o.AssignedAgentID == agentID
}

// CanBeViewedBy reports whether the actor may read the order.
func (o *Order) CanBeViewedBy(actor Actor) bool {
	return actor.IsAdmin() || o.AccountID == actor.AccountID || o.IsAssignedTo(actor.AccountID)
}
