package entity

import (
	"time"

	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// OrderStatus is a state of the order lifecycle:
// pending -> confirmed -> preparing -> out_for_delivery -> delivered,
// with cancelled reachable from any non-terminal state.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the OrderStatus is a recognized value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further lifecycle moves are expected from this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// agentTargets are the only statuses a delivery agent may set.
var agentTargets = map[OrderStatus]bool{
	OrderStatusOutForDelivery: true,
	OrderStatusDelivered:      true,
}

// AuthorizeTransition checks whether actor may move the order to target.
// An unrecognized target is rejected before any authorization check.
func (o *Order) AuthorizeTransition(actor Actor, target OrderStatus) error {
	if !target.IsValid() {
		return errors.Wrapf(domainerrors.ErrInvalidInput, "unknown order status %q", target)
	}

	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleDeliveryAgent:
		if !o.IsAssignedTo(actor.AccountID) {
			return errors.Wrap(domainerrors.ErrForbidden, "order is not assigned to this delivery agent")
		}
		if !agentTargets[target] {
			return errors.Wrapf(domainerrors.ErrForbidden, "delivery agents cannot set status %q", target)
		}
		if o.Status.IsTerminal() {
			return errors.Wrapf(domainerrors.ErrInvalidState, "order is already %s", o.Status)
		}

		return nil
	default:
		return errors.Wrapf(domainerrors.ErrForbidden, "role %q cannot change order status", actor.Role)
	}
}

// TransitionTo moves the order to target after authorizing actor, stamping UpdatedAt.
func (o *Order) TransitionTo(actor Actor, target OrderStatus, now time.Time) error {
	if err := o.AuthorizeTransition(actor, target); err != nil {
		return err
	}
	o.Status = target
	o.UpdatedAt = now

	return nil
}

// AssignAgent sets the delivery agent responsible for the order. Only admins may assign.
func (o *Order) AssignAgent(actor Actor, agentID uuid.UUID, now time.Time) error {
	if !actor.IsAdmin() {
		return errors.Wrap(domainerrors.ErrForbidden, "only admins can assign delivery agents")
	}
	o.AssignedAgentID = &agentID
	o.UpdatedAt = now

	return nil
}
