package service

import (
	"context"
	"time"
)

// EventType names a committed state change.
type EventType string

const (
	EventAccountRegistered   EventType = "account.registered"
	EventRoleProfileApproved EventType = "role_profile.approved"
	EventRoleProfileRejected EventType = "role_profile.rejected"
	EventOrderCreated        EventType = "order.created"
	EventOrderStatusChanged  EventType = "order.status_changed"
	EventOrderAgentAssigned  EventType = "order.agent_assigned"
)

// StateChangeEvent is published after a state change has been committed,
// for read-only consumers such as notification or UI layers.
type StateChangeEvent struct {
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
	Type       EventType         `json:"type"`
	EntityID   string            `json:"entity_id"`
	AccountID  string            `json:"account_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// Publish sends a state change event.
	Publish(ctx context.Context, event *StateChangeEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
