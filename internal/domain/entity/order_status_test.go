package entity

import (
	"fmt"
	"testing"
	"time"

	domainerrors "marketplace/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// expectedKind returns the error kind a transition must produce, or "" when it is allowed.
func expectedKind(role Role, assigned bool, current, target OrderStatus) domainerrors.Kind {
	if !target.IsValid() {
		return domainerrors.KindInvalidInput
	}

	switch role {
	case RoleAdmin:
		return ""
	case RoleDeliveryAgent:
		if !assigned || (target != OrderStatusOutForDelivery && target != OrderStatusDelivered) {
			return domainerrors.KindForbidden
		}
		if current.IsTerminal() {
			return domainerrors.KindInvalidState
		}

		return ""
	default:
		return domainerrors.KindForbidden
	}
}

func TestAuthorizeTransition_Table(t *testing.T) {
	targets := append([]OrderStatus{"shipped", ""}, allStatuses...)

	for _, role := range []Role{RoleClient, RolePartner, RoleDeliveryAgent, RoleAdmin} {
		for _, assigned := range []bool{false, true} {
			for _, current := range allStatuses {
				for _, target := range targets {
					name := fmt.Sprintf("%s/assigned=%t/%s->%s", role, assigned, current, target)
					t.Run(name, func(t *testing.T) {
						actor := Actor{AccountID: uuid.New(), Role: role}
						order := &Order{ID: uuid.New(), AccountID: uuid.New(), Status: current}
						if assigned {
							order.AssignedAgentID = &actor.AccountID
						} else if role == RoleDeliveryAgent {
							other := uuid.New()
							order.AssignedAgentID = &other
						}

						err := order.AuthorizeTransition(actor, target)

						want := expectedKind(role, assigned, current, target)
						if want == "" {
							assert.NoError(t, err)
						} else {
							assert.Equal(t, want, domainerrors.KindOf(err))
						}
					})
				}
			}
		}
	}
}

func TestAuthorizeTransition_OwnerCannotChangeStatus(t *testing.T) {
	owner := Actor{AccountID: uuid.New(), Role: RoleClient}
	order := &Order{ID: uuid.New(), AccountID: owner.AccountID, Status: OrderStatusPending}

	err := order.AuthorizeTransition(owner, OrderStatusCancelled)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestTransitionTo_StampsUpdatedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := &Order{ID: uuid.New(), Status: OrderStatusPending, CreatedAt: created, UpdatedAt: created}
	admin := Actor{AccountID: uuid.New(), Role: RoleAdmin}

	later := created.Add(time.Hour)
	require.NoError(t, order.TransitionTo(admin, OrderStatusConfirmed, later))

	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.Equal(t, later, order.UpdatedAt)
	assert.Equal(t, created, order.CreatedAt)
}

func TestTransitionTo_FailureLeavesOrderUntouched(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := &Order{ID: uuid.New(), Status: OrderStatusPending, UpdatedAt: created}

	err := order.TransitionTo(Actor{AccountID: uuid.New(), Role: RoleClient}, OrderStatusConfirmed, created.Add(time.Hour))

	require.Error(t, err)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, created, order.UpdatedAt)
}

func TestAssignAgent_AdminOnly(t *testing.T) {
	order := &Order{ID: uuid.New(), Status: OrderStatusConfirmed}
	agentID := uuid.New()

	err := order.AssignAgent(Actor{AccountID: uuid.New(), Role: RolePartner}, agentID, time.Now())
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	assert.Nil(t, order.AssignedAgentID)

	require.NoError(t, order.AssignAgent(Actor{AccountID: uuid.New(), Role: RoleAdmin}, agentID, time.Now()))
	assert.True(t, order.IsAssignedTo(agentID))
}

func TestCanBeViewedBy(t *testing.T) {
	ownerID := uuid.New()
	agentID := uuid.New()
	order := &Order{ID: uuid.New(), AccountID: ownerID, AssignedAgentID: &agentID}

	assert.True(t, order.CanBeViewedBy(Actor{AccountID: ownerID, Role: RoleClient}))
	assert.True(t, order.CanBeViewedBy(Actor{AccountID: agentID, Role: RoleDeliveryAgent}))
	assert.True(t, order.CanBeViewedBy(Actor{AccountID: uuid.New(), Role: RoleAdmin}))
	assert.False(t, order.CanBeViewedBy(Actor{AccountID: uuid.New(), Role: RoleClient}))
}
