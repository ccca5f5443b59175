package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	publisher service.EventPublisher
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Publisher service.EventPublisher `optional:"true"`
	Logger    *slog.Logger
}

// NewOrderService creates the order state machine service.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SetStatus moves an order to the target status if the actor is allowed to.
// An unknown target is rejected before the order is looked up.
func (srv *orderService) SetStatus(ctx context.Context, input *usecase.SetStatusInput) (*entity.Order, error) {
	if !input.Target.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "unknown order status %q", input.Target)
	}

	var (
		order    *entity.Order
		previous entity.OrderStatus
	)
	err := srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
		var err error
		order, err = findOrder(ctx, tx.OrderRepo(), input.OrderID)
		if err != nil {
			return err
		}
		previous = order.Status

		if err := order.TransitionTo(input.Actor, input.Target, time.Now().UTC()); err != nil {
			return err
		}

		return errors.Wrap(tx.OrderRepo().UpdateStatus(ctx, order), "failed to update order status")
	})
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "order_set_status", err)
	}

	srv.log(ctx).Info("Order status changed",
		slog.String("order_id", order.ID.String()),
		slog.String("from", previous.String()),
		slog.String("to", order.Status.String()),
		slog.String("actor_role", input.Actor.Role.String()),
	)

	publishEvent(ctx, srv.publisher, srv.log(ctx), &service.StateChangeEvent{
		Type:       service.EventOrderStatusChanged,
		EntityID:   order.ID.String(),
		AccountID:  order.AccountID.String(),
		Attributes: map[string]string{"from": previous.String(), "to": order.Status.String()},
		OccurredAt: order.UpdatedAt,
	})

	return order, nil
}

// AssignAgent makes a delivery agent responsible for the order. Admin only.
func (srv *orderService) AssignAgent(ctx context.Context, input *usecase.AssignAgentInput) (*entity.Order, error) {
	var order *entity.Order
	err := srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
		var err error
		order, err = findOrder(ctx, tx.OrderRepo(), input.OrderID)
		if err != nil {
			return err
		}

		if !input.Actor.IsAdmin() {
			return errors.Wrap(domainerrors.ErrForbidden, "only admins can assign delivery agents")
		}

		agent, err := tx.AccountRepo().FindByID(ctx, input.AgentID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAgentNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load delivery agent")
		}
		if agent.Role != entity.RoleDeliveryAgent {
			return errors.Wrap(domainerrors.ErrInvalidInput, "assignee is not a delivery agent")
		}
		if order.Status.IsTerminal() {
			return errors.Wrapf(domainerrors.ErrInvalidState, "order is already %s", order.Status)
		}

		if err := order.AssignAgent(input.Actor, agent.ID, time.Now().UTC()); err != nil {
			return err
		}

		return errors.Wrap(tx.OrderRepo().UpdateStatus(ctx, order), "failed to assign delivery agent")
	})
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "order_assign_agent", err)
	}

	srv.log(ctx).Info("Delivery agent assigned",
		slog.String("order_id", order.ID.String()),
		slog.String("agent_id", input.AgentID.String()),
	)

	publishEvent(ctx, srv.publisher, srv.log(ctx), &service.StateChangeEvent{
		Type:       service.EventOrderAgentAssigned,
		EntityID:   order.ID.String(),
		AccountID:  order.AccountID.String(),
		Attributes: map[string]string{"agent_id": input.AgentID.String()},
		OccurredAt: order.UpdatedAt,
	})

	return order, nil
}

// GetOrder returns the order if the actor owns it, is assigned to it or is an admin.
func (srv *orderService) GetOrder(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*entity.Order, error) {
	order, err := findOrder(ctx, srv.orderRepo, orderID)
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "order_get", err)
	}
	if !order.CanBeViewedBy(actor) {
		// Hide the existence of orders the actor may not see.
		return nil, domainerrors.ErrOrderNotFound
	}

	return order, nil
}

func findOrder(ctx context.Context, repo repository.OrderRepository, id uuid.UUID) (*entity.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, domainerrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}

	return order, nil
}
