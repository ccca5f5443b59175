package impl

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"

	"go.uber.org/fx"
)

type checkoutService struct {
	txManager repository.TransactionManager
	cartRepo  repository.CartRepository
	publisher service.EventPublisher
	validator *inputValidator
	logger    *slog.Logger
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	CartRepo  repository.CartRepository
	Publisher service.EventPublisher `optional:"true"`
	Logger    *slog.Logger
}

// NewCheckoutService creates the checkout transaction engine.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return &checkoutService{
		txManager: params.TxManager,
		cartRepo:  params.CartRepo,
		publisher: params.Publisher,
		validator: newInputValidator(),
		logger:    params.Logger,
	}
}

func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Checkout converts the account's cart into a pending order. Stock is decremented,
// prices are frozen and the cart is cleared in a single transaction; a failure at
// any point leaves cart, stock and orders untouched. Failed checkouts are not retried.
func (srv *checkoutService) Checkout(ctx context.Context, input *usecase.CheckoutInput) (*entity.Order, error) {
	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := srv.validator.check(input); err != nil {
		return nil, err
	}

	cart, err := srv.cartRepo.FindByAccountID(ctx, input.AccountID)
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "checkout", errors.Wrap(err, "failed to load cart"))
	}
	if cart.IsEmpty() {
		return nil, domainerrors.ErrEmptyCart
	}

	var order *entity.Order
	err = srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
		var txErr error
		order, txErr = srv.checkoutInTx(ctx, tx, input)

		return txErr
	})
	if err != nil {
		srv.log(ctx).Warn("Checkout rolled back",
			slog.String("account_id", input.AccountID.String()),
			slog.Any("error", err),
		)

		return nil, surfaceError(ctx, srv.log(ctx), "checkout", err)
	}

	srv.log(ctx).Info("Order created",
		slog.String("order_id", order.ID.String()),
		slog.String("account_id", order.AccountID.String()),
		slog.Int64("total", order.Total),
	)

	publishEvent(ctx, srv.publisher, srv.log(ctx), &service.StateChangeEvent{
		Type:      service.EventOrderCreated,
		EntityID:  order.ID.String(),
		AccountID: order.AccountID.String(),
		Attributes: map[string]string{
			"status": order.Status.String(),
			"total":  strconv.FormatInt(order.Total, 10),
		},
		OccurredAt: order.CreatedAt,
	})

	return order, nil
}

func (srv *checkoutService) checkoutInTx(ctx context.Context, tx repository.RepositoryFactory, input *usecase.CheckoutInput) (*entity.Order, error) {
	cart, err := tx.CartRepo().LockByAccountID(ctx, input.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock cart")
	}
	if cart.IsEmpty() {
		return nil, domainerrors.ErrEmptyCart
	}

	order, err := entity.NewOrderFromCart(cart, input.DeliveryFee, input.Address, input.Phone, input.PaymentMethod, time.Now().UTC())
	if errors.Is(err, entity.ErrAmountOverflow) {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "order total is too large")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build order")
	}

	catalog := tx.CatalogRepo()

	// Validate every line before the first write.
	for _, line := range cart.Lines {
		item, err := catalog.FindByID(ctx, line.CatalogItemID)
		if errors.Is(err, repository.ErrCatalogItemNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrCatalogItemNotFound, "item %q", line.Name)
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load catalog item")
		}
		if !item.HasStock(line.Quantity) {
			return nil, errors.Wrapf(domainerrors.ErrInsufficientStock, "item %q", line.Name)
		}
	}

	// Catalog rows are locked in item id order so overlapping checkouts cannot deadlock.
	decrements := slices.Clone(cart.Lines)
	slices.SortFunc(decrements, func(a, b entity.CartLine) int {
		return bytes.Compare(a.CatalogItemID[:], b.CatalogItemID[:])
	})
	for _, line := range decrements {
		err := catalog.DecrementStock(ctx, line.CatalogItemID, line.Quantity)
		if errors.Is(err, repository.ErrStockExhausted) {
			return nil, errors.Wrapf(domainerrors.ErrInsufficientStock, "item %q", line.Name)
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to decrement stock")
		}
	}

	if err := tx.OrderRepo().Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	if err := tx.CartRepo().Clear(ctx, input.AccountID); err != nil {
		return nil, errors.Wrap(err, "failed to clear cart")
	}

	return order, nil
}
