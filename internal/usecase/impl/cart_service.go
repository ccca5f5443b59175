package impl

import (
	"context"
	"log/slog"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type cartService struct {
	txManager repository.TransactionManager
	cartRepo  repository.CartRepository
	logger    *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	CartRepo  repository.CartRepository
	Logger    *slog.Logger
}

// NewCartService creates the cart aggregate service.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		txManager: params.TxManager,
		cartRepo:  params.CartRepo,
		logger:    params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// AddOrUpdate puts the item in the cart at its current catalog price. An existing line
// for the same item is replaced, not incremented.
func (srv *cartService) AddOrUpdate(ctx context.Context, input *usecase.CartItemInput) (*usecase.CartView, error) {
	if input.Quantity < 1 {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "quantity must be at least 1")
	}
	if input.Quantity > entity.MaxLineQuantity {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "quantity must be at most %d", entity.MaxLineQuantity)
	}

	cart, err := srv.mutate(ctx, input.AccountID, func(tx repository.RepositoryFactory, cart *entity.Cart) error {
		item, err := tx.CatalogRepo().FindByID(ctx, input.CatalogItemID)
		if errors.Is(err, repository.ErrCatalogItemNotFound) {
			return domainerrors.ErrCatalogItemNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load catalog item")
		}

		cart.Upsert(entity.CartLine{
			CatalogItemID: item.ID,
			Name:          item.Name,
			Quantity:      input.Quantity,
			UnitPrice:     item.Price,
		})
		if _, err := cart.CheckedTotal(); err != nil {
			return errors.Wrap(domainerrors.ErrInvalidInput, "cart total is too large")
		}

		return nil
	})
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "cart_add_or_update", err)
	}

	return newCartView(cart), nil
}

// Remove drops the line for the item.
func (srv *cartService) Remove(ctx context.Context, accountID, catalogItemID uuid.UUID) (*usecase.CartView, error) {
	cart, err := srv.mutate(ctx, accountID, func(_ repository.RepositoryFactory, cart *entity.Cart) error {
		if !cart.Remove(catalogItemID) {
			return domainerrors.ErrCartLineNotFound
		}

		return nil
	})
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "cart_remove", err)
	}

	return newCartView(cart), nil
}

// Clear empties the cart.
func (srv *cartService) Clear(ctx context.Context, accountID uuid.UUID) (*usecase.CartView, error) {
	if err := srv.cartRepo.Clear(ctx, accountID); err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "cart_clear", errors.Wrap(err, "failed to clear cart"))
	}

	return newCartView(entity.NewCart(accountID)), nil
}

// Get returns the cart with its derived total.
func (srv *cartService) Get(ctx context.Context, accountID uuid.UUID) (*usecase.CartView, error) {
	cart, err := srv.cartRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "cart_get", errors.Wrap(err, "failed to load cart"))
	}

	return newCartView(cart), nil
}

// mutate loads, changes and saves the cart inside one transaction.
func (srv *cartService) mutate(ctx context.Context, accountID uuid.UUID, change func(tx repository.RepositoryFactory, cart *entity.Cart) error) (*entity.Cart, error) {
	var result *entity.Cart
	err := srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
		cart, err := tx.CartRepo().LockByAccountID(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to lock cart")
		}

		if err := change(tx, cart); err != nil {
			return err
		}

		if err := tx.CartRepo().Save(ctx, cart); err != nil {
			return errors.Wrap(err, "failed to save cart")
		}
		result = cart

		return nil
	})

	return result, err
}

func newCartView(cart *entity.Cart) *usecase.CartView {
	return &usecase.CartView{Cart: cart, Total: cart.Total()}
}
