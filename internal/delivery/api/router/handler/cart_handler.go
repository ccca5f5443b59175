package handler

import (
	"net/http"

	"marketplace/internal/delivery/api/response"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for CartHandler, injected by Fx.
type CartHandlerParams struct {
	fx.In

	CartUC usecase.CartUsecase
}

// CartHandler serves the caller's own cart.
type CartHandler struct {
	cartUC usecase.CartUsecase
}

// NewCartHandler is the constructor for CartHandler
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{cartUC: params.CartUC}
}

// PutCartItemRequest sets the quantity of one catalog item in the cart.
type PutCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0,lte=10000"`
}

// GetCart returns the caller's cart.
func (h *CartHandler) GetCart(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	view, err := h.cartUC.Get(c.Request().Context(), actor.AccountID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// PutItem adds the item or replaces its line with the new quantity and current price.
func (h *CartHandler) PutItem(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return err
	}

	var req PutCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.cartUC.AddOrUpdate(c.Request().Context(), &usecase.CartItemInput{
		AccountID:     actor.AccountID,
		CatalogItemID: itemID,
		Quantity:      req.Quantity,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// RemoveItem drops one line from the cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return err
	}

	view, err := h.cartUC.Remove(c.Request().Context(), actor.AccountID, itemID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	view, err := h.cartUC.Clear(c.Request().Context(), actor.AccountID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}
