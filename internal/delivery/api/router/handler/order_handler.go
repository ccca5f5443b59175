package handler

import (
	"net/http"

	"marketplace/internal/delivery/api/response"
	"marketplace/internal/domain/entity"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	OrderUC    usecase.OrderUsecase
}

// OrderHandler serves checkout and the order lifecycle.
type OrderHandler struct {
	checkoutUC usecase.CheckoutUsecase
	orderUC    usecase.OrderUsecase
}

// NewOrderHandler is the constructor for OrderHandler
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		checkoutUC: params.CheckoutUC,
		orderUC:    params.OrderUC,
	}
}

// CheckoutRequest carries the delivery details of a checkout.
type CheckoutRequest struct {
	DeliveryFee   int64  `json:"delivery_fee" validate:"gte=0"`
	Address       string `json:"address" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// SetStatusRequest carries the target order status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignAgentRequest names the delivery agent to assign.
type AssignAgentRequest struct {
	AgentID uuid.UUID `json:"agent_id" validate:"required"`
}

// Checkout turns the caller's cart into an order.
func (h *OrderHandler) Checkout(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.checkoutUC.Checkout(c.Request().Context(), &usecase.CheckoutInput{
		AccountID:     actor.AccountID,
		DeliveryFee:   req.DeliveryFee,
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newOrderResponse(order))
}

// GetOrder returns an order visible to the caller.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), actor, orderID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}

// SetStatus moves an order along its lifecycle.
func (h *OrderHandler) SetStatus(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req SetStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderUC.SetStatus(c.Request().Context(), &usecase.SetStatusInput{
		Actor:   actor,
		OrderID: orderID,
		Target:  entity.OrderStatus(req.Status),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}

// AssignAgent assigns a delivery agent to an order.
func (h *OrderHandler) AssignAgent(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req AssignAgentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderUC.AssignAgent(c.Request().Context(), &usecase.AssignAgentInput{
		Actor:   actor,
		OrderID: orderID,
		AgentID: req.AgentID,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}
