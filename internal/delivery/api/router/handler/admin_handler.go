package handler

import (
	"net/http"

	"marketplace/internal/delivery/api/response"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	ApprovalUC usecase.ApprovalUsecase
}

// AdminHandler serves the admin review of role profiles.
type AdminHandler struct {
	approvalUC usecase.ApprovalUsecase
}

// NewAdminHandler is the constructor for AdminHandler
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{approvalUC: params.ApprovalUC}
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Approve marks a role profile approved and its account verified.
func (h *AdminHandler) Approve(c echo.Context) error {
	input, err := reviewInput(c)
	if err != nil {
		return err
	}

	profile, err := h.approvalUC.Approve(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newRoleProfileResponse(profile))
}

// Reject marks a role profile rejected and records the reason.
func (h *AdminHandler) Reject(c echo.Context) error {
	input, err := reviewInput(c)
	if err != nil {
		return err
	}

	var req RejectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input.Reason = req.Reason

	profile, err := h.approvalUC.Reject(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newRoleProfileResponse(profile))
}

func reviewInput(c echo.Context) (*usecase.ReviewInput, error) {
	actor, err := actorOf(c)
	if err != nil {
		return nil, err
	}

	accountID, err := pathUUID(c, "accountId")
	if err != nil {
		return nil, err
	}

	return &usecase.ReviewInput{Actor: actor, AccountID: accountID}, nil
}
