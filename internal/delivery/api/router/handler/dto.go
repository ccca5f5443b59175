package handler

import (
	"time"

	"marketplace/internal/domain/entity"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
)

// AccountResponse is the public view of an account. The password hash is never exposed.
type AccountResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Phone     string               `json:"phone"`
	Role      entity.Role          `json:"role"`
	Verified  bool                 `json:"verified"`
	Status    entity.AccountStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// ArtifactResponse describes a stored registration document.
type ArtifactResponse struct {
	Key         string              `json:"key"`
	Kind        entity.ArtifactKind `json:"kind"`
	Size        int64               `json:"size"`
	ContentType string              `json:"content_type"`
}

// PartnerResponse holds partner-specific profile fields.
type PartnerResponse struct {
	BusinessName string `json:"business_name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
}

// DeliveryAgentResponse holds delivery-agent-specific profile fields.
type DeliveryAgentResponse struct {
	VehicleType  string     `json:"vehicle_type"`
	LicensePlate string     `json:"license_plate,omitempty"`
	PartnerID    *uuid.UUID `json:"partner_id,omitempty"`
}

// RoleProfileResponse is the public view of a role profile.
type RoleProfileResponse struct {
	AccountID       uuid.UUID              `json:"account_id"`
	Role            entity.Role            `json:"role"`
	Approval        entity.ApprovalStatus  `json:"approval"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	Artifacts       []ArtifactResponse     `json:"artifacts"`
	Partner         *PartnerResponse       `json:"partner,omitempty"`
	DeliveryAgent   *DeliveryAgentResponse `json:"delivery_agent,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int64                `json:"expires_in"`
	Account     *AccountResponse     `json:"account"`
	RoleProfile *RoleProfileResponse `json:"role_profile,omitempty"`
}

// CartLineResponse is one line of a cart.
type CartLineResponse struct {
	CatalogItemID uuid.UUID `json:"catalog_item_id"`
	Name          string    `json:"name"`
	Quantity      int64     `json:"quantity"`
	UnitPrice     int64     `json:"unit_price"`
	Amount        int64     `json:"amount"`
}

// CartResponse is a cart with its derived total.
type CartResponse struct {
	AccountID uuid.UUID          `json:"account_id"`
	Lines     []CartLineResponse `json:"lines"`
	Total     int64              `json:"total"`
}

// OrderLineResponse is one frozen line of an order.
type OrderLineResponse struct {
	CatalogItemID uuid.UUID `json:"catalog_item_id"`
	Name          string    `json:"name"`
	UnitPrice     int64     `json:"unit_price"`
	Quantity      int64     `json:"quantity"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID              uuid.UUID            `json:"id"`
	AccountID       uuid.UUID            `json:"account_id"`
	Lines           []OrderLineResponse  `json:"lines"`
	Subtotal        int64                `json:"subtotal"`
	DeliveryFee     int64                `json:"delivery_fee"`
	Total           int64                `json:"total"`
	Status          entity.OrderStatus   `json:"status"`
	AssignedAgentID *uuid.UUID           `json:"assigned_agent_id,omitempty"`
	DeliveryAddress string               `json:"delivery_address"`
	Phone           string               `json:"phone"`
	PaymentMethod   entity.PaymentMethod `json:"payment_method"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func newAccountResponse(a *entity.Account) *AccountResponse {
	if a == nil {
		return nil
	}

	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Role:      a.Role,
		Verified:  a.Verified,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

func newRoleProfileResponse(p *entity.RoleProfile) *RoleProfileResponse {
	if p == nil {
		return nil
	}

	resp := &RoleProfileResponse{
		AccountID:       p.AccountID,
		Role:            p.Role,
		Approval:        p.Approval,
		RejectionReason: p.RejectionReason,
		Artifacts:       make([]ArtifactResponse, 0, len(p.Artifacts)),
	}
	for _, ref := range p.Artifacts {
		resp.Artifacts = append(resp.Artifacts, ArtifactResponse{
			Key:         ref.Key,
			Kind:        ref.Kind,
			Size:        ref.Size,
			ContentType: ref.ContentType,
		})
	}

	// Bank details stay private.
	if partner := p.Partner(); partner != nil {
		resp.Partner = &PartnerResponse{
			BusinessName: partner.BusinessName,
			Description:  partner.Description,
			Category:     partner.Category,
		}
	}
	if agent := p.DeliveryAgent(); agent != nil {
		resp.DeliveryAgent = &DeliveryAgentResponse{
			VehicleType:  agent.VehicleType,
			LicensePlate: agent.LicensePlate,
			PartnerID:    agent.PartnerID,
		}
	}

	return resp
}

func newCartResponse(view *usecase.CartView) *CartResponse {
	resp := &CartResponse{
		AccountID: view.Cart.AccountID,
		Lines:     make([]CartLineResponse, 0, len(view.Cart.Lines)),
		Total:     view.Total,
	}
	for _, line := range view.Cart.Lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			CatalogItemID: line.CatalogItemID,
			Name:          line.Name,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			Amount:        line.Amount(),
		})
	}

	return resp
}

func newOrderResponse(o *entity.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:              o.ID,
		AccountID:       o.AccountID,
		Lines:           make([]OrderLineResponse, 0, len(o.Lines)),
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		Total:           o.Total,
		Status:          o.Status,
		AssignedAgentID: o.AssignedAgentID,
		DeliveryAddress: o.DeliveryAddress,
		Phone:           o.Phone,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, line := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			CatalogItemID: line.CatalogItemID,
			Name:          line.Name,
			UnitPrice:     line.UnitPrice,
			Quantity:      line.Quantity,
		})
	}

	return resp
}
