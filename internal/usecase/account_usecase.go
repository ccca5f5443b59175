// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// PartnerDetailsInput carries the partner-specific registration fields.
type PartnerDetailsInput struct {
	BusinessName string `validate:"omitempty,max=120"`
	Description  string `validate:"required,max=2000"`
	Category     string `validate:"required,max=60"`
	BankAccount  string `validate:"required,max=64"`
}

// DeliveryAgentDetailsInput carries the delivery-agent-specific registration fields.
type DeliveryAgentDetailsInput struct {
	VehicleType  string `validate:"required,max=60"`
	LicensePlate string `validate:"omitempty,max=20"`
	// PartnerName optionally associates the agent with an approved partner.
	PartnerName string `validate:"omitempty,max=120"`
}

// RegisterInput defines the data required to provision a new account.
type RegisterInput struct {
	Name     string      `validate:"required,max=120"`
	Email    string      `validate:"required,email"`
	Phone    string      `validate:"required,e164"`
	Password string      `validate:"required,min=8,max=72"`
	Role     entity.Role `validate:"required,oneof=client partner delivery_agent"`

	// Role-specific sections are checked after the common fields, per role.
	Partner       *PartnerDetailsInput       `validate:"-"`
	DeliveryAgent *DeliveryAgentDetailsInput `validate:"-"`

	ProfilePhoto      *entity.ArtifactUpload  `validate:"-"`
	IdentityDocuments []entity.ArtifactUpload `validate:"-"`
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// ReviewInput identifies the role profile an admin is reviewing.
type ReviewInput struct {
	Actor     entity.Actor
	AccountID uuid.UUID
	// Reason is only recorded on rejection.
	Reason string
}

// --- Output DTOs ---

// RegisterOutput returns the provisioned account, its profile (nil for clients) and an access token.
type RegisterOutput struct {
	Account     *entity.Account
	RoleProfile *entity.RoleProfile
	AccessToken string
}

// LoginOutput returns the generated access token after a successful login.
type LoginOutput struct {
	AccessToken string
	Account     *entity.Account
}

// AccountUsecase defines account provisioning and authentication.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	// Register creates an account, its optional role profile and uploaded artifacts as one unit.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
}

// ApprovalUsecase defines the admin review of role profiles.
type ApprovalUsecase interface {
	Approve(ctx context.Context, input *ReviewInput) (*entity.RoleProfile, error)
	Reject(ctx context.Context, input *ReviewInput) (*entity.RoleProfile, error)
}
