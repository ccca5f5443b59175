package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for role profile persistence.
var (
	// ErrRoleProfileNotFound is returned when a role profile is not found.
	ErrRoleProfileNotFound = errors.New("role profile not found")
	// ErrPartnerNotFound is returned when no approved partner matches a name.
	ErrPartnerNotFound = errors.New("approved partner not found")
)

// RoleProfileRepository defines persistence for role-specific profiles.
type RoleProfileRepository interface {
	// Create persists a new role profile together with its role-specific details.
	Create(ctx context.Context, profile *entity.RoleProfile) error

	// FindByAccountID retrieves the profile owned by the account.
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.RoleProfile, error)

	// FindApprovedPartnerByName finds an approved partner profile whose business name
	// equals name, ignoring case and surrounding whitespace.
	FindApprovedPartnerByName(ctx context.Context, name string) (*entity.RoleProfile, error)

	// UpdateApproval sets the approval status and rejection reason of a profile.
	UpdateApproval(ctx context.Context, accountID uuid.UUID, status entity.ApprovalStatus, reason string) error

	// Delete removes the profile owned by the account. Deleting a missing profile is not an error.
	Delete(ctx context.Context, accountID uuid.UUID) error
}
