// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is a domain-specific error returned when an account is not found.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// Implementations must enforce uniqueness of Email and Phone and report a violation
// as domainerrors.ErrAccountAlreadyExists.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ExistsByContact reports whether any account uses the email or the phone.
	ExistsByContact(ctx context.Context, email, phone string) (bool, error)

	// Create persists a new account.
	Create(ctx context.Context, account *entity.Account) error

	// SetVerified updates the verified flag of an account.
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error

	// Delete removes an account. Deleting a missing account is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
