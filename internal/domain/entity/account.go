// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents whether an account may act in the system.
type AccountStatus string

const (
	// AccountStatusActive is the default status of a registered account.
	AccountStatusActive AccountStatus = "active"
	// AccountStatusSuspended blocks the account from logging in.
	AccountStatusSuspended AccountStatus = "suspended"
)

// Account is the identity record shared by every participant role.
type Account struct {
	ID           uuid.UUID     // The Global Unique Identifier for the account.
	Name         string        // Display or legal name.
	Email        string        // Contact identifier, unique across accounts.
	Phone        string        // Contact identifier, unique across accounts.
	PasswordHash string        // bcrypt hash of the account password.
	Role         Role          // The participant role this account acts as.
	Verified     bool          // Set once an admin approves the account's role profile.
	Status       AccountStatus // Active or suspended.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account is allowed to act.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	AccountID uuid.UUID
	Role      Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
