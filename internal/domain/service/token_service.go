package service

import (
	"time"

	"marketplace/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	AccountID uuid.UUID   `json:"account_id"`
	Role      entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor returns the authenticated caller described by the claims.
func (c *Claims) Actor() entity.Actor {
	return entity.Actor{AccountID: c.AccountID, Role: c.Role}
}

// TokenService defines the interface for issuing and validating access credentials.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueToken creates an access token bound to the account and its role.
	IssueToken(accountID uuid.UUID, role entity.Role) (string, error)

	// ValidateToken checks the validity of a token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenTTL returns the configured lifetime of access tokens.
	TokenTTL() time.Duration
}
