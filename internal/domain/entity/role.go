// Package entity contains the core business objects of the project.
package entity

// Role represents the type of participant an account acts as.
type Role string

const (
	// RoleClient is an ordinary customer.
	RoleClient Role = "client"
	// RolePartner is a merchant partner that owns catalog items.
	RolePartner Role = "partner"
	// RoleDeliveryAgent delivers orders assigned to them.
	RoleDeliveryAgent Role = "delivery_agent"
	// RoleAdmin operates the platform. Admin accounts are never self-registered.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RolePartner, RoleDeliveryAgent, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsSelfRegistrable reports whether an account with this role may be created through registration.
func (r Role) IsSelfRegistrable() bool {
	switch r {
	case RoleClient, RolePartner, RoleDeliveryAgent:
		return true
	default:
		return false
	}
}

// NeedsProfile reports whether accounts with this role carry a RoleProfile.
func (r Role) NeedsProfile() bool {
	return r == RolePartner || r == RoleDeliveryAgent
}
