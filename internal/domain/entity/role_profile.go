package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the tri-state review outcome of a role profile.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid checks if the ApprovalStatus is a valid value.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// ProfileDetails is the role-specific part of a RoleProfile.
// It is implemented by *PartnerProfile and *DeliveryAgentProfile.
type ProfileDetails interface {
	ProfileRole() Role
}

// RoleProfile is the role-specific extension record attached to an Account.
// It cannot exist without its owning Account.
type RoleProfile struct {
	AccountID       uuid.UUID      // Back-reference to the owning Account.
	Role            Role           // Mirrors Details.ProfileRole().
	Approval        ApprovalStatus // Admin review outcome.
	RejectionReason string         // Optional reason recorded on rejection.
	Artifacts       []ArtifactRef  // Uploaded documents owned by this profile.
	Details         ProfileDetails // Tagged variant keyed by Role.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Partner returns the partner details, or nil if the profile is not a partner profile.
func (p *RoleProfile) Partner() *PartnerProfile {
	details, _ := p.Details.(*PartnerProfile)

	return details
}

// DeliveryAgent returns the delivery agent details, or nil if the profile is not a delivery agent profile.
func (p *RoleProfile) DeliveryAgent() *DeliveryAgentProfile {
	details, _ := p.Details.(*DeliveryAgentProfile)

	return details
}

// PartnerProfile holds data specific to the merchant partner role.
type PartnerProfile struct {
	BusinessName string // Public store name, used to associate delivery agents.
	Description  string // Description of the business.
	Category     string // Business category, e.g. "restaurant" or "grocery".
	BankAccount  string // Payout banking details.
}

// ProfileRole implements ProfileDetails.
func (*PartnerProfile) ProfileRole() Role {
	return RolePartner
}

// DeliveryAgentProfile holds data specific to the delivery agent role.
type DeliveryAgentProfile struct {
	VehicleType  string     // Vehicle descriptor, e.g. "motorbike".
	LicensePlate string     // Optional plate number.
	PartnerID    *uuid.UUID // Partner the agent works for, if any.
}

// ProfileRole implements ProfileDetails.
func (*DeliveryAgentProfile) ProfileRole() Role {
	return RoleDeliveryAgent
}
