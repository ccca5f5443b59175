// Package model holds the GORM persistence structs. They never leave the infra layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AccountModel mirrors the 'accounts' table. Email and phone carry unique indexes.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"type:varchar(120);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_accounts_email"`
	Phone        string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_accounts_phone"`
	PasswordHash string    `gorm:"type:varchar(72);not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Verified     bool      `gorm:"not null;default:false"`
	Status       string    `gorm:"type:varchar(20);not null;default:active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	RoleProfile *RoleProfileModel `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ArtifactRefModel is one element of the role_profiles.artifacts JSON column.
type ArtifactRefModel struct {
	Key         string `json:"key"`
	Kind        string `json:"kind"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// RoleProfileModel mirrors the 'role_profiles' table. AccountID references accounts.id.
type RoleProfileModel struct {
	AccountID       uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	Role            string                                `gorm:"type:varchar(20);not null"`
	Approval        string                                `gorm:"type:varchar(20);not null;default:pending;index"`
	RejectionReason string                                `gorm:"type:varchar(500)"`
	Artifacts       datatypes.JSONSlice[ArtifactRefModel] `gorm:"type:jsonb"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Partner       *PartnerProfileModel       `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	DeliveryAgent *DeliveryAgentProfileModel `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (RoleProfileModel) TableName() string {
	return "role_profiles"
}

// PartnerProfileModel mirrors the 'partner_profiles' table.
type PartnerProfileModel struct {
	AccountID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessName string    `gorm:"type:varchar(120);not null;index"`
	Description  string    `gorm:"type:text;not null"`
	Category     string    `gorm:"type:varchar(60);not null"`
	BankAccount  string    `gorm:"type:varchar(64);not null"`
}

// TableName explicitly sets the table name for GORM.
func (PartnerProfileModel) TableName() string {
	return "partner_profiles"
}

// DeliveryAgentProfileModel mirrors the 'delivery_agent_profiles' table.
type DeliveryAgentProfileModel struct {
	AccountID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	VehicleType  string     `gorm:"type:varchar(60);not null"`
	LicensePlate string     `gorm:"type:varchar(20)"`
	PartnerID    *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName explicitly sets the table name for GORM.
func (DeliveryAgentProfileModel) TableName() string {
	return "delivery_agent_profiles"
}
