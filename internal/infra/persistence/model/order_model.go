package model

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItemModel mirrors the 'catalog_items' table. A NULL stock means the item is not stock-tracked.
type CatalogItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(120);not null"`
	Price     int64     `gorm:"not null;check:chk_catalog_items_price,price >= 0"`
	Stock     *int64    `gorm:"check:chk_catalog_items_stock,stock >= 0"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CatalogItemModel) TableName() string {
	return "catalog_items"
}

// CartLineModel mirrors the 'cart_lines' table, one row per (account, item).
type CartLineModel struct {
	AccountID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position      int       `gorm:"not null"`
	Name          string    `gorm:"type:varchar(120);not null"`
	Quantity      int64     `gorm:"not null"`
	UnitPrice     int64     `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// OrderModel mirrors the 'orders' table.
type OrderModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Subtotal        int64      `gorm:"not null"`
	DeliveryFee     int64      `gorm:"not null"`
	Total           int64      `gorm:"not null"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	AssignedAgentID *uuid.UUID `gorm:"type:uuid;index"`
	DeliveryAddress string     `gorm:"type:text;not null"`
	Phone           string     `gorm:"type:varchar(20);not null"`
	PaymentMethod   string     `gorm:"type:varchar(20);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel mirrors the 'order_lines' table.
type OrderLineModel struct {
	OrderID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position      int       `gorm:"primaryKey;autoIncrement:false"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;not null"`
	Name          string    `gorm:"type:varchar(120);not null"`
	UnitPrice     int64     `gorm:"not null"`
	Quantity      int64     `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// All lists every model for schema migration.
func All() []any {
	return []any{
		&AccountModel{},
		&RoleProfileModel{},
		&PartnerProfileModel{},
		&DeliveryAgentProfileModel{},
		&CatalogItemModel{},
		&CartLineModel{},
		&OrderModel{},
		&OrderLineModel{},
	}
}
