package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem is a product offered by a partner. Prices are in minor currency units.
type CatalogItem struct {
	ID        uuid.UUID
	PartnerID uuid.UUID
	Name      string
	Price     int64
	Stock     *int64 // nil means the item is not stock-tracked.
	UpdatedAt time.Time
}

// TracksStock reports whether the item has a finite stock count.
func (i *CatalogItem) TracksStock() bool {
	return i.Stock != nil
}

// HasStock reports whether qty units can be taken from the item.
func (i *CatalogItem) HasStock(qty int64) bool {
	if !i.TracksStock() {
		return true
	}

	return *i.Stock >= qty
}
