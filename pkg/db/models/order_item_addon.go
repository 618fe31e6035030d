package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemAddon is an addon attached to a line item. Quantity is the
// per-unit count; TotalPrice already accounts for the line item quantity.
type OrderItemAddon struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LineItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"line_item_id"`
	AddonID    uuid.UUID `gorm:"type:uuid;not null;index" json:"addon_id"`

	Name       string          `gorm:"not null" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItemAddon) TableName() string {
	return "order_item_addons"
}
