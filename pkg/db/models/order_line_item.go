package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// OrderLineItem is one menu item entry on an order. Name and UnitPrice are
// snapshots taken at add time so later menu edits do not rewrite history.
type OrderLineItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"menu_item_id"`

	Name       string               `gorm:"not null" json:"name"`
	Quantity   int                  `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Notes      *string              `json:"notes,omitempty"`
	Status     enums.LineItemStatus `gorm:"not null" json:"status"`

	Addons []OrderItemAddon `gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE" json:"addons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderLineItem) TableName() string {
	return "order_line_items"
}
