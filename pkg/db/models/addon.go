package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Addon is an optional extra a customer can attach to a line item.
type Addon struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Available bool            `gorm:"not null;default:true" json:"available"`

	Ingredients []AddonIngredient `gorm:"foreignKey:AddonID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Addon) TableName() string {
	return "addons"
}

// AddonIngredient maps an addon to the stock it consumes per unit.
type AddonIngredient struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AddonID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"addon_id"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	Quantity        decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AddonIngredient) TableName() string {
	return "addon_ingredients"
}
