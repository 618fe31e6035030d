package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable dish or drink.
type MenuItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null;index" json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `gorm:"not null;index" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `gorm:"not null;default:true" json:"available"`

	Ingredients []MenuItemIngredient `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuItemIngredient maps a menu item to the stock it consumes per unit sold.
type MenuItemIngredient struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MenuItemID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	Quantity        decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MenuItemIngredient) TableName() string {
	return "menu_item_ingredients"
}
