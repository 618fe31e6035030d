package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// InventoryItem is a tracked stock item. CurrentStock never drops below zero.
type InventoryItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"not null;index" json:"name"`
	Category     string          `gorm:"index" json:"category,omitempty"`
	CurrentStock decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"current_stock"`
	MinimumStock decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"minimum_stock"`
	Unit         enums.StockUnit `gorm:"not null" json:"unit"`
	CostPerUnit  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost_per_unit"`
	Supplier     string          `json:"supplier,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
