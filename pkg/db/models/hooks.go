package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Order) BeforeCreate(*gorm.DB) error          { ensureID(&m.ID); return nil }
func (m *OrderLineItem) BeforeCreate(*gorm.DB) error  { ensureID(&m.ID); return nil }
func (m *OrderItemAddon) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *MenuItem) BeforeCreate(*gorm.DB) error       { ensureID(&m.ID); return nil }
func (m *MenuItemIngredient) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
func (m *Addon) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *AddonIngredient) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *InventoryItem) BeforeCreate(*gorm.DB) error   { ensureID(&m.ID); return nil }
func (m *AuditLog) BeforeCreate(*gorm.DB) error        { ensureID(&m.ID); return nil }
func (m *DiningTable) BeforeCreate(*gorm.DB) error     { ensureID(&m.ID); return nil }
func (m *Payment) BeforeCreate(*gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *Expense) BeforeCreate(*gorm.DB) error         { ensureID(&m.ID); return nil }

// All lists every model for auto-migration, ordered so foreign keys resolve.
func All() []any {
	return []any{
		&InventoryItem{},
		&MenuItem{},
		&MenuItemIngredient{},
		&Addon{},
		&AddonIngredient{},
		&DiningTable{},
		&Order{},
		&OrderLineItem{},
		&OrderItemAddon{},
		&Payment{},
		&Expense{},
		&AuditLog{},
	}
}
