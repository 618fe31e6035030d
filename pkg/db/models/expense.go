package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// Expense is a business cost recorded outside the order flow.
type Expense struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	Category    enums.ExpenseCategory `gorm:"not null;index" json:"category"`
	Description string                `gorm:"not null" json:"description"`
	Amount      decimal.Decimal       `gorm:"type:numeric(12,2);not null" json:"amount"`
	IncurredAt  time.Time             `gorm:"not null;index" json:"incurred_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
