package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// Payment settles an order.
type Payment struct {
	ID      uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID           `gorm:"type:uuid;not null;index" json:"order_id"`
	Method  enums.PaymentMethod `gorm:"not null" json:"method"`

	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Received decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"received"`
	Change   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"change"`

	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
