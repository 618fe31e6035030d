package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// Order is an open or settled customer order.
type Order struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber string            `gorm:"uniqueIndex;not null" json:"order_number"`
	TableID     *uuid.UUID        `gorm:"type:uuid;index" json:"table_id,omitempty"`
	Status      enums.OrderStatus `gorm:"not null;index" json:"status"`
	Type        enums.OrderType   `gorm:"not null" json:"type"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Notes        string `json:"notes,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
