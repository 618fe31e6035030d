package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/comanda-pos/backend/pkg/enums"
)

// DiningTable is a physical table on the floor plan.
type DiningTable struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Number   int               `gorm:"uniqueIndex;not null" json:"number"`
	Capacity int               `gorm:"not null" json:"capacity"`
	Status   enums.TableStatus `gorm:"not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DiningTable) TableName() string {
	return "dining_tables"
}
