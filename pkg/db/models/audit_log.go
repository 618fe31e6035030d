package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/comanda-pos/backend/pkg/enums"
)

// AuditLog is an append-only record of a state change.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Action      enums.AuditAction `gorm:"not null;index" json:"action"`
	EntityTable string            `gorm:"not null;index" json:"entity_table"`
	EntityID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"entity_id"`
	Details     json.RawMessage   `gorm:"type:text" json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
