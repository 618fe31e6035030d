package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	"github.com/comanda-pos/backend/pkg/logger"
)

// Recorder appends audit rows. Implementations must be safe to call inside
// a surrounding transaction via the tx handle.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, action enums.AuditAction, entityTable string, entityID uuid.UUID, details any) error
	List(ctx context.Context, entityTable string, entityID uuid.UUID, limit int) ([]models.AuditLog, error)
}

type service struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewService builds the audit recorder.
func NewService(db *gorm.DB, logg *logger.Logger) (Recorder, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{db: db, logger: logg}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, action enums.AuditAction, entityTable string, entityID uuid.UUID, details any) error {
	conn := s.db
	if tx != nil {
		conn = tx
	}

	var raw json.RawMessage
	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encoding audit details: %w", err)
		}
		raw = encoded
	}

	row := models.AuditLog{
		Action:      action,
		EntityTable: entityTable,
		EntityID:    entityID,
		Details:     raw,
	}
	if err := conn.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting audit row: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, entityTable string, entityID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.AuditLog
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if entityTable != "" {
		query = query.Where("entity_table = ?", entityTable)
	}
	if entityID != uuid.Nil {
		query = query.Where("entity_id = ?", entityID)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing audit rows: %w", err)
	}
	return rows, nil
}
