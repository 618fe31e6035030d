package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/money"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateItemInput is the payload for registering a stock item.
type CreateItemInput struct {
	Name         string
	Category     string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	Unit         enums.StockUnit
	CostPerUnit  decimal.Decimal
	Supplier     string
	ExpiryDate   *time.Time
}

// UpdateItemInput carries optional field updates.
type UpdateItemInput struct {
	Name         *string
	Category     *string
	MinimumStock *decimal.Decimal
	Unit         *enums.StockUnit
	CostPerUnit  *decimal.Decimal
	Supplier     *string
	ExpiryDate   *time.Time
}

// Service manages the stock catalog and manual movements.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, limit, offset int) ([]models.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Restock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note string) (*models.InventoryItem, error)
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	ExpiringWithin(ctx context.Context, window time.Duration) ([]models.InventoryItem, error)
}

type service struct {
	repo   Repository
	tx     TxRunner
	audit  audit.Recorder
	logger *logger.Logger
}

// NewService builds the inventory service.
func NewService(repo Repository, tx TxRunner, recorder audit.Recorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, tx: tx, audit: recorder, logger: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock unit %q", input.Unit))
	}
	if input.CurrentStock.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "current_stock cannot be negative")
	}
	if input.MinimumStock.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum_stock cannot be negative")
	}
	if err := money.ValidateAmount(input.CostPerUnit, "cost_per_unit"); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		Name:         input.Name,
		Category:     input.Category,
		CurrentStock: input.CurrentStock,
		MinimumStock: input.MinimumStock,
		Unit:         input.Unit,
		CostPerUnit:  input.CostPerUnit,
		Supplier:     input.Supplier,
		ExpiryDate:   input.ExpiryDate,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.InventoryItem, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		item.Name = *input.Name
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.MinimumStock != nil {
		if input.MinimumStock.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum_stock cannot be negative")
		}
		item.MinimumStock = *input.MinimumStock
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock unit %q", *input.Unit))
		}
		item.Unit = *input.Unit
	}
	if input.CostPerUnit != nil {
		if err := money.ValidateAmount(*input.CostPerUnit, "cost_per_unit"); err != nil {
			return nil, err
		}
		item.CostPerUnit = *input.CostPerUnit
	}
	if input.Supplier != nil {
		item.Supplier = *input.Supplier
	}
	if input.ExpiryDate != nil {
		item.ExpiryDate = input.ExpiryDate
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("updating inventory item: %w", err)
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Restock adds quantity to an item inside a transaction and records the
// movement in the audit log.
func (s *service) Restock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note string) (*models.InventoryItem, error) {
	if !quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		previous := item.CurrentStock
		item.CurrentStock = previous.Add(quantity)
		if err := repo.SetStock(ctx, item.ID, *item); err != nil {
			return fmt.Errorf("updating stock: %w", err)
		}

		details := map[string]any{
			"previous_stock": previous.String(),
			"new_stock":      item.CurrentStock.String(),
			"delta":          quantity.String(),
			"unit":           item.Unit.String(),
			"reason":         note,
		}
		if err := s.audit.Record(ctx, tx, enums.AuditActionStockRestock, models.InventoryItem{}.TableName(), item.ID, details); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListBelowMinimum(ctx)
}

func (s *service) ExpiringWithin(ctx context.Context, window time.Duration) ([]models.InventoryItem, error) {
	return s.repo.ListExpiringBefore(ctx, time.Now().UTC().Add(window))
}
