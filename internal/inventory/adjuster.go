package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// StockDelta is a positive stock magnitude against one inventory item.
// The operation (consume vs restore) decides the sign.
type StockDelta struct {
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
}

// AdjustRef ties a batch of ledger movements back to its trigger.
type AdjustRef struct {
	OrderID uuid.UUID
	Reason  string
}

// Adjuster applies stock movements inside a caller-owned transaction.
// A batch either applies in full or not at all; the surrounding
// transaction's rollback is what guarantees that.
type Adjuster interface {
	Consume(ctx context.Context, tx *gorm.DB, deltas []StockDelta, ref AdjustRef) error
	Restore(ctx context.Context, tx *gorm.DB, deltas []StockDelta, ref AdjustRef) error
}

type adjuster struct {
	repo   Repository
	audit  audit.Recorder
	logger *logger.Logger
}

// NewAdjuster builds the stock adjuster.
func NewAdjuster(repo Repository, recorder audit.Recorder, logg *logger.Logger) (Adjuster, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &adjuster{repo: repo, audit: recorder, logger: logg}, nil
}

// Consume decrements stock for every delta. It fails the whole batch when
// any referenced item is missing or would go below zero, leaving the
// caller's transaction to roll everything back.
func (a *adjuster) Consume(ctx context.Context, tx *gorm.DB, deltas []StockDelta, ref AdjustRef) error {
	merged := mergeDeltas(deltas)
	if len(merged) == 0 {
		return nil
	}

	items, err := a.loadItems(ctx, tx, merged)
	if err != nil {
		return err
	}

	for _, delta := range merged {
		item, ok := items[delta.InventoryItemID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("recipe references unknown inventory item %s", delta.InventoryItemID))
		}
		if item.CurrentStock.LessThan(delta.Quantity) {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for %s", item.Name)).
				WithDetails(map[string]any{
					"inventory_item_id": item.ID,
					"item":              item.Name,
					"available":         item.CurrentStock.String(),
					"required":          delta.Quantity.String(),
					"unit":              item.Unit.String(),
				})
		}
	}

	for _, delta := range merged {
		item := items[delta.InventoryItemID]
		if err := a.apply(ctx, tx, item, delta.Quantity.Neg(), enums.AuditActionStockConsumed, ref); err != nil {
			return err
		}
	}
	return nil
}

// Restore increments stock for every delta. Items that no longer exist are
// logged and skipped so a cancellation never fails because an ingredient
// was deleted after the order was placed.
func (a *adjuster) Restore(ctx context.Context, tx *gorm.DB, deltas []StockDelta, ref AdjustRef) error {
	merged := mergeDeltas(deltas)
	if len(merged) == 0 {
		return nil
	}

	items, err := a.loadItems(ctx, tx, merged)
	if err != nil {
		return err
	}

	for _, delta := range merged {
		item, ok := items[delta.InventoryItemID]
		if !ok {
			logCtx := a.logger.WithInventoryItemID(ctx, delta.InventoryItemID.String())
			a.logger.Warn(logCtx, "skipping stock restore for deleted inventory item")
			continue
		}
		if err := a.apply(ctx, tx, item, delta.Quantity, enums.AuditActionStockRestored, ref); err != nil {
			return err
		}
	}
	return nil
}

func (a *adjuster) loadItems(ctx context.Context, tx *gorm.DB, deltas []StockDelta) (map[uuid.UUID]*models.InventoryItem, error) {
	ids := make([]uuid.UUID, 0, len(deltas))
	for _, delta := range deltas {
		ids = append(ids, delta.InventoryItemID)
	}

	rows, err := a.repo.WithTx(tx).GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading inventory items: %w", err)
	}

	items := make(map[uuid.UUID]*models.InventoryItem, len(rows))
	for i := range rows {
		items[rows[i].ID] = &rows[i]
	}
	return items, nil
}

func (a *adjuster) apply(ctx context.Context, tx *gorm.DB, item *models.InventoryItem, signed decimal.Decimal, action enums.AuditAction, ref AdjustRef) error {
	previous := item.CurrentStock
	item.CurrentStock = previous.Add(signed)

	if err := a.repo.WithTx(tx).SetStock(ctx, item.ID, *item); err != nil {
		return fmt.Errorf("updating stock for %s: %w", item.Name, err)
	}

	details := map[string]any{
		"previous_stock": previous.String(),
		"new_stock":      item.CurrentStock.String(),
		"delta":          signed.String(),
		"unit":           item.Unit.String(),
		"reason":         ref.Reason,
	}
	if ref.OrderID != uuid.Nil {
		details["order_id"] = ref.OrderID
	}
	return a.audit.Record(ctx, tx, action, models.InventoryItem{}.TableName(), item.ID, details)
}

// mergeDeltas collapses duplicate item references into one movement each,
// dropping zero and negative magnitudes.
func mergeDeltas(deltas []StockDelta) []StockDelta {
	totals := make(map[uuid.UUID]decimal.Decimal, len(deltas))
	order := make([]uuid.UUID, 0, len(deltas))
	for _, delta := range deltas {
		if !delta.Quantity.IsPositive() {
			continue
		}
		if _, seen := totals[delta.InventoryItemID]; !seen {
			order = append(order, delta.InventoryItemID)
		}
		totals[delta.InventoryItemID] = totals[delta.InventoryItemID].Add(delta.Quantity)
	}

	merged := make([]StockDelta, 0, len(order))
	for _, id := range order {
		merged = append(merged, StockDelta{InventoryItemID: id, Quantity: totals[id]})
	}
	return merged
}
