package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/internal/inventory"
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

// MenuReader resolves menu items and addons together with their recipes.
type MenuReader interface {
	MenuItemWithRecipe(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MenuItem, error)
	AddonsWithRecipe(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Addon, error)
}

// TableKeeper flips dining tables between occupied and available.
type TableKeeper interface {
	Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

// Service is the order workflow: creation, line item management with
// stock consumption, totals, and lifecycle transitions.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)

	AddItem(ctx context.Context, input AddItemInput) (*models.Order, error)
	RemoveItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.Order, error)
	UpdateItemQuantity(ctx context.Context, orderID, lineItemID uuid.UUID, quantity int) (*models.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, lineItemID uuid.UUID, status enums.LineItemStatus) (*models.Order, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*models.Order, error)
	RecalculateTotals(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       TxRunner
	adjuster inventory.Adjuster
	menu     MenuReader
	tables   TableKeeper
	audit    audit.Recorder
	inflight *Inflight
	logger   *logger.Logger
	taxRate  decimal.Decimal
}

// NewService builds the order service.
func NewService(
	repo Repository,
	tx TxRunner,
	adjuster inventory.Adjuster,
	menu MenuReader,
	tables TableKeeper,
	recorder audit.Recorder,
	inflight *Inflight,
	logg *logger.Logger,
	taxRate decimal.Decimal,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if adjuster == nil {
		return nil, fmt.Errorf("stock adjuster is required")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu reader is required")
	}
	if tables == nil {
		return nil, fmt.Errorf("table keeper is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if inflight == nil {
		return nil, fmt.Errorf("inflight dedup is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		adjuster: adjuster,
		menu:     menu,
		tables:   tables,
		audit:    recorder,
		inflight: inflight,
		logger:   logg,
		taxRate:  taxRate,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", input.Type))
	}
	if input.Type == enums.OrderTypeDineIn && input.TableID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dine_in orders require a table")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.TableID != nil {
			if err := s.tables.Occupy(ctx, tx, *input.TableID); err != nil {
				return err
			}
		}

		number, err := s.nextOrderNumber(ctx, repo)
		if err != nil {
			return err
		}

		order := &models.Order{
			OrderNumber: number,
			TableID:     input.TableID,
			Status:      enums.OrderStatusPending,
			Type:        input.Type,
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			Discount:    decimal.Zero,
			DeliveryFee: decimal.Zero,
			Total:       decimal.Zero,
			Notes:       input.Notes,
		}
		if err := repo.Create(ctx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		for _, item := range input.Items {
			if err := s.addLineItemTx(ctx, tx, order, item); err != nil {
				return err
			}
		}

		if err := s.audit.Record(ctx, tx, enums.AuditActionOrderCreated, models.Order{}.TableName(), order.ID, map[string]any{
			"order_number": order.OrderNumber,
			"type":         order.Type,
			"items":        len(input.Items),
		}); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.RecalculateTotals(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	return s.repo.List(ctx, filter)
}

// AddItem adds or merges a line item. Identical concurrent requests
// collapse onto one execution through the inflight map; the stock
// consumption and the line mutation share one transaction, and the totals
// refresh runs after commit.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Order, error) {
	if input.Item.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	key := dedupKey(input.OrderID, input.Item.MenuItemID, NormalizeNotes(input.Item.Notes))
	return s.inflight.Do(key, func() (*models.Order, error) {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			order, err := s.openOrderTx(ctx, tx, input.OrderID)
			if err != nil {
				return err
			}
			return s.addLineItemTx(ctx, tx, order, input.Item)
		})
		if err != nil {
			return nil, err
		}
		return s.RecalculateTotals(ctx, input.OrderID)
	})
}

func (s *service) RemoveItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.openOrderTx(ctx, tx, orderID); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		line, err := repo.GetLineItem(ctx, orderID, lineItemID)
		if err != nil {
			return err
		}

		deltas, err := s.lineDeltasTx(ctx, tx, line, line.Quantity)
		if err != nil {
			return err
		}
		ref := inventory.AdjustRef{OrderID: orderID, Reason: "line item removed"}
		if err := s.adjuster.Restore(ctx, tx, deltas, ref); err != nil {
			return err
		}

		return repo.DeleteLineItem(ctx, lineItemID)
	})
	if err != nil {
		return nil, err
	}
	return s.RecalculateTotals(ctx, orderID)
}

// UpdateItemQuantity moves a line to a new quantity, consuming or
// restoring only the difference in stock.
func (s *service) UpdateItemQuantity(ctx context.Context, orderID, lineItemID uuid.UUID, quantity int) (*models.Order, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.openOrderTx(ctx, tx, orderID); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		line, err := repo.GetLineItem(ctx, orderID, lineItemID)
		if err != nil {
			return err
		}
		if line.Quantity == quantity {
			return nil
		}

		diff := quantity - line.Quantity
		magnitude := diff
		if magnitude < 0 {
			magnitude = -magnitude
		}
		deltas, err := s.lineDeltasTx(ctx, tx, line, magnitude)
		if err != nil {
			return err
		}

		ref := inventory.AdjustRef{OrderID: orderID, Reason: "line item quantity changed"}
		if diff > 0 {
			if err := s.adjuster.Consume(ctx, tx, deltas, ref); err != nil {
				return err
			}
		} else {
			if err := s.adjuster.Restore(ctx, tx, deltas, ref); err != nil {
				return err
			}
		}

		line.Quantity = quantity
		line.TotalPrice = money.LineTotal(line.UnitPrice, addonPerUnit(line.Addons), quantity)
		if err := repo.UpdateLineItem(ctx, line); err != nil {
			return err
		}
		return s.rescaleAddonTotals(ctx, tx, line)
	})
	if err != nil {
		return nil, err
	}
	return s.RecalculateTotals(ctx, orderID)
}

// UpdateItemStatus moves a single line through the kitchen workflow. No
// stock moves here; cancelling a line goes through RemoveItem so the
// ingredients come back.
func (s *service) UpdateItemStatus(ctx context.Context, orderID, lineItemID uuid.UUID, status enums.LineItemStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid line item status %q", status))
	}
	if status == enums.LineItemStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remove the item instead of cancelling it")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot update items on a %s order", order.Status))
		}

		line, err := repo.GetLineItem(ctx, orderID, lineItemID)
		if err != nil {
			return err
		}
		line.Status = status
		return repo.UpdateLineItem(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	if status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !canTransition(order.Status, status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
		}

		order.Status = status
		if status == enums.OrderStatusCompleted {
			now := time.Now().UTC()
			order.CompletedAt = &now
			if order.TableID != nil {
				if err := s.tables.Release(ctx, tx, *order.TableID); err != nil {
					return err
				}
				order.TableID = nil
			}
		}
		if err := repo.Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel flips the order to cancelled and returns every consumed
// ingredient to stock. Line rows stay on the order for history.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot cancel a %s order", order.Status))
		}

		var deltas []inventory.StockDelta
		var skipped error
		for i := range order.Items {
			line := &order.Items[i]
			lineDeltas, err := s.lineDeltasTx(ctx, tx, line, line.Quantity)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
					skipped = multierr.Append(skipped, fmt.Errorf("line %s: %w", line.ID, err))
					continue
				}
				return err
			}
			deltas = append(deltas, lineDeltas...)
		}
		if skipped != nil {
			s.logger.Warn(ctx, fmt.Sprintf("cancel restored partial stock: %v", skipped))
		}

		ref := inventory.AdjustRef{OrderID: orderID, Reason: "order cancelled"}
		if err := s.adjuster.Restore(ctx, tx, deltas, ref); err != nil {
			return err
		}

		now := time.Now().UTC()
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancelReason = reason

		// Free the table and drop the reference from the closed row.
		if order.TableID != nil {
			if err := s.tables.Release(ctx, tx, *order.TableID); err != nil {
				return err
			}
			order.TableID = nil
		}

		if err := repo.Update(ctx, order); err != nil {
			return err
		}

		// Line rows stay for history but flip to cancelled.
		for i := range order.Items {
			line := &order.Items[i]
			if line.Status == enums.LineItemStatusCancelled {
				continue
			}
			line.Status = enums.LineItemStatusCancelled
			if err := repo.UpdateLineItem(ctx, line); err != nil {
				return err
			}
		}

		return s.audit.Record(ctx, tx, enums.AuditActionOrderCancel, models.Order{}.TableName(), order.ID, map[string]any{
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

// RecalculateTotals recomputes the money columns from the surviving line
// items. It runs on the base connection, never inside a line mutation
// transaction, and is safe to repeat.
func (s *service) RecalculateTotals(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, line := range order.Items {
		subtotal = subtotal.Add(line.TotalPrice)
	}

	order.Subtotal = money.Round(subtotal)
	order.Tax = money.Round(subtotal.Mul(s.taxRate))
	order.Total = money.Round(order.Subtotal.Add(order.Tax).Sub(order.Discount).Add(order.DeliveryFee))

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("updating order totals: %w", err)
	}
	return order, nil
}

// addLineItemTx consumes stock for the request and then either merges it
// into an equivalent existing line or creates a new one. Stock moves
// first so a shortfall aborts before any order row changes.
func (s *service) addLineItemTx(ctx context.Context, tx *gorm.DB, order *models.Order, item ItemInput) error {
	if item.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	menuItem, err := s.menu.MenuItemWithRecipe(ctx, tx, item.MenuItemID)
	if err != nil {
		return err
	}
	if !menuItem.Available {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s is not available", menuItem.Name))
	}

	unitPrice := menuItem.Price
	if item.UnitPrice != nil {
		if err := money.ValidatePositiveAmount(*item.UnitPrice, "unit_price"); err != nil {
			return err
		}
		unitPrice = *item.UnitPrice
	}

	selections := NormalizeAddons(item.Addons)
	addons, err := s.loadAddonsTx(ctx, tx, selections)
	if err != nil {
		return err
	}

	deltas := recipeDeltas(menuItem, addons, selections, item.Quantity)
	ref := inventory.AdjustRef{OrderID: order.ID, Reason: "line item added"}
	if err := s.adjuster.Consume(ctx, tx, deltas, ref); err != nil {
		return err
	}

	notes := NormalizeNotes(item.Notes)
	signature := AddonSignature(selections)
	repo := s.repo.WithTx(tx)

	candidates, err := repo.FindMatchingLineItems(ctx, order.ID, menuItem.ID, unitPrice, notes)
	if err != nil {
		return fmt.Errorf("finding merge candidates: %w", err)
	}
	for i := range candidates {
		candidate := &candidates[i]
		if StoredAddonSignature(candidate.Addons) != signature {
			continue
		}
		candidate.Quantity += item.Quantity
		candidate.TotalPrice = money.LineTotal(candidate.UnitPrice, addonPerUnit(candidate.Addons), candidate.Quantity)
		if err := repo.UpdateLineItem(ctx, candidate); err != nil {
			return fmt.Errorf("merging line item: %w", err)
		}
		return s.rescaleAddonTotals(ctx, tx, candidate)
	}

	line := &models.OrderLineItem{
		OrderID:    order.ID,
		MenuItemID: menuItem.ID,
		Name:       menuItem.Name,
		Quantity:   item.Quantity,
		UnitPrice:  unitPrice,
		Status:     enums.LineItemStatusPending,
	}
	if notes != "" {
		line.Notes = &notes
	}

	perUnit := decimal.Zero
	for _, sel := range selections {
		addon := addons[sel.AddonID]
		lineAddonTotal := addon.Price.Mul(decimal.NewFromInt(int64(sel.Quantity * item.Quantity)))
		line.Addons = append(line.Addons, models.OrderItemAddon{
			AddonID:    addon.ID,
			Name:       addon.Name,
			Quantity:   sel.Quantity,
			UnitPrice:  addon.Price,
			TotalPrice: money.Round(lineAddonTotal),
		})
		perUnit = perUnit.Add(addon.Price.Mul(decimal.NewFromInt(int64(sel.Quantity))))
	}
	line.TotalPrice = money.LineTotal(unitPrice, perUnit, item.Quantity)

	if err := repo.CreateLineItem(ctx, line); err != nil {
		return fmt.Errorf("creating line item: %w", err)
	}
	return nil
}

// rescaleAddonTotals rewrites stored addon totals after the owning line's
// quantity changed.
func (s *service) rescaleAddonTotals(ctx context.Context, tx *gorm.DB, line *models.OrderLineItem) error {
	if len(line.Addons) == 0 {
		return nil
	}
	for i := range line.Addons {
		addon := &line.Addons[i]
		total := addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity * line.Quantity)))
		addon.TotalPrice = money.Round(total)
	}
	return s.repo.WithTx(tx).ReplaceLineItemAddons(ctx, line.ID, line.Addons)
}

// lineDeltasTx computes the stock movement for quantity units of a stored
// line, using the current recipes.
func (s *service) lineDeltasTx(ctx context.Context, tx *gorm.DB, line *models.OrderLineItem, quantity int) ([]inventory.StockDelta, error) {
	menuItem, err := s.menu.MenuItemWithRecipe(ctx, tx, line.MenuItemID)
	if err != nil {
		return nil, err
	}

	selections := make([]AddonSelection, 0, len(line.Addons))
	for _, addon := range line.Addons {
		selections = append(selections, AddonSelection{AddonID: addon.AddonID, Quantity: addon.Quantity})
	}
	addons, err := s.loadAddonsTx(ctx, tx, selections)
	if err != nil {
		return nil, err
	}
	return recipeDeltas(menuItem, addons, selections, quantity), nil
}

func (s *service) loadAddonsTx(ctx context.Context, tx *gorm.DB, selections []AddonSelection) (map[uuid.UUID]*models.Addon, error) {
	if len(selections) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.AddonID)
	}

	rows, err := s.menu.AddonsWithRecipe(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	addons := make(map[uuid.UUID]*models.Addon, len(rows))
	for i := range rows {
		addons[rows[i].ID] = &rows[i]
	}
	for _, sel := range selections {
		addon, ok := addons[sel.AddonID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("addon %s not found", sel.AddonID))
		}
		if !addon.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s is not available", addon.Name))
		}
	}
	return addons, nil
}

func (s *service) openOrderTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.WithTx(tx).GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPreparing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot modify items on a %s order", order.Status))
	}
	return order, nil
}

func (s *service) nextOrderNumber(ctx context.Context, repo Repository) (string, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := repo.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return "", fmt.Errorf("counting today's orders: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), count+1), nil
}

// recipeDeltas expands a menu item and its addon selection into the raw
// stock movement for quantity units.
func recipeDeltas(menuItem *models.MenuItem, addons map[uuid.UUID]*models.Addon, selections []AddonSelection, quantity int) []inventory.StockDelta {
	qty := decimal.NewFromInt(int64(quantity))

	var deltas []inventory.StockDelta
	for _, ing := range menuItem.Ingredients {
		deltas = append(deltas, inventory.StockDelta{
			InventoryItemID: ing.InventoryItemID,
			Quantity:        ing.Quantity.Mul(qty),
		})
	}
	for _, sel := range selections {
		addon, ok := addons[sel.AddonID]
		if !ok {
			continue
		}
		perLine := decimal.NewFromInt(int64(sel.Quantity)).Mul(qty)
		for _, ing := range addon.Ingredients {
			deltas = append(deltas, inventory.StockDelta{
				InventoryItemID: ing.InventoryItemID,
				Quantity:        ing.Quantity.Mul(perLine),
			})
		}
	}
	return deltas
}

func addonPerUnit(addons []models.OrderItemAddon) decimal.Decimal {
	perUnit := decimal.Zero
	for _, addon := range addons {
		perUnit = perUnit.Add(addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))))
	}
	return perUnit
}

func dedupKey(orderID, menuItemID uuid.UUID, notes string) string {
	return strings.Join([]string{orderID.String(), menuItemID.String(), notes}, "|")
}

func canTransition(from, to enums.OrderStatus) bool {
	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusPreparing
	case enums.OrderStatusPreparing:
		return to == enums.OrderStatusReady
	case enums.OrderStatusReady:
		return to == enums.OrderStatusServed
	case enums.OrderStatusServed:
		return to == enums.OrderStatusCompleted
	default:
		return false
	}
}
