package orders

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/inventory"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

type stubRepo struct {
	createFn            func(ctx context.Context, order *models.Order) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn              func(ctx context.Context, filter ListFilter) ([]models.Order, error)
	updateFn            func(ctx context.Context, order *models.Order) error
	countSinceFn        func(ctx context.Context, since time.Time) (int64, error)
	listStaleFn         func(ctx context.Context, olderThan time.Time) ([]models.Order, error)
	findMatchingFn      func(ctx context.Context, orderID, menuItemID uuid.UUID, unitPrice decimal.Decimal, notes string) ([]models.OrderLineItem, error)
	createLineFn        func(ctx context.Context, item *models.OrderLineItem) error
	getLineFn           func(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.OrderLineItem, error)
	updateLineFn        func(ctx context.Context, item *models.OrderLineItem) error
	deleteLineFn        func(ctx context.Context, lineItemID uuid.UUID) error
	replaceLineAddonsFn func(ctx context.Context, lineItemID uuid.UUID, addons []models.OrderItemAddon) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, order)
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.getByIDFn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s *stubRepo) Update(ctx context.Context, order *models.Order) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, order)
}

func (s *stubRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	if s.countSinceFn == nil {
		return 0, nil
	}
	return s.countSinceFn(ctx, since)
}

func (s *stubRepo) ListStale(ctx context.Context, olderThan time.Time) ([]models.Order, error) {
	if s.listStaleFn == nil {
		return nil, nil
	}
	return s.listStaleFn(ctx, olderThan)
}

func (s *stubRepo) FindMatchingLineItems(ctx context.Context, orderID, menuItemID uuid.UUID, unitPrice decimal.Decimal, notes string) ([]models.OrderLineItem, error) {
	if s.findMatchingFn == nil {
		return nil, nil
	}
	return s.findMatchingFn(ctx, orderID, menuItemID, unitPrice, notes)
}

func (s *stubRepo) CreateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	if s.createLineFn == nil {
		return nil
	}
	return s.createLineFn(ctx, item)
}

func (s *stubRepo) GetLineItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.OrderLineItem, error) {
	if s.getLineFn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	return s.getLineFn(ctx, orderID, lineItemID)
}

func (s *stubRepo) UpdateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	if s.updateLineFn == nil {
		return nil
	}
	return s.updateLineFn(ctx, item)
}

func (s *stubRepo) DeleteLineItem(ctx context.Context, lineItemID uuid.UUID) error {
	if s.deleteLineFn == nil {
		return nil
	}
	return s.deleteLineFn(ctx, lineItemID)
}

func (s *stubRepo) ReplaceLineItemAddons(ctx context.Context, lineItemID uuid.UUID, addons []models.OrderItemAddon) error {
	if s.replaceLineAddonsFn == nil {
		return nil
	}
	return s.replaceLineAddonsFn(ctx, lineItemID, addons)
}

type stubTx struct {
	fn func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.fn != nil {
		return s.fn(ctx, fn)
	}
	return fn(nil)
}

type stubAdjuster struct {
	consumeFn func(ctx context.Context, tx *gorm.DB, deltas []inventory.StockDelta, ref inventory.AdjustRef) error
	restoreFn func(ctx context.Context, tx *gorm.DB, deltas []inventory.StockDelta, ref inventory.AdjustRef) error
}

func (s *stubAdjuster) Consume(ctx context.Context, tx *gorm.DB, deltas []inventory.StockDelta, ref inventory.AdjustRef) error {
	if s.consumeFn == nil {
		return nil
	}
	return s.consumeFn(ctx, tx, deltas, ref)
}

func (s *stubAdjuster) Restore(ctx context.Context, tx *gorm.DB, deltas []inventory.StockDelta, ref inventory.AdjustRef) error {
	if s.restoreFn == nil {
		return nil
	}
	return s.restoreFn(ctx, tx, deltas, ref)
}

type stubMenu struct {
	itemFn   func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MenuItem, error)
	addonsFn func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Addon, error)
}

func (s *stubMenu) MenuItemWithRecipe(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MenuItem, error) {
	if s.itemFn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return s.itemFn(ctx, tx, id)
}

func (s *stubMenu) AddonsWithRecipe(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Addon, error) {
	if s.addonsFn == nil {
		return nil, nil
	}
	return s.addonsFn(ctx, tx, ids)
}

type stubTables struct {
	occupyFn  func(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	releaseFn func(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

func (s *stubTables) Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if s.occupyFn == nil {
		return nil
	}
	return s.occupyFn(ctx, tx, id)
}

func (s *stubTables) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if s.releaseFn == nil {
		return nil
	}
	return s.releaseFn(ctx, tx, id)
}

type stubAudit struct {
	recordFn func(ctx context.Context, tx *gorm.DB, action enums.AuditAction, entityTable string, entityID uuid.UUID, details any) error
}

func (s *stubAudit) Record(ctx context.Context, tx *gorm.DB, action enums.AuditAction, entityTable string, entityID uuid.UUID, details any) error {
	if s.recordFn == nil {
		return nil
	}
	return s.recordFn(ctx, tx, action, entityTable, entityID, details)
}

func (s *stubAudit) List(ctx context.Context, entityTable string, entityID uuid.UUID, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

type serviceFixture struct {
	repo     *stubRepo
	tx       *stubTx
	adjuster *stubAdjuster
	menu     *stubMenu
	tables   *stubTables
	audit    *stubAudit
}

func newServiceFixture(t *testing.T) (*serviceFixture, Service) {
	t.Helper()
	fixture := &serviceFixture{
		repo:     &stubRepo{},
		tx:       &stubTx{},
		adjuster: &stubAdjuster{},
		menu:     &stubMenu{},
		tables:   &stubTables{},
		audit:    &stubAudit{},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		fixture.repo, fixture.tx, fixture.adjuster, fixture.menu, fixture.tables,
		fixture.audit, NewInflight(), logg, decimal.Zero,
	)
	require.NoError(t, err)
	return fixture, svc
}

func burgerMenuItem(beefID uuid.UUID) *models.MenuItem {
	return &models.MenuItem{
		ID:        uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
		Name:      "Burger",
		Price:     decimal.RequireFromString("5.00"),
		Available: true,
		Ingredients: []models.MenuItemIngredient{
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.2")},
		},
	}
}

func pendingOrder(items ...models.OrderLineItem) *models.Order {
	return &models.Order{
		ID:     uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001"),
		Status: enums.OrderStatusPending,
		Type:   enums.OrderTypeTakeout,
		Items:  items,
	}
}

func TestAddItemMergesEquivalentLine(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	beefID := uuid.New()
	menuItem := burgerMenuItem(beefID)
	existing := models.OrderLineItem{
		ID:         uuid.New(),
		MenuItemID: menuItem.ID,
		Name:       "Burger",
		Quantity:   1,
		UnitPrice:  decimal.RequireFromString("5.00"),
		TotalPrice: decimal.RequireFromString("5.00"),
		Status:     enums.LineItemStatusPending,
	}
	order := pendingOrder(existing)

	var consumed []inventory.StockDelta
	fixture.adjuster.consumeFn = func(_ context.Context, _ *gorm.DB, deltas []inventory.StockDelta, _ inventory.AdjustRef) error {
		consumed = deltas
		return nil
	}
	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		copied := *order
		copied.Items = []models.OrderLineItem{existing}
		return &copied, nil
	}
	fixture.repo.findMatchingFn = func(_ context.Context, _, _ uuid.UUID, unitPrice decimal.Decimal, notes string) ([]models.OrderLineItem, error) {
		assert.True(t, unitPrice.Equal(decimal.RequireFromString("5.00")))
		assert.Equal(t, "", notes)
		return []models.OrderLineItem{existing}, nil
	}
	var createdNew bool
	fixture.repo.createLineFn = func(context.Context, *models.OrderLineItem) error {
		createdNew = true
		return nil
	}
	fixture.repo.updateLineFn = func(_ context.Context, item *models.OrderLineItem) error {
		existing = *item
		return nil
	}

	got, err := svc.AddItem(ctx, AddItemInput{
		OrderID: order.ID,
		Item:    ItemInput{MenuItemID: menuItem.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.False(t, createdNew, "equivalent request must merge, not create")
	assert.Equal(t, 3, existing.Quantity)
	assert.True(t, existing.TotalPrice.Equal(decimal.RequireFromString("15.00")),
		"got %s", existing.TotalPrice)

	require.Len(t, consumed, 1)
	assert.Equal(t, beefID, consumed[0].InventoryItemID)
	assert.True(t, consumed[0].Quantity.Equal(decimal.RequireFromString("0.4")),
		"stock must move for the added quantity only, got %s", consumed[0].Quantity)

	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("15.00")))
}

func TestAddItemInsufficientStockLeavesOrderUntouched(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	beefID := uuid.New()
	menuItem := &models.MenuItem{
		ID:        uuid.New(),
		Name:      "Steak",
		Price:     decimal.RequireFromString("12.00"),
		Available: true,
		Ingredients: []models.MenuItemIngredient{
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.5")},
		},
	}
	order := pendingOrder()

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	fixture.adjuster.consumeFn = func(context.Context, *gorm.DB, []inventory.StockDelta, inventory.AdjustRef) error {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for Beef")
	}

	var mutated bool
	fixture.repo.createLineFn = func(context.Context, *models.OrderLineItem) error {
		mutated = true
		return nil
	}
	fixture.repo.updateLineFn = func(context.Context, *models.OrderLineItem) error {
		mutated = true
		return nil
	}

	_, err := svc.AddItem(ctx, AddItemInput{
		OrderID: order.ID,
		Item:    ItemInput{MenuItemID: menuItem.ID, Quantity: 3},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.False(t, mutated, "no line rows may change when stock is short")
}

func TestAddItemDistinctAddonsCreateNewLine(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	cheeseAddonID := uuid.New()
	menuItem := burgerMenuItem(uuid.New())
	existing := models.OrderLineItem{
		ID:         uuid.New(),
		MenuItemID: menuItem.ID,
		Quantity:   1,
		UnitPrice:  decimal.RequireFromString("5.00"),
		TotalPrice: decimal.RequireFromString("5.00"),
	}
	order := pendingOrder(existing)

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.menu.addonsFn = func(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]models.Addon, error) {
		return []models.Addon{{
			ID:        cheeseAddonID,
			Name:      "Extra Cheese",
			Price:     decimal.RequireFromString("1.00"),
			Available: true,
		}}, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	fixture.repo.findMatchingFn = func(_ context.Context, _, _ uuid.UUID, _ decimal.Decimal, _ string) ([]models.OrderLineItem, error) {
		return []models.OrderLineItem{existing}, nil
	}

	var created *models.OrderLineItem
	fixture.repo.createLineFn = func(_ context.Context, item *models.OrderLineItem) error {
		created = item
		return nil
	}
	var merged bool
	fixture.repo.updateLineFn = func(context.Context, *models.OrderLineItem) error {
		merged = true
		return nil
	}

	_, err := svc.AddItem(ctx, AddItemInput{
		OrderID: order.ID,
		Item: ItemInput{
			MenuItemID: menuItem.ID,
			Quantity:   2,
			Addons:     []AddonSelection{{AddonID: cheeseAddonID, Quantity: 1}},
		},
	})
	require.NoError(t, err)

	assert.False(t, merged, "different addon signature must not merge")
	require.NotNil(t, created)
	assert.Equal(t, 2, created.Quantity)
	// (5.00 + 1.00 per unit) * 2
	assert.True(t, created.TotalPrice.Equal(decimal.RequireFromString("12.00")),
		"got %s", created.TotalPrice)
	require.Len(t, created.Addons, 1)
	assert.True(t, created.Addons[0].TotalPrice.Equal(decimal.RequireFromString("2.00")))
}

func TestUpdateItemQuantityMovesOnlyTheDifference(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	beefID := uuid.New()
	menuItem := burgerMenuItem(beefID)
	line := models.OrderLineItem{
		ID:         uuid.New(),
		MenuItemID: menuItem.ID,
		Quantity:   2,
		UnitPrice:  decimal.RequireFromString("5.00"),
		TotalPrice: decimal.RequireFromString("10.00"),
	}
	order := pendingOrder(line)

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		copied := *order
		copied.Items = []models.OrderLineItem{line}
		return &copied, nil
	}
	fixture.repo.getLineFn = func(context.Context, uuid.UUID, uuid.UUID) (*models.OrderLineItem, error) {
		copied := line
		return &copied, nil
	}
	fixture.repo.updateLineFn = func(_ context.Context, item *models.OrderLineItem) error {
		line = *item
		return nil
	}

	var consumed []inventory.StockDelta
	var restored []inventory.StockDelta
	fixture.adjuster.consumeFn = func(_ context.Context, _ *gorm.DB, deltas []inventory.StockDelta, _ inventory.AdjustRef) error {
		consumed = deltas
		return nil
	}
	fixture.adjuster.restoreFn = func(_ context.Context, _ *gorm.DB, deltas []inventory.StockDelta, _ inventory.AdjustRef) error {
		restored = deltas
		return nil
	}

	got, err := svc.UpdateItemQuantity(ctx, order.ID, line.ID, 5)
	require.NoError(t, err)

	require.Len(t, consumed, 1)
	assert.Empty(t, restored)
	// 0.2 kg per unit, 3 extra units
	assert.True(t, consumed[0].Quantity.Equal(decimal.RequireFromString("0.6")),
		"got %s", consumed[0].Quantity)
	assert.Equal(t, 5, line.Quantity)
	assert.True(t, line.TotalPrice.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("25.00")))

	// Shrinking restores instead.
	consumed = nil
	_, err = svc.UpdateItemQuantity(ctx, order.ID, line.ID, 4)
	require.NoError(t, err)
	assert.Empty(t, consumed)
	require.Len(t, restored, 1)
	assert.True(t, restored[0].Quantity.Equal(decimal.RequireFromString("0.2")))
}

func TestCancelRestoresStockAndKeepsLines(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	beefID := uuid.New()
	menuItem := burgerMenuItem(beefID)
	tableID := uuid.New()
	line := models.OrderLineItem{
		ID:         uuid.New(),
		MenuItemID: menuItem.ID,
		Quantity:   3,
		UnitPrice:  decimal.RequireFromString("5.00"),
		TotalPrice: decimal.RequireFromString("15.00"),
	}
	order := pendingOrder(line)
	order.TableID = &tableID

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	var saved *models.Order
	fixture.repo.updateFn = func(_ context.Context, o *models.Order) error {
		saved = o
		return nil
	}

	var restored []inventory.StockDelta
	fixture.adjuster.restoreFn = func(_ context.Context, _ *gorm.DB, deltas []inventory.StockDelta, ref inventory.AdjustRef) error {
		restored = deltas
		assert.Equal(t, "order cancelled", ref.Reason)
		return nil
	}
	var releasedTable uuid.UUID
	fixture.tables.releaseFn = func(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
		releasedTable = id
		return nil
	}
	var audited bool
	fixture.audit.recordFn = func(_ context.Context, _ *gorm.DB, action enums.AuditAction, _ string, _ uuid.UUID, _ any) error {
		audited = action == enums.AuditActionOrderCancel
		return nil
	}

	_, err := svc.Cancel(ctx, order.ID, "customer left")
	require.NoError(t, err)

	require.Len(t, restored, 1)
	assert.True(t, restored[0].Quantity.Equal(decimal.RequireFromString("0.6")))
	require.NotNil(t, saved)
	assert.Equal(t, enums.OrderStatusCancelled, saved.Status)
	assert.Equal(t, "customer left", saved.CancelReason)
	assert.NotNil(t, saved.CancelledAt)
	assert.Len(t, saved.Items, 1, "cancelled orders keep their lines")
	assert.Equal(t, enums.LineItemStatusCancelled, saved.Items[0].Status)
	assert.Equal(t, tableID, releasedTable)
	assert.Nil(t, saved.TableID, "closed orders must not keep the table reference")
	assert.True(t, audited)
}

func TestUpdateItemStatusMovesLineThroughKitchen(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	line := models.OrderLineItem{
		ID:       uuid.New(),
		Quantity: 1,
		Status:   enums.LineItemStatusPending,
	}
	order := pendingOrder(line)
	order.Status = enums.OrderStatusPreparing

	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	fixture.repo.getLineFn = func(context.Context, uuid.UUID, uuid.UUID) (*models.OrderLineItem, error) {
		copied := line
		return &copied, nil
	}
	var saved *models.OrderLineItem
	fixture.repo.updateLineFn = func(_ context.Context, item *models.OrderLineItem) error {
		saved = item
		return nil
	}

	_, err := svc.UpdateItemStatus(ctx, order.ID, line.ID, enums.LineItemStatusReady)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, enums.LineItemStatusReady, saved.Status)

	_, err = svc.UpdateItemStatus(ctx, order.ID, line.ID, enums.LineItemStatusCancelled)
	require.Error(t, err, "cancelling a line must go through removal")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAddItemHonorsUnitPriceOverride(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	menuItem := burgerMenuItem(uuid.New())
	order := pendingOrder()

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	fixture.repo.findMatchingFn = func(_ context.Context, _, _ uuid.UUID, unitPrice decimal.Decimal, _ string) ([]models.OrderLineItem, error) {
		assert.True(t, unitPrice.Equal(decimal.RequireFromString("4.50")),
			"candidates must be narrowed by the override, got %s", unitPrice)
		return nil, nil
	}
	var created *models.OrderLineItem
	fixture.repo.createLineFn = func(_ context.Context, item *models.OrderLineItem) error {
		created = item
		return nil
	}

	override := decimal.RequireFromString("4.50")
	_, err := svc.AddItem(ctx, AddItemInput{
		OrderID: order.ID,
		Item:    ItemInput{MenuItemID: menuItem.ID, Quantity: 2, UnitPrice: &override},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.UnitPrice.Equal(override))
	assert.True(t, created.TotalPrice.Equal(decimal.RequireFromString("9.00")))

	bad := decimal.RequireFromString("-1")
	_, err = svc.AddItem(ctx, AddItemInput{
		OrderID: order.ID,
		Item:    ItemInput{MenuItemID: menuItem.ID, Quantity: 1, UnitPrice: &bad},
	})
	require.Error(t, err)
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	fixture, svc := newServiceFixture(t)

	order := pendingOrder()
	order.Status = enums.OrderStatusCompleted
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}

	_, err := svc.Cancel(context.Background(), order.ID, "too late")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAddItemDeduplicatesConcurrentRequests(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	menuItem := burgerMenuItem(uuid.New())
	order := pendingOrder()

	started := make(chan struct{})
	release := make(chan struct{})
	var executions int
	var mu sync.Mutex

	fixture.menu.itemFn = func(context.Context, *gorm.DB, uuid.UUID) (*models.MenuItem, error) {
		return menuItem, nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	fixture.tx.fn = func(ctx context.Context, fn func(tx *gorm.DB) error) error {
		mu.Lock()
		executions++
		first := executions == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return fn(nil)
	}

	input := AddItemInput{
		OrderID: order.ID,
		Item:    ItemInput{MenuItemID: menuItem.ID, Quantity: 1},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.AddItem(ctx, input)
		assert.NoError(t, err)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.AddItem(ctx, input)
		assert.NoError(t, err)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, executions, "identical concurrent requests must share one execution")
}

func TestRecalculateTotalsIsIdempotent(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	order := pendingOrder(
		models.OrderLineItem{TotalPrice: decimal.RequireFromString("15.00")},
		models.OrderLineItem{TotalPrice: decimal.RequireFromString("7.50")},
	)
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		copied := *order
		return &copied, nil
	}
	fixture.repo.updateFn = func(_ context.Context, o *models.Order) error {
		order.Subtotal = o.Subtotal
		order.Tax = o.Tax
		order.Total = o.Total
		return nil
	}

	first, err := svc.RecalculateTotals(ctx, order.ID)
	require.NoError(t, err)
	second, err := svc.RecalculateTotals(ctx, order.ID)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(decimal.RequireFromString("22.50")))
	assert.True(t, first.Tax.IsZero(), "tax policy is zero-rated")
	assert.True(t, first.Total.Equal(first.Subtotal))
	assert.True(t, second.Subtotal.Equal(first.Subtotal))
	assert.True(t, second.Total.Equal(first.Total))
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	order := pendingOrder()
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}

	got, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, got.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted)
	require.Error(t, err, "preparing cannot jump straight to completed")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.Error(t, err, "cancellation must go through the cancel operation")
}

func TestUpdateStatusCompletedReleasesAndClearsTable(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	tableID := uuid.New()
	order := pendingOrder()
	order.Status = enums.OrderStatusServed
	order.TableID = &tableID

	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return order, nil
	}
	var saved *models.Order
	fixture.repo.updateFn = func(_ context.Context, o *models.Order) error {
		saved = o
		return nil
	}
	var releasedTable uuid.UUID
	fixture.tables.releaseFn = func(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
		releasedTable = id
		return nil
	}

	got, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, tableID, releasedTable)
	require.NotNil(t, saved)
	assert.Nil(t, saved.TableID, "completed orders must not keep the table reference")
}

func TestCreateDineInRequiresTable(t *testing.T) {
	_, svc := newServiceFixture(t)

	_, err := svc.Create(context.Background(), CreateOrderInput{Type: enums.OrderTypeDineIn})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateOccupiesTableAndNumbersOrder(t *testing.T) {
	fixture, svc := newServiceFixture(t)
	ctx := context.Background()

	tableID := uuid.New()
	var occupied uuid.UUID
	fixture.tables.occupyFn = func(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
		occupied = id
		return nil
	}
	fixture.repo.countSinceFn = func(context.Context, time.Time) (int64, error) {
		return 41, nil
	}
	var created *models.Order
	fixture.repo.createFn = func(_ context.Context, order *models.Order) error {
		order.ID = uuid.New()
		created = order
		return nil
	}
	fixture.repo.getByIDFn = func(context.Context, uuid.UUID) (*models.Order, error) {
		return created, nil
	}

	got, err := svc.Create(ctx, CreateOrderInput{
		Type:    enums.OrderTypeDineIn,
		TableID: &tableID,
	})
	require.NoError(t, err)

	assert.Equal(t, tableID, occupied)
	assert.Equal(t, enums.OrderStatusPending, got.Status)
	assert.Regexp(t, `^ORD-\d{8}-0042$`, got.OrderNumber)
}
