package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/pkg/config"
	"github.com/comanda-pos/backend/pkg/db"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

func newAdjusterFixture(t *testing.T, dsn string) (*db.Client, Repository, Adjuster) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver:        config.DriverSQLite,
		DSN:           dsn,
		TxMaxWait:     time.Second,
		TxMaxDuration: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().Exec(`
		CREATE TABLE inventory_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			current_stock NUMERIC NOT NULL DEFAULT 0,
			minimum_stock NUMERIC NOT NULL DEFAULT 0,
			unit TEXT NOT NULL,
			cost_per_unit NUMERIC NOT NULL DEFAULT 0,
			supplier TEXT,
			expiry_date TIMESTAMP,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`).Error)
	require.NoError(t, client.DB().Exec(`
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_table TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			details TEXT,
			created_at TIMESTAMP
		)`).Error)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	recorder, err := audit.NewService(client.DB(), logg)
	require.NoError(t, err)
	repo, err := NewRepository(client.DB())
	require.NoError(t, err)
	adj, err := NewAdjuster(repo, recorder, logg)
	require.NoError(t, err)

	return client, repo, adj
}

func seedItem(t *testing.T, conn *gorm.DB, name, stock string) uuid.UUID {
	t.Helper()
	item := models.InventoryItem{
		Name:         name,
		CurrentStock: decimal.RequireFromString(stock),
		MinimumStock: decimal.Zero,
		Unit:         enums.StockUnitKilogram,
		CostPerUnit:  decimal.Zero,
	}
	require.NoError(t, conn.Create(&item).Error)
	return item.ID
}

func TestAdjusterConsumeDecrementsAndAudits(t *testing.T) {
	client, repo, adj := newAdjusterFixture(t, "file:adjuster_consume?mode=memory&cache=shared")
	ctx := context.Background()
	beefID := seedItem(t, client.DB(), "Beef", "2")
	orderID := uuid.New()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return adj.Consume(ctx, tx, []StockDelta{
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.2")},
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.4")},
		}, AdjustRef{OrderID: orderID, Reason: "line item added"})
	})
	require.NoError(t, err)

	item, err := repo.GetByID(ctx, beefID)
	require.NoError(t, err)
	require.True(t, item.CurrentStock.Equal(decimal.RequireFromString("1.4")),
		"got %s", item.CurrentStock)

	var logs []models.AuditLog
	require.NoError(t, client.DB().Find(&logs).Error)
	require.Len(t, logs, 1, "duplicate deltas should collapse into one movement")
	require.Equal(t, enums.AuditActionStockConsumed, logs[0].Action)
	require.Equal(t, beefID, logs[0].EntityID)
}

func TestAdjusterConsumeInsufficientRollsBack(t *testing.T) {
	client, repo, adj := newAdjusterFixture(t, "file:adjuster_insufficient?mode=memory&cache=shared")
	ctx := context.Background()
	beefID := seedItem(t, client.DB(), "Beef", "1")
	cheeseID := seedItem(t, client.DB(), "Cheese", "5")

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return adj.Consume(ctx, tx, []StockDelta{
			{InventoryItemID: cheeseID, Quantity: decimal.RequireFromString("1")},
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("1.5")},
		}, AdjustRef{Reason: "line item added"})
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Beef", details["item"])
	require.Equal(t, "1", details["available"])
	require.Equal(t, "1.5", details["required"])

	beef, err := repo.GetByID(ctx, beefID)
	require.NoError(t, err)
	require.True(t, beef.CurrentStock.Equal(decimal.NewFromInt(1)))
	cheese, err := repo.GetByID(ctx, cheeseID)
	require.NoError(t, err)
	require.True(t, cheese.CurrentStock.Equal(decimal.NewFromInt(5)),
		"no movement may survive a failed batch")

	var count int64
	require.NoError(t, client.DB().Model(&models.AuditLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAdjusterConsumeUnknownItem(t *testing.T) {
	client, _, adj := newAdjusterFixture(t, "file:adjuster_unknown?mode=memory&cache=shared")
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return adj.Consume(ctx, tx, []StockDelta{
			{InventoryItemID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		}, AdjustRef{Reason: "line item added"})
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInternal, typed.Code())
}

func TestAdjusterRestoreSkipsDeletedItems(t *testing.T) {
	client, repo, adj := newAdjusterFixture(t, "file:adjuster_restore?mode=memory&cache=shared")
	ctx := context.Background()
	beefID := seedItem(t, client.DB(), "Beef", "1")

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return adj.Restore(ctx, tx, []StockDelta{
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.5")},
			{InventoryItemID: uuid.New(), Quantity: decimal.NewFromInt(3)},
		}, AdjustRef{Reason: "order cancelled"})
	})
	require.NoError(t, err)

	beef, err := repo.GetByID(ctx, beefID)
	require.NoError(t, err)
	require.True(t, beef.CurrentStock.Equal(decimal.RequireFromString("1.5")))

	var logs []models.AuditLog
	require.NoError(t, client.DB().Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, enums.AuditActionStockRestored, logs[0].Action)
}
