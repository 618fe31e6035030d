package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

func newServiceFixture(t *testing.T, dsn string) (Service, Repository) {
	t.Helper()
	client, repo, _ := newAdjusterFixture(t, dsn)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	recorder, err := audit.NewService(client.DB(), logg)
	require.NoError(t, err)
	svc, err := NewService(repo, client, recorder, logg)
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newServiceFixture(t, "file:inv_svc_validation?mode=memory&cache=shared")
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateItemInput
	}{
		{"missing name", CreateItemInput{Unit: enums.StockUnitKilogram}},
		{"bad unit", CreateItemInput{Name: "Beef", Unit: "bucket"}},
		{"negative stock", CreateItemInput{
			Name: "Beef", Unit: enums.StockUnitKilogram,
			CurrentStock: decimal.NewFromInt(-1),
		}},
		{"negative cost", CreateItemInput{
			Name: "Beef", Unit: enums.StockUnitKilogram,
			CostPerUnit: decimal.NewFromInt(-2),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestServiceRestockAddsStockAndAudits(t *testing.T) {
	svc, repo := newServiceFixture(t, "file:inv_svc_restock?mode=memory&cache=shared")
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateItemInput{
		Name:         "Beef",
		CurrentStock: decimal.NewFromInt(1),
		MinimumStock: decimal.NewFromInt(2),
		Unit:         enums.StockUnitKilogram,
		CostPerUnit:  decimal.RequireFromString("9.50"),
	})
	require.NoError(t, err)

	updated, err := svc.Restock(ctx, created.ID, decimal.RequireFromString("2.5"), "weekly delivery")
	require.NoError(t, err)
	assert.True(t, updated.CurrentStock.Equal(decimal.RequireFromString("3.5")))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentStock.Equal(decimal.RequireFromString("3.5")))

	_, err = svc.Restock(ctx, created.ID, decimal.Zero, "nothing")
	require.Error(t, err)
}

func TestServiceLowStockAndExpiring(t *testing.T) {
	svc, _ := newServiceFixture(t, "file:inv_svc_lists?mode=memory&cache=shared")
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateItemInput{
		Name:         "Beef",
		CurrentStock: decimal.NewFromInt(1),
		MinimumStock: decimal.NewFromInt(2),
		Unit:         enums.StockUnitKilogram,
	})
	require.NoError(t, err)

	soon := time.Now().UTC().Add(24 * time.Hour)
	_, err = svc.Create(ctx, CreateItemInput{
		Name:         "Milk",
		CurrentStock: decimal.NewFromInt(10),
		MinimumStock: decimal.NewFromInt(1),
		Unit:         enums.StockUnitLiter,
		ExpiryDate:   &soon,
	})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Beef", low[0].Name)

	expiring, err := svc.ExpiringWithin(ctx, 3*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "Milk", expiring[0].Name)

	none, err := svc.ExpiringWithin(ctx, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServiceUpdatePartialFields(t *testing.T) {
	svc, _ := newServiceFixture(t, "file:inv_svc_update?mode=memory&cache=shared")
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateItemInput{
		Name:         "Beef",
		CurrentStock: decimal.NewFromInt(5),
		Unit:         enums.StockUnitKilogram,
	})
	require.NoError(t, err)

	newMin := decimal.NewFromInt(3)
	supplier := "Local Farm"
	updated, err := svc.Update(ctx, created.ID, UpdateItemInput{
		MinimumStock: &newMin,
		Supplier:     &supplier,
	})
	require.NoError(t, err)
	assert.Equal(t, "Beef", updated.Name, "untouched fields survive")
	assert.True(t, updated.MinimumStock.Equal(newMin))
	assert.Equal(t, "Local Farm", updated.Supplier)
}


