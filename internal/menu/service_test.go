package menu

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/backend/pkg/config"
	"github.com/comanda-pos/backend/pkg/db"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

func newMenuFixture(t *testing.T, dsn string) Service {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver:        config.DriverSQLite,
		DSN:           dsn,
		TxMaxWait:     time.Second,
		TxMaxDuration: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	for _, ddl := range []string{
		`CREATE TABLE menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			price NUMERIC NOT NULL,
			image_url TEXT,
			available INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE menu_item_ingredients (
			id TEXT PRIMARY KEY,
			menu_item_id TEXT NOT NULL,
			inventory_item_id TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE addons (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC NOT NULL,
			available INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE addon_ingredients (
			id TEXT PRIMARY KEY,
			addon_id TEXT NOT NULL,
			inventory_item_id TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
	} {
		require.NoError(t, client.DB().Exec(ddl).Error)
	}

	repo, err := NewRepository(client.DB())
	require.NoError(t, err)
	svc, err := NewService(repo, client)
	require.NoError(t, err)
	return svc
}

func TestCreateItemValidation(t *testing.T) {
	svc := newMenuFixture(t, "file:menu_create_validation?mode=memory&cache=shared")
	ctx := context.Background()

	beefID := uuid.New()
	cases := []struct {
		name  string
		input ItemInput
	}{
		{"missing name", ItemInput{Category: "mains", Price: decimal.NewFromInt(5)}},
		{"missing category", ItemInput{Name: "Burger", Price: decimal.NewFromInt(5)}},
		{"zero price", ItemInput{Name: "Burger", Category: "mains"}},
		{"zero ingredient quantity", ItemInput{
			Name: "Burger", Category: "mains", Price: decimal.NewFromInt(5),
			Ingredients: []IngredientInput{{InventoryItemID: beefID}},
		}},
		{"duplicate ingredient", ItemInput{
			Name: "Burger", Category: "mains", Price: decimal.NewFromInt(5),
			Ingredients: []IngredientInput{
				{InventoryItemID: beefID, Quantity: decimal.NewFromInt(1)},
				{InventoryItemID: beefID, Quantity: decimal.NewFromInt(2)},
			},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestUpdateItemReplacesRecipe(t *testing.T) {
	svc := newMenuFixture(t, "file:menu_update_recipe?mode=memory&cache=shared")
	ctx := context.Background()

	beefID := uuid.New()
	item, err := svc.CreateItem(ctx, ItemInput{
		Name:     "Burger",
		Category: "mains",
		Price:    decimal.RequireFromString("5.00"),
		Ingredients: []IngredientInput{
			{InventoryItemID: beefID, Quantity: decimal.RequireFromString("0.2")},
		},
	})
	require.NoError(t, err)

	chickenID := uuid.New()
	updated, err := svc.UpdateItem(ctx, item.ID, ItemInput{
		Name:     "Chicken Burger",
		Category: "mains",
		Price:    decimal.RequireFromString("4.50"),
		Ingredients: []IngredientInput{
			{InventoryItemID: chickenID, Quantity: decimal.RequireFromString("0.15")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Chicken Burger", updated.Name)

	stored, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, stored.Ingredients, 1)
	assert.Equal(t, chickenID, stored.Ingredients[0].InventoryItemID)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("4.50")))
}

func TestSetItemAvailability(t *testing.T) {
	svc := newMenuFixture(t, "file:menu_availability?mode=memory&cache=shared")
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, ItemInput{
		Name:      "Burger",
		Category:  "mains",
		Price:     decimal.RequireFromString("5.00"),
		Available: true,
	})
	require.NoError(t, err)

	updated, err := svc.SetItemAvailability(ctx, item.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Available)
}

func TestCreateAddonAllowsFreeAddon(t *testing.T) {
	svc := newMenuFixture(t, "file:menu_free_addon?mode=memory&cache=shared")
	ctx := context.Background()

	addon, err := svc.CreateAddon(ctx, AddonInput{Name: "No Salt", Available: true})
	require.NoError(t, err)
	assert.True(t, addon.Price.IsZero())

	_, err = svc.CreateAddon(ctx, AddonInput{Name: "Bad", Price: decimal.NewFromInt(-1)})
	require.Error(t, err)
}
