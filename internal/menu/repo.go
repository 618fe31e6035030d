package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/pkg/db"
	"github.com/comanda-pos/backend/pkg/db/models"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

// Repository is the menu persistence surface. The WithRecipe lookups take
// an optional transaction handle so the order flow can read recipes inside
// its stock transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.MenuItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListItems(ctx context.Context, category string, limit, offset int) ([]models.MenuItem, error)
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ReplaceItemIngredients(ctx context.Context, itemID uuid.UUID, ingredients []models.MenuItemIngredient) error

	CreateAddon(ctx context.Context, addon *models.Addon) error
	GetAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error)
	ListAddons(ctx context.Context) ([]models.Addon, error)
	UpdateAddon(ctx context.Context, addon *models.Addon) error
	DeleteAddon(ctx context.Context, id uuid.UUID) error
	ReplaceAddonIngredients(ctx context.Context, addonID uuid.UUID, ingredients []models.AddonIngredient) error

	MenuItemWithRecipe(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MenuItem, error)
	AddonsWithRecipe(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Addon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the menu repository.
func NewRepository(conn *gorm.DB) (Repository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &repository{db: conn}, nil
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return r.MenuItemWithRecipe(ctx, nil, id)
}

func (r *repository) ListItems(ctx context.Context, category string, limit, offset int) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Ingredients").
		Order("category ASC, name ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Ingredients").Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}

func (r *repository) ReplaceItemIngredients(ctx context.Context, itemID uuid.UUID, ingredients []models.MenuItemIngredient) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.MenuItemIngredient{}, "menu_item_id = ?", itemID).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].MenuItemID = itemID
	}
	return r.db.WithContext(ctx).Create(&ingredients).Error
}

func (r *repository) CreateAddon(ctx context.Context, addon *models.Addon) error {
	return r.db.WithContext(ctx).Create(addon).Error
}

func (r *repository) GetAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error) {
	var addon models.Addon
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		First(&addon, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return nil, err
	}
	return &addon, nil
}

func (r *repository) ListAddons(ctx context.Context) ([]models.Addon, error) {
	var addons []models.Addon
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Order("name ASC").
		Find(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *repository) UpdateAddon(ctx context.Context, addon *models.Addon) error {
	return r.db.WithContext(ctx).Omit("Ingredients").Save(addon).Error
}

func (r *repository) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Addon{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
	}
	return nil
}

func (r *repository) ReplaceAddonIngredients(ctx context.Context, addonID uuid.UUID, ingredients []models.AddonIngredient) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.AddonIngredient{}, "addon_id = ?", addonID).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].AddonID = addonID
	}
	return r.db.WithContext(ctx).Create(&ingredients).Error
}

func (r *repository) MenuItemWithRecipe(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.conn(tx).WithContext(ctx).
		Preload("Ingredients").
		First(&item, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) AddonsWithRecipe(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]models.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addons []models.Addon
	err := r.conn(tx).WithContext(ctx).
		Preload("Ingredients").
		Where("id IN ?", ids).
		Find(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}
