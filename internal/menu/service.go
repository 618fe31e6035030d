package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/pkg/db/models"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/money"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IngredientInput binds one inventory item into a recipe.
type IngredientInput struct {
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
}

// ItemInput is the payload for creating or updating a menu item.
type ItemInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	ImageURL    string
	Available   bool
	Ingredients []IngredientInput
}

// AddonInput is the payload for creating or updating an addon.
type AddonInput struct {
	Name        string
	Price       decimal.Decimal
	Available   bool
	Ingredients []IngredientInput
}

// Service manages the menu catalog.
type Service interface {
	CreateItem(ctx context.Context, input ItemInput) (*models.MenuItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListItems(ctx context.Context, category string, limit, offset int) ([]models.MenuItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.MenuItem, error)
	SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateAddon(ctx context.Context, input AddonInput) (*models.Addon, error)
	GetAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error)
	ListAddons(ctx context.Context) ([]models.Addon, error)
	UpdateAddon(ctx context.Context, id uuid.UUID, input AddonInput) (*models.Addon, error)
	DeleteAddon(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   TxRunner
}

// NewService builds the menu service.
func NewService(repo Repository, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func validateItemInput(input ItemInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Category == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if err := money.ValidatePositiveAmount(input.Price, "price"); err != nil {
		return err
	}
	return validateIngredients(input.Ingredients)
}

func validateIngredients(ingredients []IngredientInput) error {
	seen := make(map[uuid.UUID]bool, len(ingredients))
	for _, ing := range ingredients {
		if !ing.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient quantity must be positive")
		}
		if seen[ing.InventoryItemID] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate ingredient in recipe")
		}
		seen[ing.InventoryItemID] = true
	}
	return nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*models.MenuItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Available:   input.Available,
	}
	for _, ing := range input.Ingredients {
		item.Ingredients = append(item.Ingredients, models.MenuItemIngredient{
			InventoryItemID: ing.InventoryItemID,
			Quantity:        ing.Quantity,
		})
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("creating menu item: %w", err)
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *service) ListItems(ctx context.Context, category string, limit, offset int) ([]models.MenuItem, error) {
	return s.repo.ListItems(ctx, category, limit, offset)
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.MenuItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	var updated *models.MenuItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.GetItem(ctx, id)
		if err != nil {
			return err
		}

		item.Name = input.Name
		item.Description = input.Description
		item.Category = input.Category
		item.Price = input.Price
		item.ImageURL = input.ImageURL
		item.Available = input.Available
		if err := repo.UpdateItem(ctx, item); err != nil {
			return err
		}

		ingredients := make([]models.MenuItemIngredient, 0, len(input.Ingredients))
		for _, ing := range input.Ingredients {
			ingredients = append(ingredients, models.MenuItemIngredient{
				InventoryItemID: ing.InventoryItemID,
				Quantity:        ing.Quantity,
			})
		}
		if err := repo.ReplaceItemIngredients(ctx, id, ingredients); err != nil {
			return err
		}
		item.Ingredients = ingredients

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Available = available
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *service) CreateAddon(ctx context.Context, input AddonInput) (*models.Addon, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := money.ValidateAmount(input.Price, "price"); err != nil {
		return nil, err
	}
	if err := validateIngredients(input.Ingredients); err != nil {
		return nil, err
	}

	addon := &models.Addon{
		Name:      input.Name,
		Price:     input.Price,
		Available: input.Available,
	}
	for _, ing := range input.Ingredients {
		addon.Ingredients = append(addon.Ingredients, models.AddonIngredient{
			InventoryItemID: ing.InventoryItemID,
			Quantity:        ing.Quantity,
		})
	}
	if err := s.repo.CreateAddon(ctx, addon); err != nil {
		return nil, fmt.Errorf("creating addon: %w", err)
	}
	return addon, nil
}

func (s *service) GetAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error) {
	return s.repo.GetAddon(ctx, id)
}

func (s *service) ListAddons(ctx context.Context) ([]models.Addon, error) {
	return s.repo.ListAddons(ctx)
}

func (s *service) UpdateAddon(ctx context.Context, id uuid.UUID, input AddonInput) (*models.Addon, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := money.ValidateAmount(input.Price, "price"); err != nil {
		return nil, err
	}
	if err := validateIngredients(input.Ingredients); err != nil {
		return nil, err
	}

	var updated *models.Addon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		addon, err := repo.GetAddon(ctx, id)
		if err != nil {
			return err
		}

		addon.Name = input.Name
		addon.Price = input.Price
		addon.Available = input.Available
		if err := repo.UpdateAddon(ctx, addon); err != nil {
			return err
		}

		ingredients := make([]models.AddonIngredient, 0, len(input.Ingredients))
		for _, ing := range input.Ingredients {
			ingredients = append(ingredients, models.AddonIngredient{
				InventoryItemID: ing.InventoryItemID,
				Quantity:        ing.Quantity,
			})
		}
		if err := repo.ReplaceAddonIngredients(ctx, id, ingredients); err != nil {
			return err
		}
		addon.Ingredients = ingredients

		updated = addon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAddon(ctx, id)
}
