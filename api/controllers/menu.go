package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/menu"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/pagination"
)

// MenuController manages the menu catalog over HTTP.
type MenuController struct {
	service menu.Service
	logger  *logger.Logger
}

func NewMenuController(service menu.Service, logg *logger.Logger) *MenuController {
	return &MenuController{service: service, logger: logg}
}

type ingredientRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity" validate:"required"`
}

type menuItemRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description,omitempty" validate:"max=1000"`
	Category    string              `json:"category" validate:"required,max=100"`
	Price       decimal.Decimal     `json:"price" validate:"required"`
	ImageURL    string              `json:"image_url,omitempty" validate:"omitempty,url"`
	Available   bool                `json:"available"`
	Ingredients []ingredientRequest `json:"ingredients,omitempty" validate:"dive"`
}

type addonUpsertRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Price       decimal.Decimal     `json:"price"`
	Available   bool                `json:"available"`
	Ingredients []ingredientRequest `json:"ingredients,omitempty" validate:"dive"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func toItemServiceInput(req menuItemRequest) menu.ItemInput {
	input := menu.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	}
	for _, ing := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, menu.IngredientInput{
			InventoryItemID: ing.InventoryItemID,
			Quantity:        ing.Quantity,
		})
	}
	return input
}

func toAddonServiceInput(req addonUpsertRequest) menu.AddonInput {
	input := menu.AddonInput{
		Name:      req.Name,
		Price:     req.Price,
		Available: req.Available,
	}
	for _, ing := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, menu.IngredientInput{
			InventoryItemID: ing.InventoryItemID,
			Quantity:        ing.Quantity,
		})
	}
	return input
}

func (c *MenuController) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req menuItemRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	item, err := c.service.CreateItem(ctx, toItemServiceInput(req))
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, item)
}

func (c *MenuController) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination.FromRequest(r)
	items, err := c.service.ListItems(ctx, r.URL.Query().Get("category"), page.Limit, page.Offset)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, items)
}

func (c *MenuController) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	item, err := c.service.GetItem(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *MenuController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req menuItemRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	item, err := c.service.UpdateItem(ctx, id, toItemServiceInput(req))
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *MenuController) SetItemAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req availabilityRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	item, err := c.service.SetItemAvailability(ctx, id, req.Available)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *MenuController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	if err := c.service.DeleteItem(ctx, id); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, nil)
}

func (c *MenuController) CreateAddon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addonUpsertRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	addon, err := c.service.CreateAddon(ctx, toAddonServiceInput(req))
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, addon)
}

func (c *MenuController) ListAddons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addons, err := c.service.ListAddons(ctx)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, addons)
}

func (c *MenuController) UpdateAddon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "addonID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req addonUpsertRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	addon, err := c.service.UpdateAddon(ctx, id, toAddonServiceInput(req))
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, addon)
}

func (c *MenuController) DeleteAddon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "addonID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	if err := c.service.DeleteAddon(ctx, id); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, nil)
}
