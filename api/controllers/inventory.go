package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/inventory"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/pagination"
)

// InventoryController manages the stock catalog over HTTP.
type InventoryController struct {
	service           inventory.Service
	expiryWarningDays int
	logger            *logger.Logger
}

func NewInventoryController(service inventory.Service, expiryWarningDays int, logg *logger.Logger) *InventoryController {
	return &InventoryController{service: service, expiryWarningDays: expiryWarningDays, logger: logg}
}

type createInventoryItemRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Category     string          `json:"category,omitempty" validate:"max=100"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Unit         string          `json:"unit" validate:"required"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	Supplier     string          `json:"supplier,omitempty" validate:"max=200"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

type updateInventoryItemRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category     *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	MinimumStock *decimal.Decimal `json:"minimum_stock,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Supplier     *string          `json:"supplier,omitempty" validate:"omitempty,max=200"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
}

type restockRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Note     string          `json:"note,omitempty" validate:"max=500"`
}

func (c *InventoryController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createInventoryItemRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	unit, err := enums.ParseStockUnit(req.Unit)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
		return
	}

	item, err := c.service.Create(ctx, inventory.CreateItemInput{
		Name:         req.Name,
		Category:     req.Category,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		Unit:         unit,
		CostPerUnit:  req.CostPerUnit,
		Supplier:     req.Supplier,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, item)
}

func (c *InventoryController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination.FromRequest(r)
	items, err := c.service.List(ctx, page.Limit, page.Offset)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, items)
}

func (c *InventoryController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	item, err := c.service.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *InventoryController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req updateInventoryItemRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	input := inventory.UpdateItemInput{
		Name:         req.Name,
		Category:     req.Category,
		MinimumStock: req.MinimumStock,
		CostPerUnit:  req.CostPerUnit,
		Supplier:     req.Supplier,
		ExpiryDate:   req.ExpiryDate,
	}
	if req.Unit != nil {
		unit, err := enums.ParseStockUnit(*req.Unit)
		if err != nil {
			responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
			return
		}
		input.Unit = &unit
	}

	item, err := c.service.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *InventoryController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	if err := c.service.Delete(ctx, id); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, nil)
}

func (c *InventoryController) Restock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req restockRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	ctx = c.logger.WithInventoryItemID(ctx, id.String())
	item, err := c.service.Restock(ctx, id, req.Quantity, req.Note)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

func (c *InventoryController) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := c.service.LowStock(ctx)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, items)
}

func (c *InventoryController) Expiring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	window := time.Duration(c.expiryWarningDays) * 24 * time.Hour
	items, err := c.service.ExpiringWithin(ctx, window)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, items)
}
