package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/orders"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/pagination"
)

// OrdersController exposes the order workflow over HTTP.
type OrdersController struct {
	service orders.Service
	logger  *logger.Logger
}

func NewOrdersController(service orders.Service, logg *logger.Logger) *OrdersController {
	return &OrdersController{service: service, logger: logg}
}

type addonRequest struct {
	AddonID  uuid.UUID `json:"addon_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type orderItemRequest struct {
	MenuItemID uuid.UUID        `json:"menu_item_id" validate:"required"`
	Quantity   int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	Notes      *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
	Addons     []addonRequest   `json:"addons,omitempty" validate:"dive"`
}

type createOrderRequest struct {
	Type    string             `json:"type" validate:"required"`
	TableID *uuid.UUID         `json:"table_id,omitempty"`
	Notes   string             `json:"notes,omitempty" validate:"max=500"`
	Items   []orderItemRequest `json:"items,omitempty" validate:"dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type updateItemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func toItemInput(req orderItemRequest) orders.ItemInput {
	item := orders.ItemInput{
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Notes:      req.Notes,
	}
	for _, addon := range req.Addons {
		item.Addons = append(item.Addons, orders.AddonSelection{
			AddonID:  addon.AddonID,
			Quantity: addon.Quantity,
		})
	}
	return item
}

func (c *OrdersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	orderType, err := enums.ParseOrderType(req.Type)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type"))
		return
	}

	input := orders.CreateOrderInput{
		Type:    orderType,
		TableID: req.TableID,
		Notes:   req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, toItemInput(item))
	}

	order, err := c.service.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, order)
}

func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination.FromRequest(r)

	filter := orders.ListFilter{Limit: page.Limit, Offset: page.Offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("table_id"); raw != "" {
		tableID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(ctx, w, c.logger, pkgerrors.New(pkgerrors.CodeValidation, "invalid table_id filter"))
			return
		}
		filter.TableID = &tableID
	}

	rows, err := c.service.List(ctx, filter)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}

func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	order, err := c.service.Get(ctx, orderID)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var req orderItemRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	ctx = c.logger.WithOrderID(ctx, orderID.String())
	order, err := c.service.AddItem(ctx, orders.AddItemInput{
		OrderID: orderID,
		Item:    toItemInput(req),
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	itemID, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	order, err := c.service.RemoveItem(ctx, orderID, itemID)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	itemID, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var req updateQuantityRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	order, err := c.service.UpdateItemQuantity(ctx, orderID, itemID, req.Quantity)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	itemID, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var req updateItemStatusRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	status, err := enums.ParseLineItemStatus(req.Status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item status"))
		return
	}

	order, err := c.service.UpdateItemStatus(ctx, orderID, itemID, status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var req updateStatusRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
		return
	}

	order, err := c.service.UpdateStatus(ctx, orderID, status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var req cancelOrderRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	order, err := c.service.Cancel(ctx, orderID, req.Reason)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}
