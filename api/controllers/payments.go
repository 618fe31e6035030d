package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/payments"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// PaymentsController settles orders over HTTP.
type PaymentsController struct {
	service payments.Service
	logger  *logger.Logger
}

func NewPaymentsController(service payments.Service, logg *logger.Logger) *PaymentsController {
	return &PaymentsController{service: service, logger: logg}
}

type payRequest struct {
	OrderID  uuid.UUID       `json:"order_id" validate:"required"`
	Method   string          `json:"method" validate:"required"`
	Received decimal.Decimal `json:"received"`
}

func (c *PaymentsController) Pay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req payRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	method, err := enums.ParsePaymentMethod(req.Method)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
		return
	}

	ctx = c.logger.WithOrderID(ctx, req.OrderID.String())
	payment, err := c.service.Pay(ctx, payments.PayInput{
		OrderID:  req.OrderID,
		Method:   method,
		Received: req.Received,
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, payment)
}

func (c *PaymentsController) ListByOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	rows, err := c.service.ListByOrder(ctx, orderID)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}

func (c *PaymentsController) ListByRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := validators.DateRangeQuery(r)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	rows, err := c.service.ListByRange(ctx, from, to)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}
