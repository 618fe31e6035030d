package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/expenses"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// ExpensesController records business costs over HTTP.
type ExpensesController struct {
	service expenses.Service
	logger  *logger.Logger
}

func NewExpensesController(service expenses.Service, logg *logger.Logger) *ExpensesController {
	return &ExpensesController{service: service, logger: logg}
}

type expenseRequest struct {
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	IncurredAt  time.Time       `json:"incurred_at" validate:"required"`
}

func (c *ExpensesController) toInput(req expenseRequest) (expenses.Input, error) {
	category, err := enums.ParseExpenseCategory(req.Category)
	if err != nil {
		return expenses.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return expenses.Input{
		Category:    category,
		Description: req.Description,
		Amount:      req.Amount,
		IncurredAt:  req.IncurredAt,
	}, nil
}

func (c *ExpensesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req expenseRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	input, err := c.toInput(req)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	expense, err := c.service.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, expense)
}

func (c *ExpensesController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := validators.DateRangeQuery(r)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}

	var category *enums.ExpenseCategory
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := enums.ParseExpenseCategory(raw)
		if err != nil {
			responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter"))
			return
		}
		category = &parsed
	}

	rows, err := c.service.ListByRange(ctx, from, to, category)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}

func (c *ExpensesController) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := validators.DateRangeQuery(r)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	totals, err := c.service.TotalsByCategory(ctx, from, to)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, totals)
}

func (c *ExpensesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "expenseID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req expenseRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	input, err := c.toInput(req)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	expense, err := c.service.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, expense)
}

func (c *ExpensesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "expenseID")
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
