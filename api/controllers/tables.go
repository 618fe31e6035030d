package controllers

import (
	"net/http"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/api/validators"
	"github.com/comanda-pos/backend/internal/tables"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// TablesController manages the floor plan over HTTP.
type TablesController struct {
	service tables.Service
	logger  *logger.Logger
}

func NewTablesController(service tables.Service, logg *logger.Logger) *TablesController {
	return &TablesController{service: service, logger: logg}
}

type createTableRequest struct {
	Number   int `json:"number" validate:"required,gt=0"`
	Capacity int `json:"capacity" validate:"required,gt=0"`
}

type tableStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (c *TablesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createTableRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	table, err := c.service.Create(ctx, req.Number, req.Capacity)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, table)
}

func (c *TablesController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := c.service.List(ctx)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}

func (c *TablesController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "tableID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	table, err := c.service.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, table)
}

func (c *TablesController) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "tableID")
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	var req tableStatusRequest
	if err := validators.DecodeBody(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	status, err := enums.ParseTableStatus(req.Status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
		return
	}

	table, err := c.service.SetStatus(ctx, id, status)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, table)
}

func (c *TablesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.UUIDParam(r, "tableID")
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
