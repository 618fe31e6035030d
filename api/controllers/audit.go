package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/internal/audit"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/pagination"
)

// AuditController exposes the audit trail, read only.
type AuditController struct {
	recorder audit.Recorder
	logger   *logger.Logger
}

func NewAuditController(recorder audit.Recorder, logg *logger.Logger) *AuditController {
	return &AuditController{recorder: recorder, logger: logg}
}

func (c *AuditController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination.FromRequest(r)

	entityID := uuid.Nil
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(ctx, w, c.logger, pkgerrors.New(pkgerrors.CodeValidation, "invalid entity_id filter"))
			return
		}
		entityID = parsed
	}

	rows, err := c.recorder.List(ctx, r.URL.Query().Get("entity_table"), entityID, page.Limit)
	if err != nil {
		responses.WriteError(ctx, w, c.logger, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}
