package controllers

import (
	"net/http"

	"github.com/comanda-pos/backend/api/responses"
	"github.com/comanda-pos/backend/pkg/db"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// HealthController answers liveness and readiness probes.
type HealthController struct {
	pinger db.Pinger
	logger *logger.Logger
}

func NewHealthController(pinger db.Pinger, logg *logger.Logger) *HealthController {
	return &HealthController{pinger: pinger, logger: logg}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	if err := c.pinger.Ping(r.Context()); err != nil {
		responses.WriteError(r.Context(), w, c.logger,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
		return
	}
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}
