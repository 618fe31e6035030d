package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/types"
)

// WriteSuccess writes the success envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteError maps the error onto the error envelope. Unknown errors
// collapse to an internal error so no driver details leak to clients.
func WriteError(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	if meta.HTTPStatus >= http.StatusInternalServerError && logg != nil {
		logg.Error(ctx, "request failed", err)
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: typed.Message(),
	}
	if apiErr.Message == "" {
		apiErr.Message = meta.PublicMessage
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}
	if typed.Code() == pkgerrors.CodeInternal {
		apiErr.Message = meta.PublicMessage
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{
		Success: false,
		Error:   apiErr,
	})
}
