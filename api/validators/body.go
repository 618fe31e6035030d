package validators

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeBody decodes the JSON body into dst and runs struct validation.
// Unknown fields are rejected so typos surface instead of silently
// dropping data.
func DecodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return Struct(dst)
}

// Struct validates dst against its validate tags.
func Struct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if ok := asValidationErrors(err, &invalid); !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}

	fields := make(map[string]string, len(invalid))
	for _, fieldErr := range invalid {
		fields[strings.ToLower(fieldErr.Field())] = fmt.Sprintf(
			"failed %q validation", fieldErr.Tag())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid request body").
		WithDetails(fields)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if typed, ok := err.(validator.ValidationErrors); ok {
		*target = typed
		return true
	}
	return false
}
