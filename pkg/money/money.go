package money

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

// maxScale is the number of decimal places a monetary amount may carry.
const maxScale = 2

// ValidateAmount rejects amounts that cannot be charged: negative values or
// more precision than a currency supports.
func ValidateAmount(amount decimal.Decimal, field string) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative").
			WithDetails(map[string]any{"value": amount.String()})
	}
	if amount.Exponent() < -maxScale && !amount.Equal(amount.Round(maxScale)) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" has more than two decimal places").
			WithDetails(map[string]any{"value": amount.String()})
	}
	return nil
}

// ValidatePositiveAmount additionally rejects zero.
func ValidatePositiveAmount(amount decimal.Decimal, field string) error {
	if err := ValidateAmount(amount, field); err != nil {
		return err
	}
	if amount.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be greater than zero")
	}
	return nil
}

// Round normalizes an amount to currency precision.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(maxScale)
}

// LineTotal is the canonical line-item total: (unit price + per-unit addon
// contribution) x quantity. Both creation and merge go through this so the
// addon money never falls out of an order subtotal.
func LineTotal(unitPrice, addonPerUnit decimal.Decimal, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	return Round(unitPrice.Add(addonPerUnit).Mul(qty))
}
