package enums

import "fmt"

// StockUnit is the unit of measure for an inventory item.
type StockUnit string

const (
	StockUnitKilogram StockUnit = "kg"
	StockUnitGram     StockUnit = "g"
	StockUnitLiter    StockUnit = "l"
	StockUnitPiece    StockUnit = "pc"
)

var validStockUnits = []StockUnit{
	StockUnitKilogram,
	StockUnitGram,
	StockUnitLiter,
	StockUnitPiece,
}

func (u StockUnit) String() string {
	return string(u)
}

func (u StockUnit) IsValid() bool {
	for _, candidate := range validStockUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseStockUnit converts raw input into a StockUnit.
func ParseStockUnit(value string) (StockUnit, error) {
	for _, candidate := range validStockUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock unit %q", value)
}
