package enums

import "fmt"

// StockChangeType labels the cause of an inventory audit record.
type StockChangeType string

const (
	StockChangeSale       StockChangeType = "sale"
	StockChangeRestock    StockChangeType = "restock"
	StockChangeAdjustment StockChangeType = "adjustment"
)

var validStockChangeTypes = []StockChangeType{
	StockChangeSale,
	StockChangeRestock,
	StockChangeAdjustment,
}

// String implements fmt.Stringer.
func (t StockChangeType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockChangeType.
func (t StockChangeType) IsValid() bool {
	for _, candidate := range validStockChangeTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockChangeType converts raw input into a StockChangeType.
func ParseStockChangeType(value string) (StockChangeType, error) {
	for _, candidate := range validStockChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change type %q", value)
}
