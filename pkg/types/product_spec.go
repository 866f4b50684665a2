package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSpec is the copy-on-write snapshot of a catalog product embedded
// into an order at creation time. Later catalog edits never change it.
type ProductSpec struct {
	ProductID uuid.UUID        `json:"product_id"`
	Name      string           `json:"name"`
	Model     string           `json:"model,omitempty"`
	Material  string           `json:"material,omitempty"`
	Color     string           `json:"color,omitempty"`
	BasePrice *decimal.Decimal `json:"base_price,omitempty"`
	SizeChart SizeChart        `json:"size_chart,omitempty"`
}
