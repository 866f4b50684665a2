package fulfillment

import (
	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// Actor identifies who performed a write. Both fields nil means the
// change is system-attributed.
type Actor struct {
	PartnerID  *uuid.UUID
	EmployeeID *uuid.UUID
}

// CreateOrderInput carries everything needed to place an order. StoreID
// is optional; without it no stock is reserved.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	StoreID    *uuid.UUID
	Actor      Actor
}

// CreateOrderResult reports the new order and both size-matching passes.
// RecommendedSize comes from the product's recommendation table,
// ReservedSize from the store's own stock; they can disagree.
type CreateOrderResult struct {
	OrderID         uuid.UUID         `json:"order_id"`
	Status          enums.OrderStatus `json:"status"`
	RecommendedSize *string           `json:"recommended_size,omitempty"`
	ReservedSize    *string           `json:"reserved_size,omitempty"`
}

// UpdateStatusInput moves an order to a new lifecycle status.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	To      enums.OrderStatus
	Note    string
	Actor   Actor
}

// UpdatePaymentInput flips the payment indicator.
type UpdatePaymentInput struct {
	OrderID uuid.UUID
	Paid    bool
	Actor   Actor
}

// ScanInput records the warehouse scan for an order.
type ScanInput struct {
	OrderID uuid.UUID
	Actor   Actor
}
