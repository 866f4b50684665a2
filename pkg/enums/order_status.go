package enums

import "fmt"

// OrderStatus tracks the production lifecycle of a made-to-measure order.
// The common path walks the phases in declaration order, but operational
// corrections may jump between any two statuses.
type OrderStatus string

const (
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusInProduction   OrderStatus = "in_production"
	OrderStatusPacking        OrderStatus = "packing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDone           OrderStatus = "done"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPreparing,
	OrderStatusInProduction,
	OrderStatusPacking,
	OrderStatusReadyForPickup,
	OrderStatusShipped,
	OrderStatusDone,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
