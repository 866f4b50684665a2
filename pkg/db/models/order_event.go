package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// OrderEvent is one append-only transition record. Equal from/to statuses
// denote the mandatory snapshot event written at order creation. Payment
// changes reuse the same log with IsPaymentChange set; any further event
// kind must add its own discriminator instead of overloading this one.
type OrderEvent struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	FromStatus      enums.OrderStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus        enums.OrderStatus `gorm:"column:to_status;type:text;not null"`
	IsPaymentChange bool              `gorm:"column:is_payment_change;not null;default:false"`
	PaymentFrom     *bool             `gorm:"column:payment_from"`
	PaymentTo       *bool             `gorm:"column:payment_to"`
	PartnerID       *uuid.UUID        `gorm:"column:partner_id;type:uuid"`
	EmployeeID      *uuid.UUID        `gorm:"column:employee_id;type:uuid"`
	Note            string            `gorm:"column:note"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}

// IsSnapshot reports whether the event records the initial state rather
// than a real transition.
func (e OrderEvent) IsSnapshot() bool {
	return !e.IsPaymentChange && e.FromStatus == e.ToStatus
}
