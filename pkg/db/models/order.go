package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/enums"
	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// Order is one fulfillment request. Spec is the copy-on-write product
// snapshot taken at creation; Status and Paid only move through recorded
// OrderEvents. History rows are cascade-owned, the order itself is never
// hard-deleted while they exist.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	PartnerID       uuid.UUID         `gorm:"column:partner_id;type:uuid;not null;index"`
	StoreID         *uuid.UUID        `gorm:"column:store_id;type:uuid;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'preparing'"`
	Paid            bool              `gorm:"column:paid;not null;default:false"`
	Spec            types.ProductSpec `gorm:"column:spec;type:jsonb;serializer:json"`
	RecommendedSize *string           `gorm:"column:recommended_size"`
	ReservedSize    *string           `gorm:"column:reserved_size"`
	ScannedAt       *time.Time        `gorm:"column:scanned_at"`
	Events          []OrderEvent      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Notes           []OrderNote       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
