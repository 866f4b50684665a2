package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// StockAudit is the append-only trail of stock mutations. Every row is
// written in the same transaction as the mutation it documents.
type StockAudit struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	ChangeType    enums.StockChangeType `gorm:"column:change_type;type:text;not null"`
	QuantityDelta int                   `gorm:"column:quantity_delta;not null"`
	NewStock      int                   `gorm:"column:new_stock;not null"`
	Reason        string                `gorm:"column:reason"`
	PartnerID     *uuid.UUID            `gorm:"column:partner_id;type:uuid"`
	CustomerID    *uuid.UUID            `gorm:"column:customer_id;type:uuid"`
	OrderID       *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}
