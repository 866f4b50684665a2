package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderNote is a customer-facing free-text history entry. The change-log
// aggregator classifies and de-duplicates these against the event log.
type OrderNote struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	PartnerID *uuid.UUID `gorm:"column:partner_id;type:uuid"`
	Note      string     `gorm:"column:note;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}
