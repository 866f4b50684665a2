package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// Store is a partner-owned stock location. Stock maps size labels to
// entries in either persisted encoding; only the inventory service
// mutates it.
type Store struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PartnerID uuid.UUID       `gorm:"column:partner_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Stock     types.SizeChart `gorm:"column:stock;type:jsonb;serializer:json"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
