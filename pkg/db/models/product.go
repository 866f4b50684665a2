package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// Product is a catalog entry. SizeChart is the recommendation table
// (size label to recommended length in millimeters).
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	Model     string           `gorm:"column:model"`
	Material  string           `gorm:"column:material"`
	Color     string           `gorm:"column:color"`
	BasePrice *decimal.Decimal `gorm:"column:base_price;type:numeric"`
	SizeChart types.SizeChart  `gorm:"column:size_chart;type:jsonb;serializer:json"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
