package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the measurements and priced services order creation
// validates against. Both foot lengths and both service prices must be
// present before an order can be placed.
type Customer struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PartnerID           uuid.UUID        `gorm:"column:partner_id;type:uuid;not null;index"`
	Name                string           `gorm:"column:name;not null"`
	FootLengthLeftMM    *float64         `gorm:"column:foot_length_left_mm"`
	FootLengthRightMM   *float64         `gorm:"column:foot_length_right_mm"`
	FittingServicePrice *decimal.Decimal `gorm:"column:fitting_service_price;type:numeric"`
	CraftingServicePrice *decimal.Decimal `gorm:"column:crafting_service_price;type:numeric"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
