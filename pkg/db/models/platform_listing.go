package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
)

// PlatformListing holds an item's derived price and listed flag on one platform.
type PlatformListing struct {
	ItemID            uuid.UUID       `gorm:"column:item_id;type:uuid;primaryKey"`
	Platform          enums.Platform  `gorm:"column:platform;primaryKey"`
	SalePrice         decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2);not null"`
	IsListed          bool            `gorm:"column:is_listed;not null;default:false"`
	PlatformCondition *string         `gorm:"column:platform_condition"`
	ListedAt          *time.Time      `gorm:"column:listed_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PlatformListing) TableName() string {
	return "inventory_listings"
}
