package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
)

// InventoryItem is a refurbished phone held in stock.
type InventoryItem struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ModelName      string            `gorm:"column:model_name;not null"`
	Brand          string            `gorm:"column:brand;not null"`
	BasePrice      decimal.Decimal   `gorm:"column:base_price;type:numeric(12,2);not null"`
	StockQuantity  int               `gorm:"column:stock_quantity;not null;default:0"`
	ReservedForB2B int               `gorm:"column:reserved_for_b2b;not null;default:0"`
	Condition      enums.Condition   `gorm:"column:condition;not null"`
	Specifications string            `gorm:"column:specifications;not null;default:''"`
	Tags           string            `gorm:"column:tags;not null;default:''"`
	Listings       []PlatformListing `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// BeforeCreate assigns the id client-side so sqlite and postgres behave alike.
func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Listing returns the listing row for platform, if loaded.
func (i *InventoryItem) Listing(platform enums.Platform) (*PlatformListing, bool) {
	for idx := range i.Listings {
		if i.Listings[idx].Platform == platform {
			return &i.Listings[idx], true
		}
	}
	return nil, false
}
