package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/refurbstock-backend/internal/pricing"
	"github.com/angelmondragon/refurbstock-backend/pkg/db/models"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
)

// ItemDTO is the inventory item payload returned to the operator.
type ItemDTO struct {
	ID             uuid.UUID    `json:"id"`
	ModelName      string       `json:"model_name"`
	Brand          string       `json:"brand"`
	BasePrice      string       `json:"base_price"`
	StockQuantity  int          `json:"stock_quantity"`
	ReservedForB2B int          `json:"reserved_for_b2b"`
	AvailableStock int          `json:"available_stock"`
	Condition      string       `json:"condition"`
	Specifications string       `json:"specifications"`
	Tags           string       `json:"tags"`
	Listings       []ListingDTO `json:"listings"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ListingDTO exposes one platform's price and listing state.
type ListingDTO struct {
	Platform          string     `json:"platform"`
	PlatformName      string     `json:"platform_name"`
	SalePrice         string     `json:"sale_price"`
	IsListed          bool       `json:"is_listed"`
	PlatformCondition *string    `json:"platform_condition,omitempty"`
	ListedAt          *time.Time `json:"listed_at,omitempty"`
}

// ItemListResult is a page of items plus the cursor for the next page.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// ListingResultDTO reports a successful listing attempt.
type ListingResultDTO struct {
	Item              ItemDTO       `json:"item"`
	Platform          string        `json:"platform"`
	PlatformCondition string        `json:"platform_condition"`
	Price             string        `json:"price"`
	Profit            string        `json:"profit"`
	Outcome           enums.Outcome `json:"outcome"`
}

// NewItemDTO builds the payload from the persisted model.
func NewItemDTO(item *models.InventoryItem) ItemDTO {
	dto := ItemDTO{
		ID:             item.ID,
		ModelName:      item.ModelName,
		Brand:          item.Brand,
		BasePrice:      item.BasePrice.StringFixed(pricing.PriceScale),
		StockQuantity:  item.StockQuantity,
		ReservedForB2B: item.ReservedForB2B,
		AvailableStock: pricing.AvailableStock(item.StockQuantity, item.ReservedForB2B),
		Condition:      item.Condition.String(),
		Specifications: item.Specifications,
		Tags:           item.Tags,
		Listings:       make([]ListingDTO, 0, len(item.Listings)),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	for _, listing := range item.Listings {
		dto.Listings = append(dto.Listings, ListingDTO{
			Platform:          listing.Platform.String(),
			PlatformName:      listing.Platform.Label(),
			SalePrice:         listing.SalePrice.StringFixed(pricing.PriceScale),
			IsListed:          listing.IsListed,
			PlatformCondition: listing.PlatformCondition,
			ListedAt:          listing.ListedAt,
		})
	}
	return dto
}
