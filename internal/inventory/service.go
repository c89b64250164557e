package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/refurbstock-backend/internal/pricing"
	"github.com/angelmondragon/refurbstock-backend/pkg/db"
	"github.com/angelmondragon/refurbstock-backend/pkg/db/models"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/metrics"
	"github.com/angelmondragon/refurbstock-backend/pkg/pagination"
)

// Service exposes the inventory operations available to the operator.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListOnPlatform(ctx context.Context, id uuid.UUID, platform enums.Platform) (*ListingResultDTO, error)
}

// CreateItemInput holds the payload for a new inventory item.
type CreateItemInput struct {
	ModelName      string
	Brand          string
	BasePrice      decimal.Decimal
	StockQuantity  int
	ReservedForB2B int
	Condition      enums.Condition
	Specifications string
}

// UpdateItemInput holds optional changes to an item. PlatformPrices replaces
// the stored sale price of the given platforms verbatim.
type UpdateItemInput struct {
	ModelName      *string
	Brand          *string
	BasePrice      *decimal.Decimal
	StockQuantity  *int
	ReservedForB2B *int
	Condition      *enums.Condition
	Specifications *string
	PlatformPrices map[enums.Platform]decimal.Decimal
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	metrics  *metrics.InventoryMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the inventory service. metrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, recorder *metrics.InventoryMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		metrics:  recorder,
		logg:     logg,
		now:      db.NowUTC,
	}, nil
}

// CreateItem validates the input, derives the stock tag and platform prices,
// and stores the item with one listing row per platform.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	fields := itemFields{
		ModelName:      input.ModelName,
		Brand:          input.Brand,
		BasePrice:      input.BasePrice,
		StockQuantity:  input.StockQuantity,
		ReservedForB2B: input.ReservedForB2B,
		Condition:      input.Condition,
		Specifications: input.Specifications,
	}
	fields.normalize()
	if err := fields.validate(); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		ModelName:      fields.ModelName,
		Brand:          fields.Brand,
		BasePrice:      fields.BasePrice.Round(pricing.PriceScale),
		StockQuantity:  fields.StockQuantity,
		ReservedForB2B: fields.ReservedForB2B,
		Condition:      fields.Condition,
		Specifications: fields.Specifications,
		Tags:           pricing.StockTag(fields.StockQuantity, fields.ReservedForB2B),
	}
	for _, platform := range enums.Platforms() {
		item.Listings = append(item.Listings, models.PlatformListing{
			Platform:  platform,
			SalePrice: pricing.PlatformPrice(item.BasePrice, platform),
		})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, item)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
	}

	s.logg.Info(s.logg.WithItemID(ctx, item.ID.String()), "inventory item created")
	return s.GetItem(ctx, item.ID)
}

// GetItem loads a single item with its listings.
func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := NewItemDTO(item)
	return &dto, nil
}

// ListItems returns a filtered page of items, newest first.
func (s *service) ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error) {
	if input.Condition != nil && !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown condition %q", *input.Condition))
	}
	if input.Platform != nil && !input.Platform.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown platform %q", *input.Platform))
	}

	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, itemListQuery{
		Search:     input.Search,
		Condition:  input.Condition,
		Platform:   input.Platform,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}

	result := &ItemListResult{Items: make([]ItemDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		result.Items = append(result.Items, NewItemDTO(&rows[i]))
	}
	return result, nil
}

// UpdateItem applies a partial edit. The stock tag is always recomputed and a
// base price change re-derives every platform price unless explicit prices
// are supplied for that platform.
func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if err := validatePriceOverrides(input.PlatformPrices); err != nil {
		return nil, err
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item, err := s.loadItem(ctx, txRepo, id)
		if err != nil {
			return err
		}

		fields := applyUpdate(item, input)
		fields.normalize()
		if err := fields.validate(); err != nil {
			return err
		}

		priceChanged := !fields.BasePrice.Round(pricing.PriceScale).Equal(item.BasePrice)

		item.ModelName = fields.ModelName
		item.Brand = fields.Brand
		item.BasePrice = fields.BasePrice.Round(pricing.PriceScale)
		item.StockQuantity = fields.StockQuantity
		item.ReservedForB2B = fields.ReservedForB2B
		item.Condition = fields.Condition
		item.Specifications = fields.Specifications
		item.Tags = pricing.StockTag(item.StockQuantity, item.ReservedForB2B)

		if err := txRepo.Update(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
		}

		prices := make(map[enums.Platform]decimal.Decimal, len(input.PlatformPrices))
		if priceChanged {
			for platform, price := range pricing.PlatformPrices(item.BasePrice) {
				prices[platform] = price
			}
		}
		for platform, price := range input.PlatformPrices {
			prices[platform] = price.Round(pricing.PriceScale)
		}
		if len(prices) > 0 {
			if err := txRepo.SetSalePrices(ctx, item.ID, prices); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update platform prices")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, id.String()), "inventory item updated")
	return s.GetItem(ctx, id)
}

// DeleteItem removes the item and its listings.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	var found bool
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		found, err = s.repo.WithTx(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	s.logg.Info(s.logg.WithItemID(ctx, id.String()), "inventory item deleted")
	return nil
}

// ListOnPlatform runs the listing gates for the item and, when they all pass,
// marks it listed on platform. A blocked attempt leaves the item untouched.
func (s *service) ListOnPlatform(ctx context.Context, id uuid.UUID, platform enums.Platform) (*ListingResultDTO, error) {
	if !platform.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown platform %q", platform))
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"item_id": id.String(), "platform": platform.String()})

	var (
		verdict pricing.Verdict
		price   decimal.Decimal
	)
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item, err := s.loadItem(ctx, txRepo, id)
		if err != nil {
			return err
		}

		verdict, err = pricing.EvaluateListing(pricing.Candidate{
			BasePrice:     item.BasePrice,
			StockQuantity: item.StockQuantity,
			ReservedQty:   item.ReservedForB2B,
			Condition:     item.Condition,
		}, platform)
		if err != nil {
			return err
		}

		listing, ok := item.Listing(platform)
		if !ok {
			listing = &models.PlatformListing{ItemID: item.ID, Platform: platform, SalePrice: verdict.Price}
			if err := txRepo.CreateListing(ctx, listing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create listing")
			}
		}
		price = listing.SalePrice

		if err := txRepo.MarkListed(ctx, listing, verdict.PlatformCondition, s.now()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark listing")
		}
		return nil
	})

	var blocked *pricing.BlockedError
	if errors.As(err, &blocked) {
		s.metrics.ObserveListing(platform.String(), enums.OutcomeWarning.String(), blocked.Rule.String())
		s.logg.Warn(s.logg.WithField(ctx, "rule", blocked.Rule.String()), "listing blocked")
		return nil, pkgerrors.Wrap(pkgerrors.CodeListingBlocked, blocked, blocked.Error()).WithDetails(map[string]any{
			"platform":  platform.String(),
			"rule":      blocked.Rule.String(),
			"condition": blocked.Condition.String(),
		})
	}
	if err != nil {
		s.metrics.ObserveListing(platform.String(), enums.OutcomeError.String(), "")
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "evaluate listing")
		}
		return nil, err
	}

	s.metrics.ObserveListing(platform.String(), enums.OutcomeSuccess.String(), "")
	s.logg.Info(ctx, "item listed")

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ListingResultDTO{
		Item:              *item,
		Platform:          platform.String(),
		PlatformCondition: verdict.PlatformCondition,
		Price:             price.StringFixed(pricing.PriceScale),
		Profit:            verdict.Profit.StringFixed(pricing.PriceScale),
		Outcome:           enums.OutcomeSuccess,
	}, nil
}

func (s *service) loadItem(ctx context.Context, repo *Repository, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}
	return item, nil
}

func applyUpdate(item *models.InventoryItem, input UpdateItemInput) itemFields {
	fields := itemFields{
		ModelName:      item.ModelName,
		Brand:          item.Brand,
		BasePrice:      item.BasePrice,
		StockQuantity:  item.StockQuantity,
		ReservedForB2B: item.ReservedForB2B,
		Condition:      item.Condition,
		Specifications: item.Specifications,
	}
	if input.ModelName != nil {
		fields.ModelName = *input.ModelName
	}
	if input.Brand != nil {
		fields.Brand = *input.Brand
	}
	if input.BasePrice != nil {
		fields.BasePrice = *input.BasePrice
	}
	if input.StockQuantity != nil {
		fields.StockQuantity = *input.StockQuantity
	}
	if input.ReservedForB2B != nil {
		fields.ReservedForB2B = *input.ReservedForB2B
	}
	if input.Condition != nil {
		fields.Condition = *input.Condition
	}
	if input.Specifications != nil {
		fields.Specifications = *input.Specifications
	}
	return fields
}
