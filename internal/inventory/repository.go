package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/refurbstock-backend/pkg/db/models"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	"github.com/angelmondragon/refurbstock-backend/pkg/pagination"
)

// Repository persists inventory items and their per-platform listings.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the item and then its listing rows.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	listings := item.Listings
	if err := r.db.WithContext(ctx).Omit("Listings").Create(item).Error; err != nil {
		return err
	}
	if len(listings) == 0 {
		return nil
	}
	for i := range listings {
		listings[i].ItemID = item.ID
	}
	if err := r.db.WithContext(ctx).Create(&listings).Error; err != nil {
		return err
	}
	item.Listings = listings
	return nil
}

// FindByID loads the item with its listings ordered by platform.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Listings", orderListings).
		First(&item, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update writes the item's own columns. Listings are untouched.
func (r *Repository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Omit("Listings").Save(item).Error
}

// SetSalePrices overwrites the stored sale price of each given platform and
// creates listing rows that do not exist yet.
func (r *Repository) SetSalePrices(ctx context.Context, itemID uuid.UUID, prices map[enums.Platform]decimal.Decimal) error {
	for platform, price := range prices {
		res := r.db.WithContext(ctx).
			Model(&models.PlatformListing{}).
			Where("item_id = ? AND platform = ?", itemID, platform).
			Update("sale_price", price)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			continue
		}
		listing := models.PlatformListing{ItemID: itemID, Platform: platform, SalePrice: price}
		if err := r.db.WithContext(ctx).Create(&listing).Error; err != nil {
			return err
		}
	}
	return nil
}

// MarkListed flips the listing flag on and records the platform's condition
// label. listed_at keeps its first value when the item was already listed.
func (r *Repository) MarkListed(ctx context.Context, listing *models.PlatformListing, label string, at time.Time) error {
	updates := map[string]any{
		"is_listed":          true,
		"platform_condition": label,
	}
	if listing.ListedAt == nil {
		updates["listed_at"] = at
	}
	return r.db.WithContext(ctx).
		Model(&models.PlatformListing{}).
		Where("item_id = ? AND platform = ?", listing.ItemID, listing.Platform).
		Updates(updates).
		Error
}

// CreateListing inserts a single listing row.
func (r *Repository) CreateListing(ctx context.Context, listing *models.PlatformListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// Delete removes the item and its listings. It reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.db.WithContext(ctx).Where("item_id = ?", id).Delete(&models.PlatformListing{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type itemListQuery struct {
	Search     string
	Condition  *enums.Condition
	Platform   *enums.Platform
	Pagination pagination.Params
}

// List returns a page of items, newest first, and the cursor of the next page.
func (r *Repository) List(ctx context.Context, query itemListQuery) ([]models.InventoryItem, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		qb = qb.Where(`(LOWER(model_name) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if query.Condition != nil {
		qb = qb.Where("condition = ?", *query.Condition)
	}
	if query.Platform != nil {
		qb = qb.Where(
			"EXISTS (SELECT 1 FROM inventory_listings l WHERE l.item_id = inventory_items.id AND l.platform = ? AND l.is_listed = ?)",
			*query.Platform, true,
		)
	}
	if cursor != nil {
		qb = qb.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryItem
	err = qb.
		Preload("Listings", orderListings).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	page, next := pagination.Page(rows, query.Pagination.Limit, func(item models.InventoryItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	})
	return page, next, nil
}

func orderListings(db *gorm.DB) *gorm.DB {
	return db.Order("platform ASC")
}
