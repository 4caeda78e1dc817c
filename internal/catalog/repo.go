package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/models"
)

var ErrNotFound = errors.New("catalog: item not found")

// StockError reports a conditional decrement that would have driven stock
// negative. Available is read after the failed update and may already be
// stale by the time the caller sees it.
type StockError struct {
	ItemID    uint
	Requested uint
	Available uint
}

func (e *StockError) Error() string {
	return fmt.Sprintf("catalog: insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// Filter narrows ListItems. Zero values mean "no constraint".
type Filter struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Search    string
	Limit     int
	Offset    int
	SortBy    string // "name" or "price"
	SortOrder string // "asc" or "desc"
}

// Patch carries a partial item update; nil fields are left untouched.
type Patch struct {
	Name        *string
	Brand       *string
	Description *string
	Category    *string
	Quantity    *uint
	Price       *float64
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Brand == nil && p.Description == nil &&
		p.Category == nil && p.Quantity == nil && p.Price == nil
}

type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns in-stock items matching the filter. Sorting columns are
// whitelisted here, never interpolated from user input.
func (r *Repo) ListItems(ctx context.Context, f Filter) ([]models.Item, error) {
	q := r.DB.WithContext(ctx).Model(&models.Item{}).Where("quantity > 0")

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		q = q.Where("price BETWEEN ? AND ?", *f.MinPrice, *f.MaxPrice)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", term, term)
	}

	sortBy := "name"
	if f.SortBy == "price" {
		sortBy = "price"
	}
	order := "ASC"
	if f.SortOrder == "desc" {
		order = "DESC"
	}
	q = q.Order(sortBy + " " + order)

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var items []models.Item
	if err := q.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.DB.WithContext(ctx).
		Model(&models.Item{}).
		Where("quantity > 0 AND category <> ''").
		Distinct("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repo) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.RestockedAt = now
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *Repo) UpdateItem(ctx context.Context, id uint, p Patch) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}

	if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Restock adds quantity and stamps restocked_at in one statement.
func (r *Repo) Restock(ctx context.Context, id uint, quantity uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", quantity),
			"restocked_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies delta to stock as a single guarded UPDATE, so stock
// can never be driven negative no matter how many purchases race. A zero
// RowsAffected result is disambiguated into ErrNotFound or a StockError.
func (r *Repo) AdjustQuantity(ctx context.Context, id uint, delta int) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var item models.Item
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return &StockError{ItemID: id, Requested: uint(-delta), Available: item.Quantity}
}
