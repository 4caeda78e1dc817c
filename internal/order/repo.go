package order

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/models"
)

// Row is an order joined with the buyer and item names, the shape the admin
// and history views want.
type Row struct {
	OrderID    uint      `json:"order_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	ItemID     uint      `json:"item_id"`
	ItemName   string    `json:"item_name"`
	Quantity   uint      `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	OrderedAt  time.Time `json:"date_ordered"`
}

type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

// Record persists one order row and returns its id. Orders are immutable;
// there is no update or delete path.
func (r *Repo) Record(ctx context.Context, userID, itemID, quantity uint, totalPrice float64) (uint, error) {
	o := models.Order{
		UserID:     userID,
		ItemID:     itemID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		OrderedAt:  time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&o).Error; err != nil {
		return 0, err
	}
	return o.ID, nil
}

func (r *Repo) joined(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.user_id, users.username,
			orders.item_id, items.name AS item_name,
			orders.quantity, orders.total_price, orders.ordered_at`).
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN items ON items.id = orders.item_id")
}

func (r *Repo) ForUser(ctx context.Context, userID uint) ([]Row, error) {
	var rows []Row
	if err := r.joined(ctx).Where("orders.user_id = ?", userID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) All(ctx context.Context) ([]Row, error) {
	var rows []Row
	if err := r.joined(ctx).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) Revenue(ctx context.Context) (float64, error) {
	var revenue float64
	if err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue).Error; err != nil {
		return 0, err
	}
	return revenue, nil
}
