package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Admin struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Item struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Category    string    `gorm:"index"                     json:"category"`
	Quantity    uint      `gorm:"not null"                  json:"quantity"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	CreatedAt   time.Time `json:"date_created"`
	RestockedAt time.Time `json:"date_restocked"`
}

type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID     uint      `gorm:"index;not null"              json:"user_id"`
	ItemID     uint      `gorm:"not null"                    json:"item_id"`
	Quantity   uint      `gorm:"not null;check:quantity > 0" json:"quantity"`
	TotalPrice float64   `gorm:"not null"                    json:"total_price"`
	OrderedAt  time.Time `json:"date_ordered"`
}
