package models

import (
	"time"
)

type Product struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description" gorm:"type:text"`
	Price         float64   `json:"price" gorm:"not null"`
	ImageURL      string    `json:"image_url"`
	StockQuantity *int      `json:"stock_quantity"` // nil means stock is not tracked
	CategoryID    uint      `json:"category_id" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether the requested quantity can be satisfied. A nil
// stock quantity means unlimited.
func (p Product) InStock(quantity int) bool {
	if p.StockQuantity == nil {
		return true
	}
	return *p.StockQuantity >= quantity
}
