package models

import (
	"time"
)

type OrderItem struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	OrderID              uint      `json:"order_id" gorm:"not null;index"`
	ProductID            uint      `json:"product_id" gorm:"not null"`
	ProductName          string    `json:"product_name" gorm:"not null"`
	Quantity             int       `json:"quantity" gorm:"not null"`
	UnitPrice            float64   `json:"unit_price" gorm:"not null"`
	PersonalizationText  string    `json:"personalization_text"`
	PersonalizationColor string    `json:"personalization_color"`
	PersonalizationImage string    `json:"personalization_image"`
	Surcharge            float64   `json:"surcharge"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// LineTotal is the amount this line contributes to the order subtotal.
// Price and surcharge are captured at order time and never re-read from
// the live catalog.
func (i OrderItem) LineTotal() float64 {
	return (i.UnitPrice + i.Surcharge) * float64(i.Quantity)
}
