package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is left by a buyer on one of their completed orders.
// (order_id, buyer_id) is unique.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_reviews_order_buyer"`
	BuyerID   uint      `json:"buyer_id" gorm:"not null;uniqueIndex:idx_reviews_order_buyer"`
	Buyer     User      `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	FarmerID  uint      `json:"farmer_id" gorm:"not null;index"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
