package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a marketplace order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

type Order struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	BuyerID       uint                 `json:"buyer_id" gorm:"not null;index"`
	Buyer         User                 `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	FarmerID      uint                 `json:"farmer_id" gorm:"not null;index"`
	Farmer        User                 `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	ProductID     uint                 `json:"product_id" gorm:"not null;index"`
	Product       Product              `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity      int                  `json:"quantity" gorm:"not null;check:quantity > 0"`
	TotalAmount   decimal.Decimal      `json:"total_amount" gorm:"type:decimal(12,2);not null"` // price snapshot × quantity
	Status        OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	Review        *Review              `json:"review,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Reviewable reports whether the buyer may still leave a review
func (o Order) Reviewable() bool {
	return o.Status == StatusCompleted && o.Review == nil
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
