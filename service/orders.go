package service

import (
	"context"
	"errors"
	"fmt"

	"agriconnect/models"
	"agriconnect/statemachine"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Place creates a pending order and takes its quantity out of stock in one
// transaction. The decrement only applies while enough stock remains, so
// concurrent placements can never drive stock below zero.
func (s *OrderService) Place(ctx context.Context, buyerID, productID uint, quantity int) (*models.Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := lockForUpdate(tx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d does not exist", ErrOutOfStock, productID)
			}
			return err
		}
		if product.StockQuantity < quantity {
			return fmt.Errorf("%w: %d requested, %d available", ErrOutOfStock, quantity, product.StockQuantity)
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", product.ID, quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: stock changed while ordering", ErrOutOfStock)
		}

		order = models.Order{
			BuyerID:     buyerID,
			FarmerID:    product.FarmerID,
			ProductID:   product.ID,
			Quantity:    quantity,
			TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
			Status:      models.StatusPending,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: buyerID,
			Note:      "Order placed by buyer",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves a farmer's order to a new status. Cancelling puts the
// ordered quantity back into the product's stock.
func (s *OrderService) UpdateStatus(ctx context.Context, farmerID, orderID uint, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ? AND farmer_id = ?", orderID, farmerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		from := order.Status
		if err := statemachine.CanTransition(from, to, models.UserFarmer); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, order.ID)
		}

		if to == models.StatusCancelled {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", order.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", order.Quantity)).Error; err != nil {
				return err
			}
		}

		order.Status = to
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  farmerID,
			Note:       "Status updated by farmer",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ForFarmer returns orders received by a farmer, newest first
func (s *OrderService) ForFarmer(ctx context.Context, farmerID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Product").Preload("Buyer").
		Where("farmer_id = ?", farmerID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ForBuyer returns orders placed by a buyer, newest first, with any review attached
func (s *OrderService) ForBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Product").Preload("Farmer").Preload("Review").
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// History returns an order's status changes, oldest first. Only the order's
// buyer or farmer may read it.
func (s *OrderService) History(ctx context.Context, userID, orderID uint) ([]models.OrderStatusHistory, error) {
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.Select("id").Where("id = ? AND (buyer_id = ? OR farmer_id = ?)", orderID, userID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	var history []models.OrderStatusHistory
	if err := db.Where("order_id = ?", order.ID).Order("id asc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

type OrderSummary struct {
	Counts  map[models.OrderStatus]int
	Revenue decimal.Decimal
}

func (s OrderSummary) Count(status models.OrderStatus) int {
	return s.Counts[status]
}

// Summarize groups orders by status and totals completed sales
func Summarize(orders []models.Order) OrderSummary {
	summary := OrderSummary{Counts: map[models.OrderStatus]int{}, Revenue: decimal.Zero}
	for _, o := range orders {
		summary.Counts[o.Status]++
		if o.Status == models.StatusCompleted {
			summary.Revenue = summary.Revenue.Add(o.TotalAmount)
		}
	}
	return summary
}

// lockForUpdate adds a row lock on dialects that support it. SQLite
// serializes writers already.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
