package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agriconnect/models"

	"gorm.io/gorm"
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Submit records a buyer's review of one of their completed orders
func (s *ReviewService) Submit(ctx context.Context, buyerID, orderID uint, rating int, comment string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, models.MinRating, models.MaxRating)
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ? AND buyer_id = ?", orderID, buyerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEligible
			}
			return err
		}
		if order.Status != models.StatusCompleted {
			return fmt.Errorf("%w: order is %s", ErrNotEligible, order.Status)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("order_id = ? AND buyer_id = ?", orderID, buyerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		review = models.Review{
			OrderID:   order.ID,
			BuyerID:   buyerID,
			FarmerID:  order.FarmerID,
			ProductID: order.ProductID,
			Rating:    rating,
			Comment:   strings.TrimSpace(comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}
