package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryGrains     Category = "grains"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryPoultry    Category = "poultry"
	CategoryHerbs      Category = "herbs"
	CategoryOther      Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryVegetables,
	CategoryFruits,
	CategoryGrains,
	CategoryDairy,
	CategoryMeat,
	CategoryPoultry,
	CategoryHerbs,
	CategoryOther,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	FarmerID      uint            `json:"farmer_id" gorm:"not null;index"`
	Farmer        User            `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Name          string          `json:"name" gorm:"not null"`
	Category      Category        `json:"category" gorm:"not null;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Unit          string          `json:"unit" gorm:"not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;check:stock_quantity >= 0"`
	Description   string          `json:"description"`
	ImageFilename *string         `json:"image_filename"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}

// InStock reports whether at least one unit can be ordered
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
