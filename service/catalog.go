package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agriconnect/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImageStore persists product images and returns the stored file name
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(name string) error
}

type CatalogService struct {
	db     *gorm.DB
	images ImageStore
}

func NewCatalogService(db *gorm.DB, images ImageStore) *CatalogService {
	return &CatalogService{db: db, images: images}
}

// ProductFilter narrows a catalog listing. Zero values mean no filter.
type ProductFilter struct {
	Category models.Category
	Search   string
	Limit    int
}

// List returns in-stock products, newest first
func (s *CatalogService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Preload("Farmer").Where("stock_quantity > 0")

	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		op := likeOperator(s.db)
		query = query.Where("(name "+op+" ? ESCAPE '\\' OR description "+op+" ? ESCAPE '\\')", pattern, pattern)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var products []models.Product
	if err := query.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Categories returns the distinct categories that have at least one product
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var present []models.Category
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").Order("category").Pluck("category", &present).Error; err != nil {
		return nil, err
	}
	return present, nil
}

type ProductDetail struct {
	Product       models.Product
	Reviews       []models.Review
	AverageRating float64
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*ProductDetail, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Farmer").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}

	var reviews []models.Review
	if err := s.db.WithContext(ctx).Preload("Buyer").
		Where("product_id = ?", id).
		Order("created_at desc").Order("id desc").
		Find(&reviews).Error; err != nil {
		return nil, err
	}

	detail := &ProductDetail{Product: product, Reviews: reviews}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		detail.AverageRating = float64(sum) / float64(len(reviews))
	}
	return detail, nil
}

// FarmerProducts returns every product a farmer owns, including sold-out ones
func (s *CatalogService) FarmerProducts(ctx context.Context, farmerID uint) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).
		Order("created_at desc").Order("id desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

type NewProduct struct {
	FarmerID      uint
	Name          string
	Category      models.Category
	Price         decimal.Decimal
	Unit          string
	StockQuantity int
	Description   string
}

// Upload is an image submitted alongside a new product
type Upload struct {
	Filename string
	Body     io.Reader
}

type AddProductResult struct {
	Product *models.Product
	// ImageErr is set when the image could not be stored; the product was still created
	ImageErr error
}

// AddProduct stores the image (if any) and then inserts the product.
// The two steps are not atomic: a failed image write leaves the product
// without an image, a failed insert deletes the stored image.
func (s *CatalogService) AddProduct(ctx context.Context, in NewProduct, img *Upload) (*AddProductResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Name == "" || in.Unit == "" {
		return nil, fmt.Errorf("%w: name and unit are required", ErrValidation)
	}
	if _, ok := models.ParseCategory(string(in.Category)); !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return nil, fmt.Errorf("%w: price can have at most 2 decimal places", ErrValidation)
	}
	if !in.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}

	result := &AddProductResult{}
	var imageName *string
	if img != nil && img.Filename != "" && s.images != nil {
		name, err := s.images.Save(ctx, img.Filename, img.Body)
		if err != nil {
			result.ImageErr = err
		} else {
			imageName = &name
		}
	}

	product := models.Product{
		FarmerID:      in.FarmerID,
		Name:          in.Name,
		Category:      in.Category,
		Price:         in.Price.Round(2),
		Unit:          in.Unit,
		StockQuantity: in.StockQuantity,
		Description:   strings.TrimSpace(in.Description),
		ImageFilename: imageName,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if imageName != nil {
			if derr := s.images.Delete(*imageName); derr != nil {
				err = errors.Join(err, fmt.Errorf("remove orphaned image: %w", derr))
			}
		}
		return nil, err
	}
	result.Product = &product
	return result, nil
}

// likeOperator picks a case-insensitive LIKE. SQLite's LIKE already ignores
// ASCII case; Postgres needs ILIKE.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
