package catalog

import (
	"context"
	"errors"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database"
	"syntra-pos/internal/database/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := database.Conn(ctx, s.db).Where("id = ?", id).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeProductNotFound, "product not found")
		}
		return nil, apperr.Internal(err, "failed to load product")
	}
	return &product, nil
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if err := database.Conn(ctx, s.db).Create(product).Error; err != nil {
		return apperr.Internal(err, "failed to create product")
	}
	return nil
}

func (s *ProductStore) List(ctx context.Context, active *bool) ([]models.Product, error) {
	var products []models.Product
	query := database.Conn(ctx, s.db).Model(&models.Product{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list products")
	}
	return products, nil
}

func (s *ProductStore) CreateType(ctx context.Context, productType *models.ProductType) error {
	if err := database.Conn(ctx, s.db).Create(productType).Error; err != nil {
		return apperr.Internal(err, "failed to create product type")
	}
	return nil
}

func (s *ProductStore) FindTypeByID(ctx context.Context, id int64) (*models.ProductType, error) {
	var productType models.ProductType
	if err := database.Conn(ctx, s.db).Where("id = ?", id).Take(&productType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeProductTypeNotFound, "product type not found")
		}
		return nil, apperr.Internal(err, "failed to load product type")
	}
	return &productType, nil
}

func (s *ProductStore) ListTypes(ctx context.Context) ([]models.ProductType, error) {
	var types []models.ProductType
	if err := database.Conn(ctx, s.db).Order("id ASC").Find(&types).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list product types")
	}
	return types, nil
}

type PriceStore struct {
	db *gorm.DB
}

func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

func (s *PriceStore) Create(ctx context.Context, price *models.ProductPrice) error {
	if err := database.Conn(ctx, s.db).Create(price).Error; err != nil {
		return apperr.Internal(err, "failed to create product price")
	}
	return nil
}

func (s *PriceStore) FindByID(ctx context.Context, id int64) (*models.ProductPrice, error) {
	var price models.ProductPrice
	if err := database.Conn(ctx, s.db).Where("id = ?", id).Take(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeProductPriceNotFound, "product price not found")
		}
		return nil, apperr.Internal(err, "failed to load product price")
	}
	return &price, nil
}

// FindByProduct returns the whole price history of a product in storage order.
func (s *PriceStore) FindByProduct(ctx context.Context, productID int64) ([]models.ProductPrice, error) {
	var prices []models.ProductPrice
	if err := database.Conn(ctx, s.db).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&prices).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list product prices")
	}
	return prices, nil
}

// FindEffective returns the price row covering day. Overlapping rows are
// resolved by the latest valid_from, then by the most recently created row.
func (s *PriceStore) FindEffective(ctx context.Context, productID int64, day time.Time) (*models.ProductPrice, error) {
	var price models.ProductPrice
	on := datatypes.Date(day)

	err := database.Conn(ctx, s.db).
		Where("product_id = ?", productID).
		Where("valid_from <= ?", on).
		Where("valid_to IS NULL OR valid_to >= ?", on).
		Order("valid_from DESC").
		Order("id DESC").
		Take(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodePriceNotFound, "no price is effective on the requested date")
		}
		return nil, apperr.Internal(err, "failed to resolve effective price")
	}
	return &price, nil
}

func (s *PriceStore) SetValidTo(ctx context.Context, id int64, day time.Time) (bool, error) {
	on := datatypes.Date(day)
	result := database.Conn(ctx, s.db).
		Model(&models.ProductPrice{}).
		Where("id = ?", id).
		Update("valid_to", &on)
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to close product price")
	}
	return result.RowsAffected > 0, nil
}

func (s *PriceStore) Delete(ctx context.Context, id int64) (bool, error) {
	result := database.Conn(ctx, s.db).Where("id = ?", id).Delete(&models.ProductPrice{})
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to delete product price")
	}
	return result.RowsAffected > 0, nil
}
