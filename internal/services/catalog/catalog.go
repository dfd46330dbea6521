package catalog

import (
	"context"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database/models"
	"syntra-pos/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type PriceRepository interface {
	Create(ctx context.Context, price *models.ProductPrice) error
	FindByID(ctx context.Context, id int64) (*models.ProductPrice, error)
	FindByProduct(ctx context.Context, productID int64) ([]models.ProductPrice, error)
	FindEffective(ctx context.Context, productID int64, day time.Time) (*models.ProductPrice, error)
	SetValidTo(ctx context.Context, id int64, day time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PriceRequest struct {
	ValidFrom      string          `json:"valid_from" binding:"required"`
	ValidTo        *string         `json:"valid_to,omitempty"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
}

type PriceDTO struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	ValidFrom      string          `json:"valid_from"`
	ValidTo        *string         `json:"valid_to"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToPriceDTO(p models.ProductPrice) PriceDTO {
	dto := PriceDTO{
		ID:             p.ID,
		ProductID:      p.ProductID,
		ValidFrom:      time.Time(p.ValidFrom).Format(utils.DateLayout),
		SuggestedPrice: p.SuggestedPrice,
		CreatedAt:      p.CreatedAt,
	}
	if p.ValidTo != nil {
		to := time.Time(*p.ValidTo).Format(utils.DateLayout)
		dto.ValidTo = &to
	}
	return dto
}

// PriceCatalog owns the dated price history of every product.
type PriceCatalog struct {
	products ProductFinder
	prices   PriceRepository
	logger   *zap.Logger
}

func NewPriceCatalog(products ProductFinder, prices PriceRepository, logger *zap.Logger) *PriceCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceCatalog{products: products, prices: prices, logger: logger}
}

// ResolveEffectivePrice returns the price of productID in force on the
// calendar day of asOf.
func (c *PriceCatalog) ResolveEffectivePrice(ctx context.Context, productID int64, asOf time.Time) (*models.ProductPrice, error) {
	if _, err := c.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return c.prices.FindEffective(ctx, productID, utils.DateOf(asOf))
}

func (c *PriceCatalog) FindAll(ctx context.Context, productID int64) ([]models.ProductPrice, error) {
	if _, err := c.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return c.prices.FindByProduct(ctx, productID)
}

func (c *PriceCatalog) GetPrice(ctx context.Context, id int64) (*models.ProductPrice, error) {
	return c.prices.FindByID(ctx, id)
}

// CreatePrice appends a price version. Existing open ranges are left alone;
// closing them is an explicit ClosePrice call.
func (c *PriceCatalog) CreatePrice(ctx context.Context, productID int64, req PriceRequest) (*models.ProductPrice, error) {
	if _, err := c.products.FindByID(ctx, productID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Validation(apperr.CodeProductNotFound, "product not found")
		}
		return nil, err
	}

	from, err := utils.ParseDate(req.ValidFrom)
	if err != nil {
		return nil, apperr.Validationf(apperr.CodeValidation, "invalid valid_from %q, expected YYYY-MM-DD", req.ValidFrom)
	}
	if req.SuggestedPrice.IsNegative() {
		return nil, apperr.Validation(apperr.CodeValidation, "suggested_price must not be negative")
	}

	price := &models.ProductPrice{
		ProductID:      productID,
		ValidFrom:      datatypes.Date(from),
		SuggestedPrice: req.SuggestedPrice.Round(2),
	}
	if req.ValidTo != nil {
		to, err := utils.ParseDate(*req.ValidTo)
		if err != nil {
			return nil, apperr.Validationf(apperr.CodeValidation, "invalid valid_to %q, expected YYYY-MM-DD", *req.ValidTo)
		}
		if to.Before(from) {
			return nil, apperr.Validation(apperr.CodeValidation, "valid_to must not be before valid_from")
		}
		end := datatypes.Date(to)
		price.ValidTo = &end
	}

	if err := c.prices.Create(ctx, price); err != nil {
		return nil, err
	}
	c.logger.Info("product price created",
		zap.Int64("price_id", price.ID),
		zap.Int64("product_id", productID),
		zap.String("valid_from", req.ValidFrom),
		zap.String("suggested_price", price.SuggestedPrice.StringFixed(2)),
	)
	return price, nil
}

// ClosePrice sets the inclusive end date of a price version.
func (c *PriceCatalog) ClosePrice(ctx context.Context, id int64, validTo time.Time) (*models.ProductPrice, error) {
	price, err := c.prices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	end := utils.DateOf(validTo)
	if end.Before(time.Time(price.ValidFrom)) {
		return nil, apperr.Validation(apperr.CodeValidation, "valid_to must not be before valid_from")
	}
	if _, err := c.prices.SetValidTo(ctx, id, end); err != nil {
		return nil, err
	}
	return c.prices.FindByID(ctx, id)
}

// DeletePrice hard-deletes a price version. Order lines that still point at
// it are not checked.
func (c *PriceCatalog) DeletePrice(ctx context.Context, id int64) (bool, error) {
	deleted, err := c.prices.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		c.logger.Warn("product price deleted", zap.Int64("price_id", id))
	}
	return deleted, nil
}
