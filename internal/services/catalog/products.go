package catalog

import (
	"context"
	"strings"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database/models"

	"go.uber.org/zap"
)

type ProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	ProductTypeID *int64  `json:"product_type_id,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type ProductDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ProductTypeID *int64    `json:"product_type_id"`
	Active        bool      `json:"active"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductTypeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type ProductTypeDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		ProductTypeID: p.ProductTypeID,
		Active:        p.Active,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProductTypeDTO(t models.ProductType) ProductTypeDTO {
	return ProductTypeDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// ProductService is the plain CRUD surface over products and product types.
type ProductService struct {
	store  *ProductStore
	logger *zap.Logger
}

func NewProductService(store *ProductStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{store: store, logger: logger}
}

func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation(apperr.CodeValidation, "name is required")
	}
	if req.ProductTypeID != nil {
		if _, err := s.store.FindTypeByID(ctx, *req.ProductTypeID); err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Validation(apperr.CodeProductTypeNotFound, "product type not found")
			}
			return nil, err
		}
	}

	product := &models.Product{
		Name:          name,
		ProductTypeID: req.ProductTypeID,
		Active:        true,
		Notes:         req.Notes,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err := s.store.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int64("product_id", product.ID), zap.String("name", name))
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *ProductService) ListProducts(ctx context.Context, active *bool) ([]ProductDTO, error) {
	products, err := s.store.List(ctx, active)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out, nil
}

func (s *ProductService) CreateProductType(ctx context.Context, req ProductTypeRequest) (*ProductTypeDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation(apperr.CodeValidation, "name is required")
	}
	productType := &models.ProductType{Name: name, Description: req.Description}
	if err := s.store.CreateType(ctx, productType); err != nil {
		return nil, err
	}
	dto := toProductTypeDTO(*productType)
	return &dto, nil
}

func (s *ProductService) ListProductTypes(ctx context.Context) ([]ProductTypeDTO, error) {
	types, err := s.store.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, toProductTypeDTO(t))
	}
	return out, nil
}
