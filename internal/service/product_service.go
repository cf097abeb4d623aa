package service

import (
	"context"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService defines the interface for product business logic.
type ProductService interface {
	CreateProduct(ctx context.Context, name string, price decimal.Decimal, stockQuantity int) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, int, int, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	defaultLimit int
	maxLimit     int
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo repository.ProductRepository, defaultLimit, maxLimit int) ProductService {
	return &productService{
		productRepo:  productRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// CreateProduct inserts a new product into the catalog.
func (s *productService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, stockQuantity int) (*domain.Product, error) {
	product := &domain.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stockQuantity,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts returns a page of products plus the total count and the
// effective limit and offset after clamping.
func (s *productService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, int, int, error) {
	limit, offset = clampPage(limit, offset, s.defaultLimit, s.maxLimit)

	products, total, err := s.productRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, limit, offset, nil
}

// clampPage normalizes pagination parameters: a non-positive limit falls
// back to the default, the limit is capped at max, and a negative offset
// becomes zero.
func clampPage(limit, offset, defaultLimit, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
