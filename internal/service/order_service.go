package service

import (
	"context"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/repository"
)

// OrderService defines the interface for order business logic.
type OrderService interface {
	CreateOrder(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, int, int, int, error)
	UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	defaultLimit int
	maxLimit     int
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(orderRepo repository.OrderRepository, defaultLimit, maxLimit int) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// CreateOrder places an order for the requested lines. Stock reservation,
// duplicate merging and rollback semantics live in the repository so they
// share one transaction; domain errors pass through for the transport
// layer to map.
func (s *orderService) CreateOrder(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	return s.orderRepo.CreateOrder(ctx, lines)
}

// GetOrder retrieves an order by ID.
func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders returns a page of orders, newest first, plus the total count
// and the effective limit and offset after clamping.
func (s *orderService) ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, int, int, int, error) {
	limit, offset = clampPage(limit, offset, s.defaultLimit, s.maxLimit)

	orders, total, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, limit, offset, nil
}

// UpdateStatus applies a status transition to an order.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	return s.orderRepo.UpdateStatus(ctx, id, next)
}
