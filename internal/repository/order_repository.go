package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockroom/internal/domain"
)

// OrderRepository defines the interface for order data access, including
// the transactional stock reservation workflow.
type OrderRepository interface {
	CreateOrder(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder reserves stock for the requested lines and creates the
// order and its items as one transaction.
//
// Duplicate product IDs are merged first, then the implicated product
// rows are locked in ascending ID order with a single FOR UPDATE query.
// Every concurrent caller acquires locks in that same total order, which
// rules out lock-ordering deadlocks. All quantities are validated against
// the locked stock snapshot before anything is mutated; any failure rolls
// the whole transaction back, so no partial order is ever observable.
func (r *orderRepository) CreateOrder(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error) {
	merged := domain.MergeLines(lines)
	if len(merged) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	productIDs := make([]int64, len(merged))
	for i, line := range merged {
		productIDs[i] = line.ProductID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock all implicated product rows in one statement. ORDER BY id
	// fixes the lock acquisition order across concurrent transactions.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, price, stock_quantity
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock product rows: %w", err)
	}

	locked := make(map[int64]*domain.Product, len(merged))
	for rows.Next() {
		product := &domain.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.StockQuantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		locked[product.ID] = product
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("error reading locked products: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	// Validate every line against the locked snapshot before mutating
	// anything, so a failing line leaves the other products untouched.
	for _, line := range merged {
		product, ok := locked[line.ProductID]
		if !ok {
			return nil, &domain.NotFoundError{Resource: "Product", ID: line.ProductID}
		}
		if product.StockQuantity < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQuantity,
			}
		}
	}

	order := &domain.Order{Status: domain.StatusPending}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (status)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`, order.Status).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]domain.OrderItem, 0, len(merged))
	for _, line := range merged {
		product := locked[line.ProductID]

		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2
			WHERE id = $1
		`, line.ProductID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, err)
		}

		item := domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtTime: product.Price,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item for product %d: %w", line.ProductID, err)
		}

		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return order, nil
}

// FindByID retrieves an order with its items.
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "Order", ID: id}
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.itemsForOrders(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// List retrieves a page of orders, newest first, with their items and
// the total count computed independently of the page.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	orderIDs := []int64{}
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orderIDs) > 0 {
		items, err := r.itemsForOrders(ctx, orderIDs)
		if err != nil {
			return nil, 0, err
		}
		for _, order := range orders {
			order.Items = items[order.ID]
		}
	}

	return orders, total, nil
}

// UpdateStatus applies a status transition to an order inside one
// transaction. The order row is locked for the read-modify-write so the
// transition check and the update act on the same snapshot.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order := &domain.Order{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, status, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&order.ID, &order.Status, &order.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "Order", ID: id}
		}
		return nil, fmt.Errorf("failed to load order for status update: %w", err)
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, &domain.InvalidStatusTransitionError{Current: order.Status, Requested: next}
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE id = $1
		RETURNING updated_at
	`, id, next).Scan(&order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = next

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	items, err := r.itemsForOrders(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// itemsForOrders loads the items of the given orders keyed by order ID.
func (r *orderRepository) itemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_time
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		item := domain.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtTime); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
