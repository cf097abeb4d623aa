package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order states.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
)

// allowedTransitions maps each status to the set of legal next statuses.
// Shipped and Cancelled are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return allowedTransitions[s][next]
}

// Order represents a customer order and its line items.
type Order struct {
	ID        int64       `json:"id" db:"id"`
	Status    OrderStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
	Items     []OrderItem `json:"items"`
}

// OrderItem is a single line of an order. PriceAtTime is a snapshot of
// the product price taken when the order was created and is never
// recomputed from the product row.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time" db:"price_at_time"`
}

// OrderLine is a requested (product, quantity) pair in an incoming order.
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// MergeLines collapses duplicate product IDs by summing their quantities
// and returns the result sorted by product ID ascending. Locking product
// rows in this sorted order gives every concurrent caller the same lock
// acquisition order, so overlapping orders cannot deadlock.
func MergeLines(lines []OrderLine) []OrderLine {
	quantities := make(map[int64]int, len(lines))
	for _, line := range lines {
		quantities[line.ProductID] += line.Quantity
	}

	merged := make([]OrderLine, 0, len(quantities))
	for productID, quantity := range quantities {
		merged = append(merged, OrderLine{ProductID: productID, Quantity: quantity})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID < merged[j].ProductID
	})

	return merged
}
