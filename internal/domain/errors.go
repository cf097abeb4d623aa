package domain

import "fmt"

// NotFoundError indicates that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id=%d not found", e.Resource, e.ID)
}

// InsufficientStockError indicates that a requested quantity exceeds the
// available stock of a product. It carries enough detail for the caller
// to report which product failed and by how much.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id=%d): requested=%d, available=%d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// InvalidStatusTransitionError indicates an order status change that is
// not permitted by the transition table.
type InvalidStatusTransitionError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order status from %q to %q", e.Current, e.Requested)
}

// ConflictError indicates a state conflict that the caller may resolve
// by retrying or reloading.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
