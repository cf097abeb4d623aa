package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a stocked catalog item. StockQuantity is never
// negative; the database enforces the same constraint with a CHECK.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
