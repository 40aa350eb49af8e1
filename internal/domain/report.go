package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is a periodic snapshot of CRM totals. It is not persisted.
type Report struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AverageOrder   float64         `json:"average_order"`
	MedianOrder    float64         `json:"median_order"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
