package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order links a customer to a non-empty set of products.
// TotalAmount is the sum of the product prices at creation time and is never recomputed.
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CustomerID  int64           `gorm:"index;not null" json:"customer_id,string"`
	Customer    Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	Products    []Product       `gorm:"many2many:crm_order_product;" json:"products"`
	OrderDate   time.Time       `gorm:"index" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "crm_order"
}
