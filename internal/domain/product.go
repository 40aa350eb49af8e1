package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Price is kept as a fixed point decimal.
type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name      string          `gorm:"size:200;index;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0;index" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "crm_product"
}
