package domain

import "time"

// Customer is a CRM contact. Email is unique across all customers.
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "crm_customer"
}
