package entity

import "time"

// SalesOrder is the customer order a production run ultimately serves. The
// workflow advances its status as materials and production progress; the
// order itself is never deleted.
type SalesOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	OrderNumber  string     `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	CustomerName string     `json:"customer_name" gorm:"size:200;not null"`
	ProductName  string     `json:"product_name" gorm:"size:200;not null"`
	StyleCode    string     `json:"style_code" gorm:"size:64"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit         string     `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice    float64    `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Status       string     `json:"status" gorm:"size:30;default:pending"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

const (
	SOStatusPending           = "pending"
	SOStatusConfirmed         = "confirmed"
	SOStatusInProcurement     = "in_procurement"
	SOStatusMaterialsReceived = "materials_received"
	SOStatusInProduction      = "in_production"
	SOStatusCompleted         = "completed"
	SOStatusShipped           = "shipped"
	SOStatusCancelled         = "cancelled"
)
