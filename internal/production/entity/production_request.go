package entity

import "time"

// ProductionRequest is manufacturing's formal ask to produce a quantity of
// a product for a sales order. At most one non-cancelled request may exist
// per sales order.
type ProductionRequest struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	RequestNumber string     `json:"request_number" gorm:"size:32;uniqueIndex;not null"`
	SalesOrderID  *string    `json:"sales_order_id" gorm:"size:32;index"`
	CustomerPO    string     `json:"customer_po" gorm:"size:64"`
	ProductName   string     `json:"product_name" gorm:"size:200;not null"`
	StyleCode     string     `json:"style_code" gorm:"size:64"`
	Quantity      float64    `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit          string     `json:"unit" gorm:"size:20;default:pcs"`
	Priority      string     `json:"priority" gorm:"size:10;default:normal"` // low/normal/high/urgent
	RequiredDate  *time.Time `json:"required_date"`
	Status        string     `json:"status" gorm:"size:20;default:pending"`
	ReviewedBy    *string    `json:"reviewed_by" gorm:"size:32"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	ReviewNotes   string     `json:"review_notes" gorm:"type:text"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (ProductionRequest) TableName() string {
	return "production_requests"
}

const (
	RequestStatusPending      = "pending"
	RequestStatusReviewed     = "reviewed"
	RequestStatusInProduction = "in_production"
	RequestStatusCompleted    = "completed"
	RequestStatusCancelled    = "cancelled"
)
