package entity

import "time"

// MaterialReturn sends leftover material back to inventory after all
// production stages of the order have completed.
type MaterialReturn struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ReturnNumber string     `json:"return_number" gorm:"size:32;uniqueIndex;not null"`
	OrderID      string     `json:"order_id" gorm:"size:32;not null;index"`
	RequestID    string     `json:"request_id" gorm:"size:32;index"`
	Status       string     `json:"status" gorm:"size:20;default:pending_approval"`
	Reason       string     `json:"reason" gorm:"size:500"`
	RequestedBy  string     `json:"requested_by" gorm:"size:32"`
	ApprovedBy   string     `json:"approved_by" gorm:"size:32"`
	ApprovedAt   *time.Time `json:"approved_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Items []MaterialReturnItem `json:"items,omitempty" gorm:"foreignKey:ReturnID"`
}

func (MaterialReturn) TableName() string {
	return "material_returns"
}

const (
	ReturnStatusPendingApproval = "pending_approval"
	ReturnStatusApproved        = "approved"
	ReturnStatusRejected        = "rejected"
	ReturnStatusReturned        = "returned"
)

// MaterialReturnItem is one leftover material line being sent back.
type MaterialReturnItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	ReturnID     string  `json:"return_id" gorm:"size:32;not null;index"`
	InventoryID  string  `json:"inventory_id" gorm:"size:32;not null"`
	MaterialName string  `json:"material_name" gorm:"size:200;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:pcs"`
	Condition    string  `json:"condition" gorm:"size:50;default:good"`

	CreatedAt time.Time `json:"created_at"`
}

func (MaterialReturnItem) TableName() string {
	return "material_return_items"
}
