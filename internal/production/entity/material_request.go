package entity

import "time"

// MaterialRequest (MRN) is manufacturing's requisition of raw materials
// from inventory for a production run. The dispatch → receipt →
// verification → approval chain hangs off this record, and each completed
// step advances its status.
type MaterialRequest struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:32"`
	RequestNumber       string     `json:"request_number" gorm:"size:32;uniqueIndex;not null"`
	ProductionRequestID *string    `json:"production_request_id" gorm:"size:32;index"`
	SalesOrderID        *string    `json:"sales_order_id" gorm:"size:32;index"`
	RequiredDate        *time.Time `json:"required_date"`
	Status              string     `json:"status" gorm:"size:20;default:pending"`
	Notes               string     `json:"notes" gorm:"type:text"`
	RequestedBy         string     `json:"requested_by" gorm:"size:32"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Items []MaterialRequestItem `json:"items,omitempty" gorm:"foreignKey:RequestID"`
}

func (MaterialRequest) TableName() string {
	return "material_requests"
}

const (
	MRNStatusPending        = "pending"
	MRNStatusDispatched     = "dispatched"
	MRNStatusReceived       = "received"
	MRNStatusVerified       = "verified"
	MRNStatusMaterialsReady = "materials_ready"
	MRNStatusCompleted      = "completed"
	MRNStatusCancelled      = "cancelled"
)

// MaterialRequestItem is one requested material line.
type MaterialRequestItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	RequestID    string  `json:"request_id" gorm:"size:32;not null;index"`
	InventoryID  string  `json:"inventory_id" gorm:"size:32;not null"`
	MaterialName string  `json:"material_name" gorm:"size:200;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:pcs"`

	CreatedAt time.Time `json:"created_at"`
}

func (MaterialRequestItem) TableName() string {
	return "material_request_items"
}
