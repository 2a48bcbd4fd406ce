package entity

import "time"

// MaterialDispatch is one dispatch event of material lines from inventory
// to manufacturing, tied to exactly one material request. Only the
// corresponding receipt step mutates it.
type MaterialDispatch struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	DispatchNumber string    `json:"dispatch_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID      string    `json:"request_id" gorm:"size:32;not null;index"`
	ReceivedStatus string    `json:"received_status" gorm:"size:20;default:pending"`
	DispatchDate   time.Time `json:"dispatch_date"`
	Notes          string    `json:"notes" gorm:"type:text"`
	DispatchedBy   string    `json:"dispatched_by" gorm:"size:32"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Items []DispatchItem `json:"items,omitempty" gorm:"foreignKey:DispatchID"`
}

func (MaterialDispatch) TableName() string {
	return "material_dispatches"
}

const (
	DispatchStatusPending     = "pending"
	DispatchStatusReceived    = "received"
	DispatchStatusDiscrepancy = "discrepancy"
)

// DispatchItem is one dispatched material line with its inventory
// reference.
type DispatchItem struct {
	ID                 string  `json:"id" gorm:"primaryKey;size:32"`
	DispatchID         string  `json:"dispatch_id" gorm:"size:32;not null;index"`
	InventoryID        string  `json:"inventory_id" gorm:"size:32;not null"`
	MaterialName       string  `json:"material_name" gorm:"size:200;not null"`
	QuantityDispatched float64 `json:"quantity_dispatched" gorm:"type:decimal(12,4);not null"`
	Unit               string  `json:"unit" gorm:"size:20;default:pcs"`

	CreatedAt time.Time `json:"created_at"`
}

func (DispatchItem) TableName() string {
	return "dispatch_items"
}
