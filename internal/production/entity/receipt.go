package entity

import "time"

// MaterialReceipt is manufacturing's confirmation of what was physically
// received against one dispatch (1:1).
type MaterialReceipt struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:32"`
	ReceiptNumber      string    `json:"receipt_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID          string    `json:"request_id" gorm:"size:32;not null;index"`
	DispatchID         string    `json:"dispatch_id" gorm:"size:32;not null;uniqueIndex"`
	HasDiscrepancy     bool      `json:"has_discrepancy" gorm:"default:false"`
	DiscrepancyDetails string    `json:"discrepancy_details" gorm:"type:text"`
	VerificationStatus string    `json:"verification_status" gorm:"size:20;default:pending"`
	ReceivedBy         string    `json:"received_by" gorm:"size:32"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Items []ReceiptItem `json:"items,omitempty" gorm:"foreignKey:ReceiptID"`
}

func (MaterialReceipt) TableName() string {
	return "material_receipts"
}

const (
	ReceiptVerificationPending  = "pending"
	ReceiptVerificationVerified = "verified"
	ReceiptVerificationFailed   = "failed"
)

// ReceiptItem is one received material line.
type ReceiptItem struct {
	ID               string  `json:"id" gorm:"primaryKey;size:32"`
	ReceiptID        string  `json:"receipt_id" gorm:"size:32;not null;index"`
	InventoryID      string  `json:"inventory_id" gorm:"size:32;not null"`
	MaterialName     string  `json:"material_name" gorm:"size:200;not null"`
	QuantityReceived float64 `json:"quantity_received" gorm:"type:decimal(12,4);not null"`
	Unit             string  `json:"unit" gorm:"size:20;default:pcs"`
	Remarks          string  `json:"remarks" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReceiptItem) TableName() string {
	return "receipt_items"
}
