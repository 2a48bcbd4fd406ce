package entity

import "time"

// GoodsReceiptNote records a physical delivery against a purchase order.
// Verification posts accepted quantities into inventory; receiving more
// than was ordered raises a CreditNote for the overage instead of turning
// the delivery away.
type GoodsReceiptNote struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	GRNNumber     string     `json:"grn_number" gorm:"size:32;uniqueIndex;not null"`
	POID          string     `json:"po_id" gorm:"size:32;not null;index"`
	Status        string     `json:"status" gorm:"size:20;default:pending"`
	ReceivedDate  time.Time  `json:"received_date"`
	InvoiceNumber string     `json:"invoice_number" gorm:"size:64"`
	Notes         string     `json:"notes" gorm:"type:text"`
	VerifiedBy    *string    `json:"verified_by" gorm:"size:32"`
	VerifiedAt    *time.Time `json:"verified_at"`
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Items []GRNItem `json:"items,omitempty" gorm:"foreignKey:GRNID"`
}

func (GoodsReceiptNote) TableName() string {
	return "goods_receipt_notes"
}

const (
	GRNStatusPending  = "pending"
	GRNStatusVerified = "verified"
	GRNStatusRejected = "rejected"
)

// GRNItem is one delivered material line.
type GRNItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	GRNID        string  `json:"grn_id" gorm:"size:32;not null;index"`
	POItemID     string  `json:"po_item_id" gorm:"size:32;not null"`
	InventoryID  *string `json:"inventory_id" gorm:"size:32"`
	MaterialCode string  `json:"material_code" gorm:"size:64"`
	MaterialName string  `json:"material_name" gorm:"size:200;not null"`
	OrderedQty   float64 `json:"ordered_qty" gorm:"type:decimal(12,4);not null"`
	ReceivedQty  float64 `json:"received_qty" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice    float64 `json:"unit_price" gorm:"type:decimal(12,4);default:0"`

	CreatedAt time.Time `json:"created_at"`
}

func (GRNItem) TableName() string {
	return "grn_items"
}

// CreditNote is the financial record raised when a delivery exceeds the
// ordered quantity.
type CreditNote struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	CreditNoteNumber string     `json:"credit_note_number" gorm:"size:32;uniqueIndex;not null"`
	GRNID            string     `json:"grn_id" gorm:"size:32;not null;index"`
	POID             string     `json:"po_id" gorm:"size:32;not null;index"`
	SupplierName     string     `json:"supplier_name" gorm:"size:200"`
	Amount           float64    `json:"amount" gorm:"type:decimal(15,2);not null"`
	Reason           string     `json:"reason" gorm:"type:text"`
	Status           string     `json:"status" gorm:"size:20;default:pending"`
	ApprovedBy       *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt       *time.Time `json:"approved_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (CreditNote) TableName() string {
	return "credit_notes"
}

const (
	CreditNoteStatusPending  = "pending"
	CreditNoteStatusApproved = "approved"
	CreditNoteStatusSettled  = "settled"
)
