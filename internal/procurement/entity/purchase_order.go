package entity

import "time"

// PurchaseOrder is procurement's commitment to a supplier, normally raised
// against a reviewed production request.
type PurchaseOrder struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:32"`
	PONumber            string     `json:"po_number" gorm:"size:32;uniqueIndex;not null"`
	ProductionRequestID *string    `json:"production_request_id" gorm:"size:32;index"`
	SalesOrderID        *string    `json:"sales_order_id" gorm:"size:32;index"`
	SupplierName        string     `json:"supplier_name" gorm:"size:200;not null"`
	Status              string     `json:"status" gorm:"size:20;default:draft"`
	TotalAmount         float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	Currency            string     `json:"currency" gorm:"size:10;default:INR"`
	ExpectedDate        *time.Time `json:"expected_date"`
	PaymentTerms        string     `json:"payment_terms" gorm:"size:100"`
	Notes               string     `json:"notes" gorm:"type:text"`
	CreatedBy           string     `json:"created_by" gorm:"size:32"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Items []POItem `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

const (
	POStatusDraft             = "draft"
	POStatusSent              = "sent"
	POStatusPartiallyReceived = "partially_received"
	POStatusReceived          = "received"
	POStatusCompleted         = "completed"
	POStatusCancelled         = "cancelled"
)

// POItem is one ordered material line.
type POItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	POID         string  `json:"po_id" gorm:"size:32;not null;index"`
	InventoryID  *string `json:"inventory_id" gorm:"size:32"`
	MaterialCode string  `json:"material_code" gorm:"size:64"`
	MaterialName string  `json:"material_name" gorm:"size:200;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice    float64 `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	ReceivedQty  float64 `json:"received_qty" gorm:"type:decimal(12,4);default:0"`
	SortOrder    int     `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (POItem) TableName() string {
	return "po_items"
}
