package entity

import "time"

// TransactionType values for stock movements.
const (
	TxTypePurchaseIn  = "PURCHASE_IN"  // GRN intake
	TxTypeDispatchOut = "DISPATCH_OUT" // material dispatch to manufacturing
	TxTypeReturnIn    = "RETURN_IN"    // post-production material return
	TxTypeAdjust      = "ADJUST"       // manual correction
)

// Inventory is one stocked raw material or trim (fabric, thread, buttons,
// zippers, labels).
type Inventory struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	MaterialCode string     `json:"material_code" gorm:"size:64;uniqueIndex;not null"`
	MaterialName string     `json:"material_name" gorm:"size:128;not null"`
	Category     string     `json:"category" gorm:"size:50"` // fabric/trim/accessory/packaging
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	ReservedQty  float64    `json:"reserved_qty" gorm:"type:decimal(12,4);default:0"`
	AvailableQty float64    `json:"available_qty" gorm:"type:decimal(12,4);default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	UnitCost     float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	SafetyStock  float64    `json:"safety_stock" gorm:"type:decimal(12,4);default:0"`
	Location     string     `json:"location" gorm:"size:64"`
	LastMovedAt  *time.Time `json:"last_moved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}

// InventoryTransaction is the append-only movement audit. Positive quantity
// is intake, negative is issue.
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	InventoryID     string    `json:"inventory_id" gorm:"size:32;not null;index"`
	MaterialCode    string    `json:"material_code" gorm:"size:64"`
	MaterialName    string    `json:"material_name" gorm:"size:128"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	ReferenceType   string    `json:"reference_type" gorm:"size:50;not null"` // GRN, DSP, MRT
	ReferenceID     string    `json:"reference_id" gorm:"size:64;not null"`
	ReferenceCode   string    `json:"reference_code" gorm:"size:50"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedBy       string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
