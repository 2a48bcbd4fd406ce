package entity

import "time"

// ProductionApproval is the manufacturing sign-off that verified materials
// may enter production. One approval per material request.
type ProductionApproval struct {
	ID                string     `json:"id" gorm:"primaryKey;size:32"`
	ApprovalNumber    string     `json:"approval_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID         string     `json:"request_id" gorm:"size:32;not null;uniqueIndex"`
	VerificationID    string     `json:"verification_id" gorm:"size:32;not null"`
	Status            string     `json:"status" gorm:"size:20;default:pending"`
	Remarks           string     `json:"remarks" gorm:"type:text"`
	ApprovedBy        string     `json:"approved_by" gorm:"size:32"`
	ApprovedAt        *time.Time `json:"approved_at"`
	ProductionStarted bool       `json:"production_started" gorm:"default:false"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Allocations []MaterialAllocation `json:"allocations,omitempty" gorm:"foreignKey:ApprovalID"`
}

func (ProductionApproval) TableName() string {
	return "production_approvals"
}

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// MaterialAllocation earmarks a quantity of received material for the
// approved production run.
type MaterialAllocation struct {
	ID                string  `json:"id" gorm:"primaryKey;size:32"`
	ApprovalID        string  `json:"approval_id" gorm:"size:32;not null;index"`
	InventoryID       string  `json:"inventory_id" gorm:"size:32;not null"`
	MaterialName      string  `json:"material_name" gorm:"size:200;not null"`
	QuantityAllocated float64 `json:"quantity_allocated" gorm:"type:decimal(12,4);not null"`
	Unit              string  `json:"unit" gorm:"size:20;default:pcs"`

	CreatedAt time.Time `json:"created_at"`
}

func (MaterialAllocation) TableName() string {
	return "material_allocations"
}
