package entity

import "time"

// MaterialVerification records the quality check of a received material
// batch before production approval. One verification per receipt.
type MaterialVerification struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:32"`
	VerificationNumber string     `json:"verification_number" gorm:"size:32;uniqueIndex;not null"`
	ReceiptID          string     `json:"receipt_id" gorm:"size:32;not null;uniqueIndex"`
	RequestID          string     `json:"request_id" gorm:"size:32;not null;index"`
	OverallResult      string     `json:"overall_result" gorm:"size:20;not null"`
	Remarks            string     `json:"remarks" gorm:"type:text"`
	VerifiedBy         string     `json:"verified_by" gorm:"size:32"`
	VerifiedAt         *time.Time `json:"verified_at"`
	ApprovalStatus     string     `json:"approval_status" gorm:"size:20;default:pending"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Items []VerificationItem `json:"items,omitempty" gorm:"foreignKey:VerificationID"`
}

func (MaterialVerification) TableName() string {
	return "material_verifications"
}

const (
	VerificationResultPassed = "passed"
	VerificationResultFailed = "failed"
)

const (
	VerificationApprovalPending  = "pending"
	VerificationApprovalApproved = "approved"
	VerificationApprovalRejected = "rejected"
)

// VerificationItem is one checklist line of a material verification.
type VerificationItem struct {
	ID             string  `json:"id" gorm:"primaryKey;size:32"`
	VerificationID string  `json:"verification_id" gorm:"size:32;not null;index"`
	CheckName      string  `json:"check_name" gorm:"size:200;not null"`
	Passed         bool    `json:"passed" gorm:"default:false"`
	Remarks        string  `json:"remarks" gorm:"size:500"`
	QuantityOK     float64 `json:"quantity_ok" gorm:"type:decimal(12,4);default:0"`

	CreatedAt time.Time `json:"created_at"`
}

func (VerificationItem) TableName() string {
	return "verification_items"
}
