package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories is the production repository set.
type Repositories struct {
	Request         *RequestRepository
	MaterialRequest *MaterialRequestRepository
	Dispatch        *DispatchRepository
	Receipt         *ReceiptRepository
	Verification    *VerificationRepository
	Approval        *ApprovalRepository
	Order           *OrderRepository
	Return          *ReturnRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Request:         NewRequestRepository(db),
		MaterialRequest: NewMaterialRequestRepository(db),
		Dispatch:        NewDispatchRepository(db),
		Receipt:         NewReceiptRepository(db),
		Verification:    NewVerificationRepository(db),
		Approval:        NewApprovalRepository(db),
		Order:           NewOrderRepository(db),
		Return:          NewReturnRepository(db),
	}
}
