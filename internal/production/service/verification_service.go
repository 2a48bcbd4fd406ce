package service

import (
	"context"
	"fmt"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationService is QA's sign-off on a material receipt. One
// verification per receipt; its overall result gates production approval.
type VerificationService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	seq      *sequence.Generator
	notifier *notify.Dispatcher
}

func NewVerificationService(db *gorm.DB, repos *repository.Repositories, seq *sequence.Generator, notifier *notify.Dispatcher) *VerificationService {
	return &VerificationService{db: db, repos: repos, seq: seq, notifier: notifier}
}

type VerificationItemInput struct {
	CheckName  string  `json:"check_name" binding:"required"`
	Passed     bool    `json:"passed"`
	Remarks    string  `json:"remarks"`
	QuantityOK float64 `json:"quantity_ok" binding:"gte=0"`
}

type CreateVerificationRequest struct {
	ReceiptID string                  `json:"receipt_id" binding:"required"`
	Remarks   string                  `json:"remarks"`
	Checklist []VerificationItemInput `json:"checklist" binding:"required,min=1,dive"`
}

// Create records the verification. The overall result is derived from the
// checklist: every check must pass for the batch to pass.
func (s *VerificationService) Create(ctx context.Context, userID string, req *CreateVerificationRequest) (*entity.MaterialVerification, error) {
	if len(req.Checklist) == 0 {
		return nil, wferr.Validation("verification needs at least one checklist item")
	}

	receipt, err := s.repos.Receipt.FindByID(ctx, req.ReceiptID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("receipt %s does not exist", req.ReceiptID)
		}
		return nil, err
	}
	if _, err := s.repos.Verification.FindByReceiptID(ctx, receipt.ID); err == nil {
		return nil, wferr.Conflict("receipt %s is already verified", receipt.ReceiptNumber)
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	result := entity.VerificationResultPassed
	for _, item := range req.Checklist {
		if !item.Passed {
			result = entity.VerificationResultFailed
			break
		}
	}

	now := time.Now()
	verification := &entity.MaterialVerification{
		ID:             uuid.New().String()[:32],
		ReceiptID:      receipt.ID,
		RequestID:      receipt.RequestID,
		OverallResult:  result,
		Remarks:        req.Remarks,
		VerifiedBy:     userID,
		VerifiedAt:     &now,
		ApprovalStatus: entity.VerificationApprovalPending,
	}
	for _, it := range req.Checklist {
		verification.Items = append(verification.Items, entity.VerificationItem{
			ID:         uuid.New().String()[:32],
			CheckName:  it.CheckName,
			Passed:     it.Passed,
			Remarks:    it.Remarks,
			QuantityOK: it.QuantityOK,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "VRF")
		if err != nil {
			return fmt.Errorf("failed to allocate verification number: %w", err)
		}
		verification.VerificationNumber = number

		if err := s.repos.Verification.WithTx(tx).Create(ctx, verification); err != nil {
			return fmt.Errorf("failed to create verification: %w", err)
		}

		if result == entity.VerificationResultPassed {
			receipt.VerificationStatus = entity.ReceiptVerificationVerified
		} else {
			receipt.VerificationStatus = entity.ReceiptVerificationFailed
		}
		if err := s.repos.Receipt.WithTx(tx).Update(ctx, receipt); err != nil {
			return fmt.Errorf("failed to update receipt status: %w", err)
		}

		if result == entity.VerificationResultPassed {
			return s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, receipt.RequestID, entity.MRNStatusVerified)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result == entity.VerificationResultFailed {
		s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
			Type:        "verification_failed",
			Title:       "Material verification failed",
			Body:        fmt.Sprintf("Receipt %s failed verification, materials cannot enter production", receipt.ReceiptNumber),
			Priority:    notify.PriorityHigh,
			RelatedType: "material_verification",
			RelatedID:   verification.ID,
		})
	} else {
		s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
			Type:        "verification_passed",
			Title:       "Material verification passed",
			Body:        fmt.Sprintf("Receipt %s passed verification and awaits production approval", receipt.ReceiptNumber),
			Priority:    notify.PriorityNormal,
			RelatedType: "material_verification",
			RelatedID:   verification.ID,
		})
	}
	return verification, nil
}

func (s *VerificationService) GetByID(ctx context.Context, id string) (*entity.MaterialVerification, error) {
	v, err := s.repos.Verification.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("verification %s does not exist", id)
		}
		return nil, err
	}
	return v, nil
}

func (s *VerificationService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialVerification, int64, error) {
	return s.repos.Verification.FindAll(ctx, page, pageSize, filters)
}
