package service

import (
	"context"
	"fmt"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptService confirms physical receipt of a dispatch. Exactly one
// receipt may exist per dispatch; creating it flips the dispatch's
// received status and, on a clean receipt, advances the owning sales
// order to materials_received.
type ReceiptService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	seq      *sequence.Generator
	notifier *notify.Dispatcher
}

func NewReceiptService(db *gorm.DB, repos *repository.Repositories, seq *sequence.Generator, notifier *notify.Dispatcher) *ReceiptService {
	return &ReceiptService{db: db, repos: repos, seq: seq, notifier: notifier}
}

type ReceiptItemInput struct {
	InventoryID  string  `json:"inventory_id" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	Remarks      string  `json:"remarks"`
}

type CreateReceiptRequest struct {
	DispatchID         string             `json:"dispatch_id" binding:"required"`
	HasDiscrepancy     bool               `json:"has_discrepancy"`
	DiscrepancyDetails string             `json:"discrepancy_details"`
	Items              []ReceiptItemInput `json:"items" binding:"required,min=1,dive"`
}

func (s *ReceiptService) Create(ctx context.Context, userID string, req *CreateReceiptRequest) (*entity.MaterialReceipt, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("receipt needs at least one item")
	}
	if req.HasDiscrepancy && req.DiscrepancyDetails == "" {
		return nil, wferr.Validation("discrepancy receipts must describe the discrepancy")
	}

	receipt := &entity.MaterialReceipt{
		ID:                 uuid.New().String()[:32],
		DispatchID:         req.DispatchID,
		HasDiscrepancy:     req.HasDiscrepancy,
		DiscrepancyDetails: req.DiscrepancyDetails,
		VerificationStatus: entity.ReceiptVerificationPending,
		ReceivedBy:         userID,
	}
	for _, it := range req.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			ID:               uuid.New().String()[:32],
			InventoryID:      it.InventoryID,
			MaterialName:     it.MaterialName,
			QuantityReceived: it.Quantity,
			Unit:             unit,
			Remarks:          it.Remarks,
		})
	}

	var mrnNumber string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipts := s.repos.Receipt.WithTx(tx)

		dispatch, err := receipts.FindDispatchForUpdate(ctx, req.DispatchID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("dispatch %s does not exist", req.DispatchID)
			}
			return err
		}
		if _, err := receipts.FindByDispatchID(ctx, dispatch.ID); err == nil {
			return wferr.Conflict("dispatch %s already has a receipt", dispatch.DispatchNumber)
		} else if err != repository.ErrNotFound {
			return err
		}

		number, err := s.seq.NextTx(ctx, tx, "RCP")
		if err != nil {
			return fmt.Errorf("failed to allocate receipt number: %w", err)
		}
		receipt.ReceiptNumber = number
		receipt.RequestID = dispatch.RequestID

		if err := receipts.Create(ctx, receipt); err != nil {
			return fmt.Errorf("failed to create receipt: %w", err)
		}

		if req.HasDiscrepancy {
			dispatch.ReceivedStatus = entity.DispatchStatusDiscrepancy
		} else {
			dispatch.ReceivedStatus = entity.DispatchStatusReceived
		}
		if err := s.repos.Dispatch.WithTx(tx).Update(ctx, dispatch); err != nil {
			return fmt.Errorf("failed to update dispatch status: %w", err)
		}

		mrn, err := s.repos.MaterialRequest.WithTx(tx).FindByID(ctx, dispatch.RequestID)
		if err != nil {
			return err
		}
		mrnNumber = mrn.RequestNumber
		if err := s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, mrn.ID, entity.MRNStatusReceived); err != nil {
			return err
		}

		if !req.HasDiscrepancy && mrn.SalesOrderID != nil {
			err := tx.WithContext(ctx).Model(&salesentity.SalesOrder{}).
				Where("id = ?", *mrn.SalesOrderID).
				Update("status", salesentity.SOStatusMaterialsReceived).Error
			if err != nil {
				return fmt.Errorf("failed to advance sales order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.HasDiscrepancy {
		s.notifier.NotifyDepartment(ctx, identity.DeptInventory, notify.Message{
			Type:        "receipt_discrepancy",
			Title:       "Receipt discrepancy reported",
			Body:        fmt.Sprintf("Receipt %s against %s reports a discrepancy: %s", receipt.ReceiptNumber, mrnNumber, req.DiscrepancyDetails),
			Priority:    notify.PriorityHigh,
			RelatedType: "material_receipt",
			RelatedID:   receipt.ID,
		})
	} else {
		s.notifier.NotifyDepartment(ctx, identity.DeptQuality, notify.Message{
			Type:        "receipt_created",
			Title:       "Materials received",
			Body:        fmt.Sprintf("Receipt %s against %s awaits verification", receipt.ReceiptNumber, mrnNumber),
			Priority:    notify.PriorityNormal,
			RelatedType: "material_receipt",
			RelatedID:   receipt.ID,
		})
	}
	return receipt, nil
}

func (s *ReceiptService) GetByID(ctx context.Context, id string) (*entity.MaterialReceipt, error) {
	rec, err := s.repos.Receipt.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("receipt %s does not exist", id)
		}
		return nil, err
	}
	return rec, nil
}

func (s *ReceiptService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReceipt, int64, error) {
	return s.repos.Receipt.FindAll(ctx, page, pageSize, filters)
}
