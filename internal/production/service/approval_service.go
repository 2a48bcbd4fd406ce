package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/config"
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

// ApprovalService is the manager gate between verified materials and the
// shop floor. Approval requires a passed verification; starting production
// seeds the stage sequence for the new order.
type ApprovalService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	seq      *sequence.Generator
	notifier *notify.Dispatcher
	workflow config.WorkflowConfig
}

func NewApprovalService(db *gorm.DB, repos *repository.Repositories, seq *sequence.Generator, notifier *notify.Dispatcher, workflow config.WorkflowConfig) *ApprovalService {
	return &ApprovalService{db: db, repos: repos, seq: seq, notifier: notifier, workflow: workflow}
}

type AllocationInput struct {
	InventoryID  string  `json:"inventory_id" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
}

type CreateApprovalRequest struct {
	VerificationID string            `json:"verification_id" binding:"required"`
	Decision       string            `json:"decision" binding:"required,oneof=approved rejected"`
	Remarks        string            `json:"remarks"`
	Allocations    []AllocationInput `json:"allocations" binding:"dive"`
}

func (s *ApprovalService) Create(ctx context.Context, userID string, req *CreateApprovalRequest) (*entity.ProductionApproval, error) {
	verification, err := s.repos.Verification.FindByID(ctx, req.VerificationID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("verification %s does not exist", req.VerificationID)
		}
		return nil, err
	}
	if req.Decision == entity.ApprovalStatusApproved && verification.OverallResult != entity.VerificationResultPassed {
		return nil, wferr.InvalidState("cannot approve materials that failed verification")
	}
	if verification.ApprovalStatus != entity.VerificationApprovalPending {
		return nil, wferr.InvalidState("verification %s is already %s", verification.ID, verification.ApprovalStatus)
	}
	if _, err := s.repos.Approval.FindByRequestID(ctx, verification.RequestID); err == nil {
		return nil, wferr.Conflict("material request %s already has a production approval", verification.RequestID)
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	now := time.Now()
	approval := &entity.ProductionApproval{
		ID:             uuid.New().String()[:32],
		RequestID:      verification.RequestID,
		VerificationID: verification.ID,
		Status:         req.Decision,
		Remarks:        req.Remarks,
		ApprovedBy:     userID,
		ApprovedAt:     &now,
	}
	if req.Decision == entity.ApprovalStatusApproved {
		for _, a := range req.Allocations {
			unit := a.Unit
			if unit == "" {
				unit = "pcs"
			}
			approval.Allocations = append(approval.Allocations, entity.MaterialAllocation{
				ID:                uuid.New().String()[:32],
				InventoryID:       a.InventoryID,
				MaterialName:      a.MaterialName,
				QuantityAllocated: a.Quantity,
				Unit:              unit,
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "APR")
		if err != nil {
			return fmt.Errorf("failed to allocate approval number: %w", err)
		}
		approval.ApprovalNumber = number

		if err := s.repos.Approval.WithTx(tx).Create(ctx, approval); err != nil {
			return fmt.Errorf("failed to create approval: %w", err)
		}

		verification.ApprovalStatus = req.Decision
		if err := s.repos.Verification.WithTx(tx).Update(ctx, verification); err != nil {
			return fmt.Errorf("failed to update verification: %w", err)
		}

		mrnStatus := entity.MRNStatusMaterialsReady
		if req.Decision == entity.ApprovalStatusRejected {
			mrnStatus = entity.MRNStatusCancelled
		}
		return s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, verification.RequestID, mrnStatus)
	})
	if err != nil {
		return nil, err
	}

	if req.Decision == entity.ApprovalStatusApproved {
		s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
			Type:        "production_approved",
			Title:       "Production approved",
			Body:        fmt.Sprintf("Approval %s granted, materials are ready for production", approval.ApprovalNumber),
			Priority:    notify.PriorityHigh,
			RelatedType: "production_approval",
			RelatedID:   approval.ID,
		})
	} else {
		s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
			Type:        "production_rejected",
			Title:       "Production approval rejected",
			Body:        fmt.Sprintf("Approval %s was rejected: %s", approval.ApprovalNumber, req.Remarks),
			Priority:    notify.PriorityHigh,
			RelatedType: "production_approval",
			RelatedID:   approval.ID,
		})
	}
	return approval, nil
}

type StartProductionRequest struct {
	ProductName      string  `json:"product_name"`
	Quantity         float64 `json:"quantity" binding:"required,gt=0"`
	PlannedStartDate string  `json:"planned_start_date"` // YYYY-MM-DD
	PlannedEndDate   string  `json:"planned_end_date"`   // YYYY-MM-DD
}

// StartProduction flips the approval's production_started flag, closes the
// MRN, and creates the production order with its full stage sequence in
// pending state.
func (s *ApprovalService) StartProduction(ctx context.Context, userID, approvalID string, req *StartProductionRequest) (*entity.ProductionOrder, error) {
	var plannedStart, plannedEnd *time.Time
	if req.PlannedStartDate != "" {
		t, perr := time.Parse("2006-01-02", req.PlannedStartDate)
		if perr != nil {
			return nil, wferr.Validation("planned_start_date %q is not a valid YYYY-MM-DD date", req.PlannedStartDate)
		}
		plannedStart = &t
	}
	if req.PlannedEndDate != "" {
		t, perr := time.Parse("2006-01-02", req.PlannedEndDate)
		if perr != nil {
			return nil, wferr.Validation("planned_end_date %q is not a valid YYYY-MM-DD date", req.PlannedEndDate)
		}
		plannedEnd = &t
	}

	var order *entity.ProductionOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the approval row so two concurrent starts cannot both pass
		// the production_started gate.
		approval, err := s.repos.Approval.WithTx(tx).FindForUpdate(ctx, approvalID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("approval %s does not exist", approvalID)
			}
			return err
		}
		if approval.Status != entity.ApprovalStatusApproved {
			return wferr.InvalidState("approval %s is %s, production requires an approved gate", approval.ApprovalNumber, approval.Status)
		}
		if approval.ProductionStarted {
			return wferr.InvalidState("production for approval %s has already started", approval.ApprovalNumber)
		}

		mrn, err := s.repos.MaterialRequest.WithTx(tx).FindByID(ctx, approval.RequestID)
		if err != nil {
			return err
		}

		order = &entity.ProductionOrder{
			ID:               uuid.New().String()[:32],
			RequestID:        mrn.ID,
			ApprovalID:       approval.ID,
			ProductName:      req.ProductName,
			QuantityPlanned:  req.Quantity,
			Status:           entity.ProductionOrderInProgress,
			PlannedStartDate: plannedStart,
			PlannedEndDate:   plannedEnd,
			CreatedBy:        userID,
		}
		if mrn.SalesOrderID != nil {
			order.SalesOrderID = *mrn.SalesOrderID
		}

		stageNames := s.workflow.StageSequence
		if len(stageNames) == 0 {
			stageNames = config.DefaultStageSequence
		}
		for i, name := range stageNames {
			order.Stages = append(order.Stages, entity.ProductionStage{
				ID:               uuid.New().String()[:32],
				StageName:        name,
				StageOrder:       i + 1,
				Status:           entity.StageStatusPending,
				ReworkIteration:  1,
				PlannedStartDate: order.PlannedStartDate,
				PlannedEndDate:   order.PlannedEndDate,
			})
		}

		number, err := s.seq.NextTx(ctx, tx, "PRD")
		if err != nil {
			return fmt.Errorf("failed to allocate production order number: %w", err)
		}
		order.OrderNumber = number

		if err := s.repos.Order.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create production order: %w", err)
		}

		approval.ProductionStarted = true
		if err := s.repos.Approval.WithTx(tx).Update(ctx, approval); err != nil {
			return fmt.Errorf("failed to update approval: %w", err)
		}

		if err := s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, mrn.ID, entity.MRNStatusCompleted); err != nil {
			return err
		}

		if mrn.ProductionRequestID != nil {
			err := tx.WithContext(ctx).Model(&entity.ProductionRequest{}).
				Where("id = ?", *mrn.ProductionRequestID).
				Update("status", entity.RequestStatusInProduction).Error
			if err != nil {
				return fmt.Errorf("failed to advance production request: %w", err)
			}
		}
		if mrn.SalesOrderID != nil {
			err := tx.WithContext(ctx).Model(&salesentity.SalesOrder{}).
				Where("id = ?", *mrn.SalesOrderID).
				Update("status", salesentity.SOStatusInProduction).Error
			if err != nil {
				return fmt.Errorf("failed to advance sales order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
		Type:        "production_started",
		Title:       "Production started",
		Body:        fmt.Sprintf("Production order %s created with %d stages", order.OrderNumber, len(order.Stages)),
		Priority:    notify.PriorityNormal,
		RelatedType: "production_order",
		RelatedID:   order.ID,
	})
	return order, nil
}

func (s *ApprovalService) GetByID(ctx context.Context, id string) (*entity.ProductionApproval, error) {
	a, err := s.repos.Approval.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("approval %s does not exist", id)
		}
		return nil, err
	}
	return a, nil
}

func (s *ApprovalService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionApproval, int64, error) {
	return s.repos.Approval.FindAll(ctx, page, pageSize, filters)
}
