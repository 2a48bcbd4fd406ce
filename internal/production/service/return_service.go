package service

import (
	"context"
	"fmt"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	invsvc "github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnService reconciles leftover allocated material back into
// inventory once production has finished. Stock moves only on processing
// an approved return.
type ReturnService struct {
	db        *gorm.DB
	repos     *repository.Repositories
	inventory *invsvc.InventoryService
	seq       *sequence.Generator
	notifier  *notify.Dispatcher
}

func NewReturnService(db *gorm.DB, repos *repository.Repositories, inventory *invsvc.InventoryService, seq *sequence.Generator, notifier *notify.Dispatcher) *ReturnService {
	return &ReturnService{db: db, repos: repos, inventory: inventory, seq: seq, notifier: notifier}
}

type ReturnItemInput struct {
	InventoryID  string  `json:"inventory_id" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	Condition    string  `json:"condition"`
}

type CreateReturnRequest struct {
	OrderID string            `json:"order_id" binding:"required"`
	Reason  string            `json:"reason"`
	Items   []ReturnItemInput `json:"items" binding:"required,min=1,dive"`
}

// Create opens a return request. Every stage of the order must already be
// terminal (completed or skipped).
func (s *ReturnService) Create(ctx context.Context, userID string, req *CreateReturnRequest) (*entity.MaterialReturn, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("material return needs at least one item")
	}

	order, err := s.repos.Order.FindByID(ctx, req.OrderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("production order %s does not exist", req.OrderID)
		}
		return nil, err
	}
	for _, st := range order.Stages {
		if st.Status != entity.StageStatusCompleted && st.Status != entity.StageStatusSkipped {
			return nil, wferr.InvalidState("stage %s is %s, materials can only be returned after every stage completes",
				st.StageName, st.Status)
		}
	}

	ret := &entity.MaterialReturn{
		ID:          uuid.New().String()[:32],
		OrderID:     order.ID,
		RequestID:   order.RequestID,
		Status:      entity.ReturnStatusPendingApproval,
		Reason:      req.Reason,
		RequestedBy: userID,
	}
	for _, it := range req.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		condition := it.Condition
		if condition == "" {
			condition = "good"
		}
		ret.Items = append(ret.Items, entity.MaterialReturnItem{
			ID:           uuid.New().String()[:32],
			InventoryID:  it.InventoryID,
			MaterialName: it.MaterialName,
			Quantity:     it.Quantity,
			Unit:         unit,
			Condition:    condition,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "MRT")
		if err != nil {
			return fmt.Errorf("failed to allocate return number: %w", err)
		}
		ret.ReturnNumber = number
		return s.repos.Return.WithTx(tx).Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptInventory, notify.Message{
		Type:        "material_return_requested",
		Title:       "Material return requested",
		Body:        fmt.Sprintf("Return %s from order %s awaits approval", ret.ReturnNumber, order.OrderNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "material_return",
		RelatedID:   ret.ID,
	})
	return ret, nil
}

func (s *ReturnService) GetByID(ctx context.Context, id string) (*entity.MaterialReturn, error) {
	ret, err := s.repos.Return.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("material return %s does not exist", id)
		}
		return nil, err
	}
	return ret, nil
}

func (s *ReturnService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReturn, int64, error) {
	return s.repos.Return.FindAll(ctx, page, pageSize, filters)
}

// Approve accepts a pending return request.
func (s *ReturnService) Approve(ctx context.Context, userID, id string) (*entity.MaterialReturn, error) {
	return s.decide(ctx, userID, id, entity.ReturnStatusApproved)
}

// Reject declines a pending return request.
func (s *ReturnService) Reject(ctx context.Context, userID, id string) (*entity.MaterialReturn, error) {
	return s.decide(ctx, userID, id, entity.ReturnStatusRejected)
}

func (s *ReturnService) decide(ctx context.Context, userID, id, status string) (*entity.MaterialReturn, error) {
	var ret *entity.MaterialReturn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the return row so concurrent decisions serialize on its
		// status.
		var err error
		ret, err = s.repos.Return.WithTx(tx).FindForUpdate(ctx, id)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("material return %s does not exist", id)
			}
			return err
		}
		if ret.Status != entity.ReturnStatusPendingApproval {
			return wferr.InvalidState("material return %s is %s, only pending_approval returns can be decided", ret.ReturnNumber, ret.Status)
		}
		now := time.Now()
		ret.Status = status
		ret.ApprovedBy = userID
		ret.ApprovedAt = &now
		if err := s.repos.Return.WithTx(tx).Update(ctx, ret); err != nil {
			return fmt.Errorf("failed to update material return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Process restocks every item of an approved return and marks it
// returned. Stock and status move in one transaction.
func (s *ReturnService) Process(ctx context.Context, userID, id string) (*entity.MaterialReturn, error) {
	var ret *entity.MaterialReturn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ret, err = s.repos.Return.WithTx(tx).FindForUpdate(ctx, id)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("material return %s does not exist", id)
			}
			return err
		}
		if ret.Status != entity.ReturnStatusApproved {
			return wferr.InvalidState("material return %s is %s, only approved returns can be processed", ret.ReturnNumber, ret.Status)
		}

		for _, item := range ret.Items {
			err := s.inventory.AdjustStockTx(ctx, tx, item.InventoryID, item.Quantity, invsvc.StockRef{
				Type:  "MRT",
				ID:    ret.ID,
				Code:  ret.ReturnNumber,
				TxTyp: inventity.TxTypeReturnIn,
				Notes: fmt.Sprintf("leftover returned from order %s", ret.OrderID),
				By:    userID,
			})
			if err != nil {
				return err
			}
		}
		now := time.Now()
		ret.Status = entity.ReturnStatusReturned
		ret.ProcessedAt = &now
		return s.repos.Return.WithTx(tx).Update(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
		Type:        "material_return_processed",
		Title:       "Material return processed",
		Body:        fmt.Sprintf("Return %s has been restocked", ret.ReturnNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "material_return",
		RelatedID:   ret.ID,
	})
	return ret, nil
}
