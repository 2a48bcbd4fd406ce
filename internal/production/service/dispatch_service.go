package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/config"
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

// DispatchService issues material from inventory to manufacturing against
// an MRN. Stock is deducted in the same transaction that creates the
// dispatch.
type DispatchService struct {
	db        *gorm.DB
	repos     *repository.Repositories
	inventory *invsvc.InventoryService
	seq       *sequence.Generator
	notifier  *notify.Dispatcher
	workflow  config.WorkflowConfig
}

func NewDispatchService(db *gorm.DB, repos *repository.Repositories, inventory *invsvc.InventoryService, seq *sequence.Generator, notifier *notify.Dispatcher, workflow config.WorkflowConfig) *DispatchService {
	return &DispatchService{db: db, repos: repos, inventory: inventory, seq: seq, notifier: notifier, workflow: workflow}
}

type DispatchItemInput struct {
	InventoryID  string  `json:"inventory_id" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
}

type CreateDispatchRequest struct {
	RequestID string              `json:"request_id" binding:"required"`
	Notes     string              `json:"notes"`
	Items     []DispatchItemInput `json:"items" binding:"required,min=1,dive"`
}

func (s *DispatchService) Create(ctx context.Context, userID string, req *CreateDispatchRequest) (*entity.MaterialDispatch, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("dispatch needs at least one item")
	}

	dispatch := &entity.MaterialDispatch{
		ID:             uuid.New().String()[:32],
		RequestID:      req.RequestID,
		ReceivedStatus: entity.DispatchStatusPending,
		DispatchDate:   time.Now(),
		Notes:          req.Notes,
		DispatchedBy:   userID,
	}
	for _, it := range req.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		dispatch.Items = append(dispatch.Items, entity.DispatchItem{
			ID:                 uuid.New().String()[:32],
			InventoryID:        it.InventoryID,
			MaterialName:       it.MaterialName,
			QuantityDispatched: it.Quantity,
			Unit:               unit,
		})
	}

	var mrn *entity.MaterialRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the request row so concurrent dispatches against the same
		// MRN serialize before the active-dispatch check.
		var err error
		mrn, err = s.repos.MaterialRequest.WithTx(tx).FindForUpdate(ctx, req.RequestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("material request %s does not exist", req.RequestID)
			}
			return err
		}
		if mrn.Status == entity.MRNStatusCancelled {
			return wferr.InvalidState("material request %s is cancelled and cannot be dispatched", mrn.RequestNumber)
		}

		if !s.workflow.AllowMultipleDispatchesPerRequest {
			active, err := s.repos.Dispatch.WithTx(tx).CountActiveForRequest(ctx, mrn.ID)
			if err != nil {
				return err
			}
			if active > 0 {
				return wferr.Conflict("material request %s already has a dispatch awaiting receipt", mrn.RequestNumber)
			}
		}

		number, err := s.seq.NextTx(ctx, tx, "DSP")
		if err != nil {
			return fmt.Errorf("failed to allocate dispatch number: %w", err)
		}
		dispatch.DispatchNumber = number

		if err := s.repos.Dispatch.WithTx(tx).Create(ctx, dispatch); err != nil {
			return fmt.Errorf("failed to create dispatch: %w", err)
		}

		for _, item := range dispatch.Items {
			err := s.inventory.AdjustStockTx(ctx, tx, item.InventoryID, -item.QuantityDispatched, invsvc.StockRef{
				Type:  "DSP",
				ID:    dispatch.ID,
				Code:  dispatch.DispatchNumber,
				TxTyp: inventity.TxTypeDispatchOut,
				Notes: fmt.Sprintf("dispatched against %s", mrn.RequestNumber),
				By:    userID,
			})
			if err != nil {
				return err
			}
		}

		return s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, mrn.ID, entity.MRNStatusDispatched)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
		Type:        "material_dispatched",
		Title:       "Materials dispatched",
		Body:        fmt.Sprintf("Dispatch %s for %s is on its way, confirm receipt", dispatch.DispatchNumber, mrn.RequestNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "material_dispatch",
		RelatedID:   dispatch.ID,
	})
	return dispatch, nil
}

func (s *DispatchService) GetByID(ctx context.Context, id string) (*entity.MaterialDispatch, error) {
	d, err := s.repos.Dispatch.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("dispatch %s does not exist", id)
		}
		return nil, err
	}
	return d, nil
}

func (s *DispatchService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialDispatch, int64, error) {
	return s.repos.Dispatch.FindAll(ctx, page, pageSize, filters)
}
