package service

import (
	"context"
	"fmt"
	"math"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StageService runs the shop-floor state machine. Every transition locks
// the rows it reads so ordering and rollups hold under concurrent calls:
// stage ordering is checked against live row state, never a cached view.
type StageService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	notifier *notify.Dispatcher
}

func NewStageService(db *gorm.DB, repos *repository.Repositories, notifier *notify.Dispatcher) *StageService {
	return &StageService{db: db, repos: repos, notifier: notifier}
}

func (s *StageService) GetOrder(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	o, err := s.repos.Order.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("production order %s does not exist", id)
		}
		return nil, err
	}
	return o, nil
}

func (s *StageService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionOrder, int64, error) {
	return s.repos.Order.FindAll(ctx, page, pageSize, filters)
}

func frozenGuard(stage *entity.ProductionStage) error {
	if stage.IsFrozen {
		return wferr.InvalidState("stage %s is frozen pending supervisor review, unfreeze the order first", stage.StageName)
	}
	return nil
}

// Start moves a stage into in_progress. The stage must be pending or
// on_hold and every lower-order stage of the same order must already be
// completed or skipped.
func (s *StageService) Start(ctx context.Context, userID, stageID string) (*entity.ProductionStage, error) {
	var stage *entity.ProductionStage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)

		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if err := frozenGuard(st); err != nil {
			return err
		}
		if st.Status != entity.StageStatusPending && st.Status != entity.StageStatusOnHold {
			return wferr.InvalidState("stage %s is %s, only pending or on_hold stages can start", st.StageName, st.Status)
		}

		siblings, err := orders.FindStagesForUpdate(ctx, st.OrderID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.StageOrder >= st.StageOrder {
				continue
			}
			if sib.Status != entity.StageStatusCompleted && sib.Status != entity.StageStatusSkipped {
				return wferr.InvalidState("stage %s cannot start: earlier stage %s is %s, not completed or skipped",
					st.StageName, sib.StageName, sib.Status)
			}
		}

		now := time.Now()
		st.Status = entity.StageStatusInProgress
		if st.ActualStartDate == nil {
			st.ActualStartDate = &now
		}
		st.AssignedTo = userID
		if err := orders.UpdateStage(ctx, st); err != nil {
			return fmt.Errorf("failed to start stage: %w", err)
		}

		order, err := orders.FindByIDForUpdate(ctx, st.OrderID)
		if err != nil {
			return err
		}
		if order.ActualStartDate == nil {
			order.ActualStartDate = &now
			if err := orders.Update(ctx, order); err != nil {
				return fmt.Errorf("failed to stamp order start: %w", err)
			}
		}

		stage = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// Pause suspends an in_progress stage.
func (s *StageService) Pause(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	return s.simpleTransition(ctx, stageID, entity.StageStatusPaused,
		[]string{entity.StageStatusInProgress}, "only in_progress stages can pause")
}

// Resume continues a suspended stage.
func (s *StageService) Resume(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	return s.simpleTransition(ctx, stageID, entity.StageStatusInProgress,
		[]string{entity.StageStatusOnHold, entity.StageStatusPaused}, "only on_hold or paused stages can resume")
}

// Hold parks a stage that has hit a blocker.
func (s *StageService) Hold(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	return s.simpleTransition(ctx, stageID, entity.StageStatusOnHold,
		[]string{entity.StageStatusPending, entity.StageStatusInProgress}, "only pending or in_progress stages can go on hold")
}

func (s *StageService) simpleTransition(ctx context.Context, stageID, target string, from []string, reason string) (*entity.ProductionStage, error) {
	var stage *entity.ProductionStage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if err := frozenGuard(st); err != nil {
			return err
		}
		allowed := false
		for _, f := range from {
			if st.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			return wferr.InvalidState("stage %s is %s, %s", st.StageName, st.Status, reason)
		}
		st.Status = target
		if err := orders.UpdateStage(ctx, st); err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}
		stage = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// Skip marks a stage as not applicable to this order. Terminal.
func (s *StageService) Skip(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	var stage *entity.ProductionStage
	var rollup rollupResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if err := frozenGuard(st); err != nil {
			return err
		}
		if st.Status != entity.StageStatusPending && st.Status != entity.StageStatusOnHold {
			return wferr.InvalidState("stage %s is %s, only pending or on_hold stages can be skipped", st.StageName, st.Status)
		}
		st.Status = entity.StageStatusSkipped
		if err := orders.UpdateStage(ctx, st); err != nil {
			return fmt.Errorf("failed to skip stage: %w", err)
		}
		rollup, err = s.recomputeOrderTx(ctx, tx, st.OrderID)
		if err != nil {
			return err
		}
		stage = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyOrderCompleted(ctx, rollup)
	return stage, nil
}

type CompleteStageRequest struct {
	QuantityProcessed float64 `json:"quantity_processed" binding:"required,gt=0"`
	QuantityApproved  float64 `json:"quantity_approved" binding:"gte=0"`
	QuantityRejected  float64 `json:"quantity_rejected" binding:"gte=0"`
	Notes             string  `json:"notes"`
}

// Complete finishes an in_progress stage, records its quantities, runs
// late detection, and recomputes the order rollup. Completing a stage
// after its planned end freezes it until a supervisor unfreezes the order.
func (s *StageService) Complete(ctx context.Context, userID, stageID string, req *CompleteStageRequest) (*entity.ProductionStage, error) {
	if req.QuantityApproved+req.QuantityRejected > req.QuantityProcessed {
		return nil, wferr.Validation("approved (%.4f) plus rejected (%.4f) quantities cannot exceed processed (%.4f)",
			req.QuantityApproved, req.QuantityRejected, req.QuantityProcessed)
	}

	var stage *entity.ProductionStage
	var rollup rollupResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if err := frozenGuard(st); err != nil {
			return err
		}
		if st.Status != entity.StageStatusInProgress {
			return wferr.InvalidState("stage %s is %s, only in_progress stages can complete", st.StageName, st.Status)
		}

		var checkpoints []entity.QualityCheckpoint
		if err := tx.WithContext(ctx).Where("stage_id = ?", st.ID).Find(&checkpoints).Error; err != nil {
			return err
		}
		for _, cp := range checkpoints {
			if cp.Status != entity.CheckpointPassed && cp.Status != entity.CheckpointWaived {
				return wferr.InvalidState("stage %s cannot complete: checkpoint %q is %s, rework is required",
					st.StageName, cp.CheckName, cp.Status)
			}
		}

		now := time.Now()
		st.Status = entity.StageStatusCompleted
		st.QuantityProcessed = req.QuantityProcessed
		st.QuantityApproved = req.QuantityApproved
		st.QuantityRejected = req.QuantityRejected
		st.ActualEndDate = &now
		if req.Notes != "" {
			st.Notes = req.Notes
		}

		if st.PlannedEndDate != nil && now.After(*st.PlannedEndDate) {
			st.IsLate = true
			st.IsFrozen = true
			st.LateReason = fmt.Sprintf("finished %s after planned end %s",
				now.Format("2006-01-02"), st.PlannedEndDate.Format("2006-01-02"))
		}

		if err := orders.UpdateStage(ctx, st); err != nil {
			return fmt.Errorf("failed to complete stage: %w", err)
		}

		rollup, err = s.recomputeOrderTx(ctx, tx, st.OrderID)
		if err != nil {
			return err
		}
		stage = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stage.IsFrozen {
		s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
			Type:        "stage_late_frozen",
			Title:       "Stage completed late and frozen",
			Body:        fmt.Sprintf("Stage %s of order %s finished past its planned end and is frozen pending review", stage.StageName, rollup.orderNumber),
			Priority:    notify.PriorityHigh,
			RelatedType: "production_stage",
			RelatedID:   stage.ID,
		})
	}
	s.notifyOrderCompleted(ctx, rollup)
	return stage, nil
}

type ReworkStageRequest struct {
	Reason         string  `json:"reason" binding:"required"`
	AdditionalCost float64 `json:"additional_cost" binding:"gte=0"`
}

// Rework sends a stage back to in_progress for another iteration. The
// failed iteration's quantities are archived in the rework history under
// the iteration number that produced them, then zeroed on the stage so the
// order rollup no longer counts them.
func (s *StageService) Rework(ctx context.Context, userID, stageID string, req *ReworkStageRequest) (*entity.ProductionStage, error) {
	var stage *entity.ProductionStage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if err := frozenGuard(st); err != nil {
			return err
		}
		if st.Status != entity.StageStatusInProgress && st.Status != entity.StageStatusCompleted {
			return wferr.InvalidState("stage %s is %s, only in_progress or completed stages can be reworked", st.StageName, st.Status)
		}

		history := &entity.StageReworkHistory{
			ID:                uuid.New().String()[:32],
			StageID:           st.ID,
			Iteration:         st.ReworkIteration,
			QuantityProcessed: st.QuantityProcessed,
			QuantityApproved:  st.QuantityApproved,
			QuantityRejected:  st.QuantityRejected,
			AdditionalCost:    req.AdditionalCost,
			Reason:            req.Reason,
			OrderedBy:         userID,
		}
		if err := orders.CreateReworkHistory(ctx, history); err != nil {
			return fmt.Errorf("failed to record rework history: %w", err)
		}

		st.ReworkIteration++
		st.Status = entity.StageStatusInProgress
		st.QuantityProcessed = 0
		st.QuantityApproved = 0
		st.QuantityRejected = 0
		st.ActualEndDate = nil
		st.ReworkCost += req.AdditionalCost
		if err := orders.UpdateStage(ctx, st); err != nil {
			return fmt.Errorf("failed to rework stage: %w", err)
		}

		if _, err := s.recomputeOrderTx(ctx, tx, st.OrderID); err != nil {
			return err
		}
		stage = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptQuality, notify.Message{
		Type:        "stage_rework",
		Title:       "Stage sent for rework",
		Body:        fmt.Sprintf("Stage %s entered rework iteration %d: %s", stage.StageName, stage.ReworkIteration, req.Reason),
		Priority:    notify.PriorityNormal,
		RelatedType: "production_stage",
		RelatedID:   stage.ID,
	})
	return stage, nil
}

// Unfreeze clears the frozen flag on every frozen stage of the order. A
// supervisor action: freezing is per stage, unfreezing is per order.
func (s *StageService) Unfreeze(ctx context.Context, userID, orderID string) (*entity.ProductionOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		stages, err := orders.FindStagesForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if len(stages) == 0 {
			return wferr.NotFound("production order %s does not exist or has no stages", orderID)
		}
		frozen := 0
		for i := range stages {
			if stages[i].IsFrozen {
				frozen++
				stages[i].IsFrozen = false
				if err := orders.UpdateStage(ctx, &stages[i]); err != nil {
					return fmt.Errorf("failed to unfreeze stage %s: %w", stages[i].StageName, err)
				}
			}
		}
		if frozen == 0 {
			return wferr.InvalidState("production order %s has no frozen stages", orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

type CheckpointInput struct {
	CheckName string `json:"check_name" binding:"required"`
}

// AddCheckpoint attaches a quality gate to a stage before or during its
// execution.
func (s *StageService) AddCheckpoint(ctx context.Context, stageID string, req *CheckpointInput) (*entity.QualityCheckpoint, error) {
	st, err := s.repos.Order.FindStage(ctx, stageID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("stage %s does not exist", stageID)
		}
		return nil, err
	}
	if st.Status == entity.StageStatusCompleted || st.Status == entity.StageStatusSkipped {
		return nil, wferr.InvalidState("stage %s is %s, checkpoints cannot be added to finished stages", st.StageName, st.Status)
	}
	cp := &entity.QualityCheckpoint{
		ID:        uuid.New().String()[:32],
		StageID:   st.ID,
		CheckName: req.CheckName,
		Status:    entity.CheckpointPending,
	}
	if err := s.repos.Order.CreateCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to add checkpoint: %w", err)
	}
	return cp, nil
}

type RecordCheckpointRequest struct {
	Status  string `json:"status" binding:"required,oneof=passed failed waived"`
	Remarks string `json:"remarks"`
}

// RecordCheckpoint resolves a quality gate.
func (s *StageService) RecordCheckpoint(ctx context.Context, userID, checkpointID string, req *RecordCheckpointRequest) (*entity.QualityCheckpoint, error) {
	cp, err := s.repos.Order.FindCheckpoint(ctx, checkpointID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("checkpoint %s does not exist", checkpointID)
		}
		return nil, err
	}
	now := time.Now()
	cp.Status = req.Status
	cp.Remarks = req.Remarks
	cp.CheckedBy = userID
	cp.CheckedAt = &now
	if err := s.repos.Order.UpdateCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to record checkpoint: %w", err)
	}

	if req.Status == entity.CheckpointFailed {
		s.notifier.NotifyDepartment(ctx, identity.DeptQuality, notify.Message{
			Type:        "checkpoint_failed",
			Title:       "Quality checkpoint failed",
			Body:        fmt.Sprintf("Checkpoint %q failed: %s", cp.CheckName, req.Remarks),
			Priority:    notify.PriorityHigh,
			RelatedType: "quality_checkpoint",
			RelatedID:   cp.ID,
		})
	}
	return cp, nil
}

type RejectionInput struct {
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	DefectType string  `json:"defect_type"`
	Reason     string  `json:"reason" binding:"required"`
}

// RecordRejection logs a rejected lot against a completed stage. The
// rejection lines of a stage can never exceed its recorded rejected
// quantity.
func (s *StageService) RecordRejection(ctx context.Context, userID, stageID string, req *RejectionInput) (*entity.StageRejection, error) {
	var rejection *entity.StageRejection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Order.WithTx(tx)
		st, err := orders.FindStageForUpdate(ctx, stageID)
		if err != nil {
			if err == repository.ErrNotFound {
				return wferr.NotFound("stage %s does not exist", stageID)
			}
			return err
		}
		if st.Status != entity.StageStatusCompleted {
			return wferr.InvalidState("stage %s is %s, rejections are logged against completed stages", st.StageName, st.Status)
		}

		existing, err := orders.ListRejections(ctx, st.ID)
		if err != nil {
			return err
		}
		var logged float64
		for _, r := range existing {
			logged += r.Quantity
		}
		if logged+req.Quantity > st.QuantityRejected {
			return wferr.Validation("rejection lines (%.4f logged + %.4f new) cannot exceed the stage's rejected quantity %.4f",
				logged, req.Quantity, st.QuantityRejected)
		}

		rejection = &entity.StageRejection{
			ID:         uuid.New().String()[:32],
			StageID:    st.ID,
			Quantity:   req.Quantity,
			DefectType: req.DefectType,
			Reason:     req.Reason,
			RecordedBy: userID,
		}
		return orders.CreateRejection(ctx, rejection)
	})
	if err != nil {
		return nil, err
	}
	return rejection, nil
}

func (s *StageService) ListReworkHistory(ctx context.Context, stageID string) ([]entity.StageReworkHistory, error) {
	return s.repos.Order.ListReworkHistory(ctx, stageID)
}

func (s *StageService) ListRejections(ctx context.Context, stageID string) ([]entity.StageRejection, error) {
	return s.repos.Order.ListRejections(ctx, stageID)
}

type rollupResult struct {
	orderID       string
	orderNumber   string
	justCompleted bool
}

// recomputeOrderTx rebuilds the order-level aggregates from its stages:
// progress from the share of terminal stages, produced quantity from the
// approved and rejected sums. Reaching 100% completes the order and its
// upstream documents.
func (s *StageService) recomputeOrderTx(ctx context.Context, tx *gorm.DB, orderID string) (rollupResult, error) {
	orders := s.repos.Order.WithTx(tx)

	order, err := orders.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return rollupResult{}, err
	}

	var stages []entity.ProductionStage
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Find(&stages).Error; err != nil {
		return rollupResult{}, err
	}

	var terminal int
	var approved, rejected float64
	for _, st := range stages {
		if st.Status == entity.StageStatusCompleted || st.Status == entity.StageStatusSkipped {
			terminal++
		}
		approved += st.QuantityApproved
		rejected += st.QuantityRejected
	}

	progress := 0
	if len(stages) > 0 {
		progress = int(math.Round(100 * float64(terminal) / float64(len(stages))))
	}

	wasCompleted := order.Status == entity.ProductionOrderCompleted
	order.ProgressPercentage = progress
	order.ApprovedQuantity = approved
	order.RejectedQuantity = rejected
	order.QuantityProduced = approved + rejected

	res := rollupResult{orderID: order.ID, orderNumber: order.OrderNumber}
	if progress >= 100 && !wasCompleted {
		now := time.Now()
		order.Status = entity.ProductionOrderCompleted
		order.ActualEndDate = &now
		res.justCompleted = true
	}

	if err := orders.Update(ctx, order); err != nil {
		return rollupResult{}, fmt.Errorf("failed to update order rollup: %w", err)
	}

	if res.justCompleted {
		if err := s.repos.MaterialRequest.WithTx(tx).UpdateStatus(ctx, order.RequestID, entity.MRNStatusCompleted); err != nil {
			return rollupResult{}, err
		}
		if order.SalesOrderID != "" {
			err := tx.WithContext(ctx).Model(&salesentity.SalesOrder{}).
				Where("id = ?", order.SalesOrderID).
				Update("status", salesentity.SOStatusCompleted).Error
			if err != nil {
				return rollupResult{}, fmt.Errorf("failed to complete sales order: %w", err)
			}
		}
	}
	return res, nil
}

func (s *StageService) notifyOrderCompleted(ctx context.Context, rollup rollupResult) {
	if !rollup.justCompleted {
		return
	}
	s.notifier.NotifyDepartment(ctx, identity.DeptSales, notify.Message{
		Type:        "production_completed",
		Title:       "Production completed",
		Body:        fmt.Sprintf("Production order %s has completed all stages", rollup.orderNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "production_order",
		RelatedID:   rollup.orderID,
	})
}
