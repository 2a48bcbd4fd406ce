package service

import (
	"context"
	"errors"
	"testing"
	"time"

	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/codigix/passion-clothing-sub000/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stageEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	svc   *StageService
	order *entity.ProductionOrder
}

// setupStageTest seeds a production order with n pending stages plus its
// backing material request, and returns a stage service wired to the
// test database.
func setupStageTest(t *testing.T, n int) *stageEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	mrn := &entity.MaterialRequest{
		ID:            uuid.New().String()[:32],
		RequestNumber: "MRN-TEST-00001",
		Status:        entity.MRNStatusCompleted,
		RequestedBy:   "u-mfg",
	}
	if err := db.Create(mrn).Error; err != nil {
		t.Fatalf("seed mrn: %v", err)
	}

	order := &entity.ProductionOrder{
		ID:              uuid.New().String()[:32],
		OrderNumber:     "PRD-TEST-00001",
		RequestID:       mrn.ID,
		ProductName:     "Summer Dress",
		QuantityPlanned: 20,
		Status:          entity.ProductionOrderInProgress,
		CreatedBy:       "u-mfg",
	}
	names := []string{"cutting", "stitching", "finishing", "quality_check", "packaging"}
	for i := 0; i < n; i++ {
		order.Stages = append(order.Stages, entity.ProductionStage{
			ID:              uuid.New().String()[:32],
			StageName:       names[i%len(names)],
			StageOrder:      i + 1,
			Status:          entity.StageStatusPending,
			ReworkIteration: 1,
		})
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	repos := repository.NewRepositories(db)
	notifier := notify.NewDispatcher(db, identityrepo.NewUserRepository(db), zap.NewNop())
	return &stageEnv{
		db:    db,
		repos: repos,
		svc:   NewStageService(db, repos, notifier),
		order: order,
	}
}

// completeStage drives a stage through start and complete with the given
// quantities.
func completeStage(t *testing.T, env *stageEnv, stageID string, processed, approved, rejected float64) {
	t.Helper()
	ctx := context.Background()
	if _, err := env.svc.Start(ctx, "u-mfg", stageID); err != nil {
		t.Fatalf("start stage %s: %v", stageID, err)
	}
	_, err := env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: processed,
		QuantityApproved:  approved,
		QuantityRejected:  rejected,
	})
	if err != nil {
		t.Fatalf("complete stage %s: %v", stageID, err)
	}
}

func TestStageCannotStartOutOfOrder(t *testing.T) {
	env := setupStageTest(t, 3)
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "u-mfg", env.order.Stages[1].ID)
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state starting stage 2 first, got %v", err)
	}

	// Stage 1 unlocks stage 2 only once it is terminal.
	completeStage(t, env, env.order.Stages[0].ID, 20, 20, 0)
	if _, err := env.svc.Start(ctx, "u-mfg", env.order.Stages[1].ID); err != nil {
		t.Fatalf("expected stage 2 startable after stage 1 completed, got %v", err)
	}
}

func TestSkippedStageUnlocksSuccessor(t *testing.T) {
	env := setupStageTest(t, 3)
	ctx := context.Background()

	if _, err := env.svc.Skip(ctx, env.order.Stages[0].ID); err != nil {
		t.Fatalf("skip stage 1: %v", err)
	}
	if _, err := env.svc.Start(ctx, "u-mfg", env.order.Stages[1].ID); err != nil {
		t.Fatalf("expected stage 2 startable after stage 1 skipped, got %v", err)
	}
}

func TestCompleteRejectsQuantityOverflow(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	if _, err := env.svc.Start(ctx, "u-mfg", stageID); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: 10,
		QuantityApproved:  8,
		QuantityRejected:  3,
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error for approved+rejected > processed, got %v", err)
	}
}

func TestCompleteIsNotIdempotent(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	completeStage(t, env, stageID, 10, 10, 0)

	_, err := env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: 10,
		QuantityApproved:  10,
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state completing a completed stage, got %v", err)
	}
}

func TestPauseResumeHoldTransitions(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	if _, err := env.svc.Pause(ctx, stageID); !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state pausing a pending stage, got %v", err)
	}

	if _, err := env.svc.Start(ctx, "u-mfg", stageID); err != nil {
		t.Fatalf("start: %v", err)
	}
	st, err := env.svc.Pause(ctx, stageID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if st.Status != entity.StageStatusPaused {
		t.Errorf("expected paused, got %s", st.Status)
	}

	st, err = env.svc.Resume(ctx, stageID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if st.Status != entity.StageStatusInProgress {
		t.Errorf("expected in_progress after resume, got %s", st.Status)
	}

	st, err = env.svc.Hold(ctx, stageID)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if st.Status != entity.StageStatusOnHold {
		t.Errorf("expected on_hold, got %s", st.Status)
	}

	// on_hold resumes too
	if _, err := env.svc.Resume(ctx, stageID); err != nil {
		t.Fatalf("resume from hold: %v", err)
	}
}

func TestCheckpointBlocksCompletion(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	if _, err := env.svc.Start(ctx, "u-mfg", stageID); err != nil {
		t.Fatalf("start: %v", err)
	}
	cp, err := env.svc.AddCheckpoint(ctx, stageID, &CheckpointInput{CheckName: "seam strength"})
	if err != nil {
		t.Fatalf("add checkpoint: %v", err)
	}

	_, err = env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: 10, QuantityApproved: 10,
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected pending checkpoint to block completion, got %v", err)
	}

	if _, err := env.svc.RecordCheckpoint(ctx, "u-qa", cp.ID, &RecordCheckpointRequest{Status: entity.CheckpointFailed}); err != nil {
		t.Fatalf("record checkpoint: %v", err)
	}
	_, err = env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: 10, QuantityApproved: 10,
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected failed checkpoint to block completion, got %v", err)
	}

	// Waiving clears the gate.
	if _, err := env.svc.RecordCheckpoint(ctx, "u-qa", cp.ID, &RecordCheckpointRequest{Status: entity.CheckpointWaived, Remarks: "known cosmetic issue"}); err != nil {
		t.Fatalf("waive checkpoint: %v", err)
	}
	if _, err := env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{QuantityProcessed: 10, QuantityApproved: 10}); err != nil {
		t.Fatalf("expected completion after waiver, got %v", err)
	}
}

func TestOrderRollup(t *testing.T) {
	env := setupStageTest(t, 2)
	ctx := context.Background()

	completeStage(t, env, env.order.Stages[0].ID, 10, 8, 2)

	order, err := env.svc.GetOrder(ctx, env.order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.ProgressPercentage != 50 {
		t.Errorf("expected 50%% after 1 of 2 stages, got %d", order.ProgressPercentage)
	}
	if order.Status != entity.ProductionOrderInProgress {
		t.Errorf("expected order still in_progress, got %s", order.Status)
	}

	completeStage(t, env, env.order.Stages[1].ID, 10, 9, 1)

	order, err = env.svc.GetOrder(ctx, env.order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.ProgressPercentage != 100 {
		t.Errorf("expected 100%%, got %d", order.ProgressPercentage)
	}
	if order.ApprovedQuantity != 17 {
		t.Errorf("expected approved 17, got %v", order.ApprovedQuantity)
	}
	if order.RejectedQuantity != 3 {
		t.Errorf("expected rejected 3, got %v", order.RejectedQuantity)
	}
	if order.QuantityProduced != 20 {
		t.Errorf("expected produced 20, got %v", order.QuantityProduced)
	}
	if order.Status != entity.ProductionOrderCompleted {
		t.Errorf("expected order completed, got %s", order.Status)
	}
	if order.ActualEndDate == nil {
		t.Error("expected actual end date stamped on completion")
	}

	var mrn entity.MaterialRequest
	if err := env.db.First(&mrn, "id = ?", env.order.RequestID).Error; err != nil {
		t.Fatalf("load mrn: %v", err)
	}
	if mrn.Status != entity.MRNStatusCompleted {
		t.Errorf("expected mrn completed, got %s", mrn.Status)
	}
}

func TestLateCompletionFreezesStage(t *testing.T) {
	env := setupStageTest(t, 2)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	yesterday := time.Now().Add(-24 * time.Hour)
	if err := env.db.Model(&entity.ProductionStage{}).Where("id = ?", stageID).
		Update("planned_end_date", yesterday).Error; err != nil {
		t.Fatalf("set planned end: %v", err)
	}

	completeStage(t, env, stageID, 10, 10, 0)

	st, err := env.repos.Order.FindStage(ctx, stageID)
	if err != nil {
		t.Fatalf("load stage: %v", err)
	}
	if !st.IsLate || !st.IsFrozen {
		t.Fatalf("expected late completion to mark stage late and frozen, got late=%v frozen=%v", st.IsLate, st.IsFrozen)
	}
	if st.Status != entity.StageStatusCompleted {
		t.Errorf("expected stage still completed while frozen, got %s", st.Status)
	}
	if st.LateReason == "" {
		t.Error("expected a late reason on the stage")
	}
	if st.Notes != "" {
		t.Errorf("expected operator notes untouched, got %q", st.Notes)
	}

	// Frozen stage refuses mutations until the order is unfrozen.
	_, err = env.svc.Rework(ctx, "u-mfg", stageID, &ReworkStageRequest{Reason: "redo"})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected frozen stage to reject rework, got %v", err)
	}

	if _, err := env.svc.Unfreeze(ctx, "u-sup", env.order.ID); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}
	st, err = env.repos.Order.FindStage(ctx, stageID)
	if err != nil {
		t.Fatalf("reload stage: %v", err)
	}
	if st.IsFrozen {
		t.Error("expected stage unfrozen")
	}
	if !st.IsLate {
		t.Error("expected late flag kept as history after unfreeze")
	}

	// A second unfreeze has nothing to do.
	_, err = env.svc.Unfreeze(ctx, "u-sup", env.order.ID)
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state unfreezing an order with no frozen stages, got %v", err)
	}
}

func TestReworkArchivesIteration(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	completeStage(t, env, stageID, 10, 6, 4)

	st, err := env.svc.Rework(ctx, "u-qa", stageID, &ReworkStageRequest{
		Reason:         "stitch density below tolerance",
		AdditionalCost: 150,
	})
	if err != nil {
		t.Fatalf("rework: %v", err)
	}
	if st.ReworkIteration != 2 {
		t.Errorf("expected iteration 2, got %d", st.ReworkIteration)
	}
	if st.Status != entity.StageStatusInProgress {
		t.Errorf("expected in_progress after rework, got %s", st.Status)
	}
	if st.QuantityProcessed != 0 || st.QuantityApproved != 0 || st.QuantityRejected != 0 {
		t.Errorf("expected quantities zeroed, got %v/%v/%v", st.QuantityProcessed, st.QuantityApproved, st.QuantityRejected)
	}
	if st.ReworkCost != 150 {
		t.Errorf("expected rework cost 150, got %v", st.ReworkCost)
	}
	if st.ActualEndDate != nil {
		t.Error("expected actual end cleared on rework")
	}

	history, err := env.svc.ListReworkHistory(ctx, stageID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	h := history[0]
	if h.Iteration != 1 {
		t.Errorf("expected history tagged iteration 1, got %d", h.Iteration)
	}
	if h.QuantityProcessed != 10 || h.QuantityApproved != 6 || h.QuantityRejected != 4 {
		t.Errorf("expected archived quantities 10/6/4, got %v/%v/%v", h.QuantityProcessed, h.QuantityApproved, h.QuantityRejected)
	}

	// Rollup no longer counts the archived iteration.
	order, err := env.svc.GetOrder(ctx, env.order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.ProgressPercentage != 0 {
		t.Errorf("expected progress back to 0 after rework, got %d", order.ProgressPercentage)
	}
	if order.QuantityProduced != 0 {
		t.Errorf("expected produced reset, got %v", order.QuantityProduced)
	}

	// Re-completion accumulates cost across iterations.
	_, err = env.svc.Complete(ctx, "u-mfg", stageID, &CompleteStageRequest{
		QuantityProcessed: 10, QuantityApproved: 10,
	})
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	_, err = env.svc.Rework(ctx, "u-qa", stageID, &ReworkStageRequest{Reason: "second pass", AdditionalCost: 50})
	if err != nil {
		t.Fatalf("second rework: %v", err)
	}
	st, _ = env.repos.Order.FindStage(ctx, stageID)
	if st.ReworkCost != 200 {
		t.Errorf("expected accumulated rework cost 200, got %v", st.ReworkCost)
	}
	if st.ReworkIteration != 3 {
		t.Errorf("expected iteration 3, got %d", st.ReworkIteration)
	}
}

func TestRejectionLedgerBoundedByStage(t *testing.T) {
	env := setupStageTest(t, 1)
	ctx := context.Background()
	stageID := env.order.Stages[0].ID

	// Rejections only attach to completed stages.
	_, err := env.svc.RecordRejection(ctx, "u-qa", stageID, &RejectionInput{Quantity: 1, Reason: "torn fabric"})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state on pending stage, got %v", err)
	}

	completeStage(t, env, stageID, 10, 7, 3)

	if _, err := env.svc.RecordRejection(ctx, "u-qa", stageID, &RejectionInput{Quantity: 2, DefectType: "stain", Reason: "oil stain"}); err != nil {
		t.Fatalf("first rejection: %v", err)
	}
	_, err = env.svc.RecordRejection(ctx, "u-qa", stageID, &RejectionInput{Quantity: 2, DefectType: "tear", Reason: "seam tear"})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected ledger overflow (2+2 > 3) rejected, got %v", err)
	}
	if _, err := env.svc.RecordRejection(ctx, "u-qa", stageID, &RejectionInput{Quantity: 1, DefectType: "tear", Reason: "seam tear"}); err != nil {
		t.Fatalf("exact-fit rejection: %v", err)
	}

	rejections, err := env.svc.ListRejections(ctx, stageID)
	if err != nil {
		t.Fatalf("list rejections: %v", err)
	}
	if len(rejections) != 2 {
		t.Errorf("expected 2 rejection rows, got %d", len(rejections))
	}
}
