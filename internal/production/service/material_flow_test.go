package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/codigix/passion-clothing-sub000/internal/config"
	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	invrepo "github.com/codigix/passion-clothing-sub000/internal/inventory/repository"
	invsvc "github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/codigix/passion-clothing-sub000/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// flowEnv wires the whole material lifecycle against one test database:
// requests, dispatch, receipt, verification, approval and returns, plus a
// stocked inventory item and a confirmed sales order to hang them on.
type flowEnv struct {
	db         *gorm.DB
	requests   *RequestService
	dispatch   *DispatchService
	receipts   *ReceiptService
	verify     *VerificationService
	approvals  *ApprovalService
	stages     *StageService
	returns    *ReturnService
	salesOrder *salesentity.SalesOrder
	inv        *inventity.Inventory
}

func setupFlowTest(t *testing.T) *flowEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	so := &salesentity.SalesOrder{
		ID:           uuid.New().String()[:32],
		OrderNumber:  "SO-TEST-00001",
		CustomerName: "Acme Retail",
		ProductName:  "Summer Dress",
		Quantity:     100,
		Status:       salesentity.SOStatusConfirmed,
		CreatedBy:    "u-sales",
	}
	if err := db.Create(so).Error; err != nil {
		t.Fatalf("seed sales order: %v", err)
	}
	inv := testutil.SeedInventory(t, db, "FAB-001", 500)

	repos := repository.NewRepositories(db)
	seq := sequence.NewGenerator(db)
	notifier := notify.NewDispatcher(db, identityrepo.NewUserRepository(db), zap.NewNop())
	inventory := invsvc.NewInventoryService(invrepo.NewInventoryRepository(db), db)
	workflow := config.WorkflowConfig{StageSequence: []string{"cutting", "stitching"}}

	return &flowEnv{
		db:         db,
		requests:   NewRequestService(db, repos, seq, notifier),
		dispatch:   NewDispatchService(db, repos, inventory, seq, notifier, workflow),
		receipts:   NewReceiptService(db, repos, seq, notifier),
		verify:     NewVerificationService(db, repos, seq, notifier),
		approvals:  NewApprovalService(db, repos, seq, notifier, workflow),
		stages:     NewStageService(db, repos, notifier),
		returns:    NewReturnService(db, repos, inventory, seq, notifier),
		salesOrder: so,
		inv:        inv,
	}
}

func (env *flowEnv) createMRN(t *testing.T, qty float64) *entity.MaterialRequest {
	t.Helper()
	mrn, err := env.requests.CreateMaterialRequest(context.Background(), "u-mfg", &CreateMaterialRequestRequest{
		SalesOrderID: env.salesOrder.ID,
		Items: []MaterialRequestItemInput{
			{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: qty, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("create material request: %v", err)
	}
	return mrn
}

func (env *flowEnv) createDispatch(t *testing.T, requestID string, qty float64) *entity.MaterialDispatch {
	t.Helper()
	dsp, err := env.dispatch.Create(context.Background(), "u-inv", &CreateDispatchRequest{
		RequestID: requestID,
		Items: []DispatchItemInput{
			{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: qty, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("create dispatch: %v", err)
	}
	return dsp
}

func (env *flowEnv) createReceipt(t *testing.T, dispatchID string, qty float64) *entity.MaterialReceipt {
	t.Helper()
	rcp, err := env.receipts.Create(context.Background(), "u-mfg", &CreateReceiptRequest{
		DispatchID: dispatchID,
		Items: []ReceiptItemInput{
			{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: qty, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	return rcp
}

func (env *flowEnv) verifyReceipt(t *testing.T, receiptID string, passed bool) *entity.MaterialVerification {
	t.Helper()
	ver, err := env.verify.Create(context.Background(), "u-qa", &CreateVerificationRequest{
		ReceiptID: receiptID,
		Checklist: []VerificationItemInput{
			{CheckName: "color match", Passed: true, QuantityOK: 50},
			{CheckName: "fabric weight", Passed: passed, QuantityOK: 50},
		},
	})
	if err != nil {
		t.Fatalf("create verification: %v", err)
	}
	return ver
}

func TestDispatchMovesStock(t *testing.T) {
	env := setupFlowTest(t)

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)

	if dsp.ReceivedStatus != entity.DispatchStatusPending {
		t.Errorf("expected dispatch pending, got %s", dsp.ReceivedStatus)
	}

	var inv inventity.Inventory
	if err := env.db.First(&inv, "id = ?", env.inv.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.AvailableQty != 450 {
		t.Errorf("expected available 450 after dispatching 50, got %v", inv.AvailableQty)
	}

	var count int64
	env.db.Model(&inventity.InventoryTransaction{}).
		Where("inventory_id = ? AND transaction_type = ?", env.inv.ID, inventity.TxTypeDispatchOut).
		Count(&count)
	if count != 1 {
		t.Errorf("expected 1 dispatch-out transaction, got %d", count)
	}

	var reloaded entity.MaterialRequest
	env.db.First(&reloaded, "id = ?", mrn.ID)
	if reloaded.Status != entity.MRNStatusDispatched {
		t.Errorf("expected mrn dispatched, got %s", reloaded.Status)
	}
}

func TestSecondDispatchConflictsWhileFirstPending(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	env.createDispatch(t, mrn.ID, 25)

	_, err := env.dispatch.Create(ctx, "u-inv", &CreateDispatchRequest{
		RequestID: mrn.ID,
		Items:     []DispatchItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 25}},
	})
	if !errors.Is(err, wferr.ErrConflict) {
		t.Fatalf("expected conflict on second dispatch, got %v", err)
	}
}

func TestDispatchRejectsInsufficientStock(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	_, err := env.dispatch.Create(ctx, "u-inv", &CreateDispatchRequest{
		RequestID: mrn.ID,
		Items:     []DispatchItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 9999}},
	})
	if !errors.Is(err, wferr.ErrConflict) {
		t.Fatalf("expected conflict for insufficient stock, got %v", err)
	}

	// The failed dispatch must not leave a partial stock movement behind.
	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 500 {
		t.Errorf("expected stock untouched at 500, got %v", inv.AvailableQty)
	}
}

func TestReceiptClosesDispatch(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	env.createReceipt(t, dsp.ID, 50)

	var reloaded entity.MaterialDispatch
	env.db.First(&reloaded, "id = ?", dsp.ID)
	if reloaded.ReceivedStatus != entity.DispatchStatusReceived {
		t.Errorf("expected dispatch received, got %s", reloaded.ReceivedStatus)
	}

	var so salesentity.SalesOrder
	env.db.First(&so, "id = ?", env.salesOrder.ID)
	if so.Status != salesentity.SOStatusMaterialsReceived {
		t.Errorf("expected sales order materials_received, got %s", so.Status)
	}

	// One receipt per dispatch.
	_, err := env.receipts.Create(ctx, "u-mfg", &CreateReceiptRequest{
		DispatchID: dsp.ID,
		Items:      []ReceiptItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 50}},
	})
	if !errors.Is(err, wferr.ErrConflict) {
		t.Fatalf("expected conflict on second receipt for same dispatch, got %v", err)
	}
}

func TestDiscrepancyReceiptRequiresDetails(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)

	_, err := env.receipts.Create(ctx, "u-mfg", &CreateReceiptRequest{
		DispatchID:     dsp.ID,
		HasDiscrepancy: true,
		Items:          []ReceiptItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 45}},
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error without discrepancy details, got %v", err)
	}

	rcp, err := env.receipts.Create(ctx, "u-mfg", &CreateReceiptRequest{
		DispatchID:         dsp.ID,
		HasDiscrepancy:     true,
		DiscrepancyDetails: "5m short against dispatch note",
		Items:              []ReceiptItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 45}},
	})
	if err != nil {
		t.Fatalf("discrepancy receipt: %v", err)
	}
	if !rcp.HasDiscrepancy {
		t.Error("expected discrepancy flag kept")
	}

	var reloaded entity.MaterialDispatch
	env.db.First(&reloaded, "id = ?", dsp.ID)
	if reloaded.ReceivedStatus != entity.DispatchStatusDiscrepancy {
		t.Errorf("expected dispatch discrepancy, got %s", reloaded.ReceivedStatus)
	}

	// A discrepancy does not advance the sales order.
	var so salesentity.SalesOrder
	env.db.First(&so, "id = ?", env.salesOrder.ID)
	if so.Status != salesentity.SOStatusConfirmed {
		t.Errorf("expected sales order unchanged, got %s", so.Status)
	}
}

func TestFailedVerificationBlocksApproval(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, false)

	if ver.OverallResult != entity.VerificationResultFailed {
		t.Fatalf("expected derived result failed, got %s", ver.OverallResult)
	}

	_, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{
		VerificationID: ver.ID,
		Decision:       "approved",
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state approving failed verification, got %v", err)
	}

	var count int64
	env.db.Model(&entity.ProductionApproval{}).Count(&count)
	if count != 0 {
		t.Errorf("expected zero approval rows after blocked approval, got %d", count)
	}
}

func TestApprovalToProductionOrder(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, true)

	apr, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{
		VerificationID: ver.ID,
		Decision:       "approved",
		Allocations: []AllocationInput{
			{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 50, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}
	if apr.Status != entity.ApprovalStatusApproved {
		t.Errorf("expected approval approved, got %s", apr.Status)
	}

	order, err := env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{
		ProductName: "Summer Dress",
		Quantity:    100,
	})
	if err != nil {
		t.Fatalf("start production: %v", err)
	}
	if len(order.Stages) != 2 {
		t.Fatalf("expected 2 stages from the configured sequence, got %d", len(order.Stages))
	}
	if order.Stages[0].StageName != "cutting" || order.Stages[1].StageName != "stitching" {
		t.Errorf("unexpected stage names %s/%s", order.Stages[0].StageName, order.Stages[1].StageName)
	}
	if order.SalesOrderID != env.salesOrder.ID {
		t.Errorf("expected order linked to sales order")
	}

	var so salesentity.SalesOrder
	env.db.First(&so, "id = ?", env.salesOrder.ID)
	if so.Status != salesentity.SOStatusInProduction {
		t.Errorf("expected sales order in_production, got %s", so.Status)
	}
	var reloaded entity.MaterialRequest
	env.db.First(&reloaded, "id = ?", mrn.ID)
	if reloaded.Status != entity.MRNStatusCompleted {
		t.Errorf("expected mrn completed, got %s", reloaded.Status)
	}

	// Starting twice is rejected.
	_, err = env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{Quantity: 100})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state on second start, got %v", err)
	}
}

func TestMaterialReturnRoundTrip(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, true)
	apr, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{VerificationID: ver.ID, Decision: "approved"})
	if err != nil {
		t.Fatalf("approval: %v", err)
	}
	order, err := env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{Quantity: 100})
	if err != nil {
		t.Fatalf("start production: %v", err)
	}

	// Returns are gated on every stage being terminal.
	_, err = env.returns.Create(ctx, "u-mfg", &CreateReturnRequest{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 5}},
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state returning before stages finish, got %v", err)
	}

	for _, st := range order.Stages {
		if _, err := env.stages.Start(ctx, "u-mfg", st.ID); err != nil {
			t.Fatalf("start stage: %v", err)
		}
		if _, err := env.stages.Complete(ctx, "u-mfg", st.ID, &CompleteStageRequest{QuantityProcessed: 50, QuantityApproved: 50}); err != nil {
			t.Fatalf("complete stage: %v", err)
		}
	}

	ret, err := env.returns.Create(ctx, "u-mfg", &CreateReturnRequest{
		OrderID: order.ID,
		Reason:  "leftover fabric",
		Items:   []ReturnItemInput{{InventoryID: env.inv.ID, MaterialName: "Fabric", Quantity: 5, Unit: "m"}},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if ret.Status != entity.ReturnStatusPendingApproval {
		t.Errorf("expected pending_approval, got %s", ret.Status)
	}

	// Processing before approval is rejected.
	_, err = env.returns.Process(ctx, "u-inv", ret.ID)
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state processing unapproved return, got %v", err)
	}

	if _, err := env.returns.Approve(ctx, "u-inv", ret.ID); err != nil {
		t.Fatalf("approve return: %v", err)
	}
	processed, err := env.returns.Process(ctx, "u-inv", ret.ID)
	if err != nil {
		t.Fatalf("process return: %v", err)
	}
	if processed.Status != entity.ReturnStatusReturned {
		t.Errorf("expected returned, got %s", processed.Status)
	}
	if processed.ProcessedAt == nil {
		t.Error("expected processed timestamp")
	}

	// 500 seeded - 50 dispatched + 5 returned.
	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 455 {
		t.Errorf("expected available 455 after return, got %v", inv.AvailableQty)
	}
}

func TestConcurrentDispatchesYieldOneActive(t *testing.T) {
	env := setupFlowTest(t)
	mrn := env.createMRN(t, 50)

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.dispatch.Create(context.Background(), "u-inv", &CreateDispatchRequest{
				RequestID: mrn.ID,
				Items: []DispatchItemInput{
					{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: 50, Unit: "m"},
				},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, wferr.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", workers-1, successes, conflicts)
	}

	var pending int64
	env.db.Model(&entity.MaterialDispatch{}).
		Where("request_id = ? AND received_status = ?", mrn.ID, entity.DispatchStatusPending).
		Count(&pending)
	if pending != 1 {
		t.Errorf("expected exactly one pending dispatch, got %d", pending)
	}

	// Only one dispatch deducted stock.
	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 450 {
		t.Errorf("expected available 450, got %v", inv.AvailableQty)
	}
}

func TestConcurrentProductionStartsCreateOneOrder(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, true)

	apr, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{
		VerificationID: ver.ID,
		Decision:       "approved",
	})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{Quantity: 100})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, rejected int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, wferr.ErrInvalidState):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejected != workers-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d/%d", workers-1, successes, rejected)
	}

	var orders int64
	env.db.Model(&entity.ProductionOrder{}).Where("approval_id = ?", apr.ID).Count(&orders)
	if orders != 1 {
		t.Errorf("expected exactly one production order, got %d", orders)
	}
}

func TestDecidedReturnCannotBeRedecided(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, true)
	apr, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{VerificationID: ver.ID, Decision: "approved"})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}
	order, err := env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{Quantity: 100})
	if err != nil {
		t.Fatalf("start production: %v", err)
	}
	for _, st := range order.Stages {
		if _, err := env.stages.Start(ctx, "u-mfg", st.ID); err != nil {
			t.Fatalf("start stage %s: %v", st.StageName, err)
		}
		_, err := env.stages.Complete(ctx, "u-mfg", st.ID, &CompleteStageRequest{
			QuantityProcessed: 100, QuantityApproved: 100,
		})
		if err != nil {
			t.Fatalf("complete stage %s: %v", st.StageName, err)
		}
	}

	ret, err := env.returns.Create(ctx, "u-mfg", &CreateReturnRequest{
		OrderID: order.ID,
		Items: []ReturnItemInput{
			{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: 5, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if _, err := env.returns.Approve(ctx, "u-inv", ret.ID); err != nil {
		t.Fatalf("approve return: %v", err)
	}
	if _, err := env.returns.Approve(ctx, "u-inv", ret.ID); !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state on second approve, got %v", err)
	}
	if _, err := env.returns.Reject(ctx, "u-inv", ret.ID); !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state rejecting a decided return, got %v", err)
	}
}

func TestMalformedDatesRejected(t *testing.T) {
	env := setupFlowTest(t)
	ctx := context.Background()

	_, err := env.requests.Create(ctx, "u-sales", &CreateProductionRequestRequest{
		SalesOrderID: env.salesOrder.ID,
		ProductName:  "Summer Dress",
		Quantity:     100,
		RequiredDate: "31-12-2026",
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error for production request date, got %v", err)
	}

	_, err = env.requests.CreateMaterialRequest(ctx, "u-mfg", &CreateMaterialRequestRequest{
		SalesOrderID: env.salesOrder.ID,
		RequiredDate: "not-a-date",
		Items: []MaterialRequestItemInput{
			{InventoryID: env.inv.ID, MaterialName: env.inv.MaterialName, Quantity: 10, Unit: "m"},
		},
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error for material request date, got %v", err)
	}

	mrn := env.createMRN(t, 50)
	dsp := env.createDispatch(t, mrn.ID, 50)
	rcp := env.createReceipt(t, dsp.ID, 50)
	ver := env.verifyReceipt(t, rcp.ID, true)
	apr, err := env.approvals.Create(ctx, "u-mfg", &CreateApprovalRequest{VerificationID: ver.ID, Decision: "approved"})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}

	_, err = env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{
		Quantity:         100,
		PlannedStartDate: "2026/01/01",
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error for planned start date, got %v", err)
	}

	// The rejected payload must not flip the gate.
	order, err := env.approvals.StartProduction(ctx, "u-mfg", apr.ID, &StartProductionRequest{Quantity: 100})
	if err != nil {
		t.Fatalf("start production after rejected payload: %v", err)
	}
	if order.OrderNumber == "" {
		t.Error("expected an order number")
	}
}
