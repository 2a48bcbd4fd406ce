package service

import (
	"context"
	"errors"
	"testing"

	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	invrepo "github.com/codigix/passion-clothing-sub000/internal/inventory/repository"
	invsvc "github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	"github.com/codigix/passion-clothing-sub000/internal/procurement/repository"
	prodentity "github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/codigix/passion-clothing-sub000/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type procEnv struct {
	db  *gorm.DB
	svc *ProcurementService
	inv *inventity.Inventory
}

func setupProcurementTest(t *testing.T) *procEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	seq := sequence.NewGenerator(db)
	notifier := notify.NewDispatcher(db, identityrepo.NewUserRepository(db), zap.NewNop())
	inventory := invsvc.NewInventoryService(invrepo.NewInventoryRepository(db), db)

	return &procEnv{
		db:  db,
		svc: NewProcurementService(db, repos, inventory, seq, notifier),
		inv: testutil.SeedInventory(t, db, "FAB-001", 100),
	}
}

func seedReviewedRequest(t *testing.T, db *gorm.DB) *prodentity.ProductionRequest {
	t.Helper()
	reviewer := "u-mfg"
	pr := &prodentity.ProductionRequest{
		ID:            uuid.New().String()[:32],
		RequestNumber: "PRQ-TEST-00001",
		ProductName:   "Summer Dress",
		Quantity:      100,
		Status:        prodentity.RequestStatusReviewed,
		ReviewedBy:    &reviewer,
		CreatedBy:     "u-sales",
	}
	if err := db.Create(pr).Error; err != nil {
		t.Fatalf("seed production request: %v", err)
	}
	return pr
}

// raisePO creates and sends a PO for qty units of the seeded material.
func (env *procEnv) raisePO(t *testing.T, requestID string, qty, unitPrice float64) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	po, err := env.svc.CreatePO(ctx, "u-proc", &CreatePORequest{
		ProductionRequestID: requestID,
		SupplierName:        "Shree Textiles",
		Items: []POItemInput{
			{InventoryID: env.inv.ID, MaterialCode: env.inv.MaterialCode, MaterialName: env.inv.MaterialName, Quantity: qty, Unit: "m", UnitPrice: unitPrice},
		},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	if _, err := env.svc.SendPO(ctx, po.ID); err != nil {
		t.Fatalf("send po: %v", err)
	}
	return po
}

func TestCreatePORequiresReviewedRequest(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	env.db.Model(pr).Update("status", prodentity.RequestStatusPending)

	_, err := env.svc.CreatePO(ctx, "u-proc", &CreatePORequest{
		ProductionRequestID: pr.ID,
		SupplierName:        "Shree Textiles",
		Items:               []POItemInput{{MaterialName: "Fabric", Quantity: 10, UnitPrice: 5}},
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state for unreviewed request, got %v", err)
	}

	env.db.Model(pr).Update("status", prodentity.RequestStatusReviewed)
	po, err := env.svc.CreatePO(ctx, "u-proc", &CreatePORequest{
		ProductionRequestID: pr.ID,
		SupplierName:        "Shree Textiles",
		Items:               []POItemInput{{MaterialName: "Fabric", Quantity: 10, UnitPrice: 5}},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}
	if po.Status != entity.POStatusDraft {
		t.Errorf("expected draft, got %s", po.Status)
	}
	if po.TotalAmount != 50 {
		t.Errorf("expected total 50, got %v", po.TotalAmount)
	}
}

func TestGRNVerifyPostsStock(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	po := env.raisePO(t, pr.ID, 40, 5)

	grn, err := env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 40}},
	})
	if err != nil {
		t.Fatalf("create grn: %v", err)
	}
	if grn.Status != entity.GRNStatusPending {
		t.Errorf("expected pending, got %s", grn.Status)
	}

	// Stock moves only on verification, not on booking.
	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 100 {
		t.Errorf("expected stock unchanged at 100 before verify, got %v", inv.AvailableQty)
	}

	verified, err := env.svc.VerifyGRN(ctx, "u-inv", grn.ID, true, "counted and matched")
	if err != nil {
		t.Fatalf("verify grn: %v", err)
	}
	if verified.Status != entity.GRNStatusVerified {
		t.Errorf("expected verified, got %s", verified.Status)
	}

	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 140 {
		t.Errorf("expected 140 after intake, got %v", inv.AvailableQty)
	}

	var poItem entity.POItem
	env.db.First(&poItem, "id = ?", po.Items[0].ID)
	if poItem.ReceivedQty != 40 {
		t.Errorf("expected po item received 40, got %v", poItem.ReceivedQty)
	}
	var reloaded entity.PurchaseOrder
	env.db.First(&reloaded, "id = ?", po.ID)
	if reloaded.Status != entity.POStatusReceived {
		t.Errorf("expected po received, got %s", reloaded.Status)
	}

	// Verification is one-shot.
	_, err = env.svc.VerifyGRN(ctx, "u-inv", grn.ID, true, "")
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state re-verifying, got %v", err)
	}
}

func TestPartialDeliveryKeepsPOOpen(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	po := env.raisePO(t, pr.ID, 40, 5)

	grn, err := env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 15}},
	})
	if err != nil {
		t.Fatalf("create grn: %v", err)
	}
	if _, err := env.svc.VerifyGRN(ctx, "u-inv", grn.ID, true, ""); err != nil {
		t.Fatalf("verify: %v", err)
	}

	var reloaded entity.PurchaseOrder
	env.db.First(&reloaded, "id = ?", po.ID)
	if reloaded.Status != entity.POStatusPartiallyReceived {
		t.Errorf("expected partially_received, got %s", reloaded.Status)
	}

	// The balance arrives on a second GRN.
	grn2, err := env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 25}},
	})
	if err != nil {
		t.Fatalf("create second grn: %v", err)
	}
	if _, err := env.svc.VerifyGRN(ctx, "u-inv", grn2.ID, true, ""); err != nil {
		t.Fatalf("verify second: %v", err)
	}
	env.db.First(&reloaded, "id = ?", po.ID)
	if reloaded.Status != entity.POStatusReceived {
		t.Errorf("expected received after balance delivery, got %s", reloaded.Status)
	}
}

func TestOverDeliveryRaisesCreditNote(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	po := env.raisePO(t, pr.ID, 40, 5)

	grn, err := env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 48}},
	})
	if err != nil {
		t.Fatalf("create grn: %v", err)
	}
	if _, err := env.svc.VerifyGRN(ctx, "u-inv", grn.ID, true, ""); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// All 48 are taken into stock; the 8 extra become a credit note.
	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 148 {
		t.Errorf("expected 148 after over-delivery intake, got %v", inv.AvailableQty)
	}

	var notes []entity.CreditNote
	if err := env.db.Where("grn_id = ?", grn.ID).Find(&notes).Error; err != nil {
		t.Fatalf("load credit notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 credit note, got %d", len(notes))
	}
	cn := notes[0]
	if cn.Amount != 40 {
		t.Errorf("expected credit amount 8*5=40, got %v", cn.Amount)
	}
	if cn.Status != entity.CreditNoteStatusPending {
		t.Errorf("expected pending, got %s", cn.Status)
	}

	approved, err := env.svc.ApproveCreditNote(ctx, "u-fin", cn.ID)
	if err != nil {
		t.Fatalf("approve credit note: %v", err)
	}
	if approved.Status != entity.CreditNoteStatusApproved {
		t.Errorf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "u-fin" {
		t.Error("expected approver stamped")
	}
}

func TestRejectedGRNMovesNoStock(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	po := env.raisePO(t, pr.ID, 40, 5)

	grn, err := env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 40}},
	})
	if err != nil {
		t.Fatalf("create grn: %v", err)
	}
	rejected, err := env.svc.VerifyGRN(ctx, "u-inv", grn.ID, false, "water damaged rolls")
	if err != nil {
		t.Fatalf("reject grn: %v", err)
	}
	if rejected.Status != entity.GRNStatusRejected {
		t.Errorf("expected rejected, got %s", rejected.Status)
	}

	var inv inventity.Inventory
	env.db.First(&inv, "id = ?", env.inv.ID)
	if inv.AvailableQty != 100 {
		t.Errorf("expected stock unchanged at 100, got %v", inv.AvailableQty)
	}
	var count int64
	env.db.Model(&entity.CreditNote{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no credit notes on rejection, got %d", count)
	}
}

func TestGRNRequiresSentPO(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	po, err := env.svc.CreatePO(ctx, "u-proc", &CreatePORequest{
		ProductionRequestID: pr.ID,
		SupplierName:        "Shree Textiles",
		Items:               []POItemInput{{MaterialName: "Fabric", Quantity: 10, UnitPrice: 5}},
	})
	if err != nil {
		t.Fatalf("create po: %v", err)
	}

	_, err = env.svc.CreateGRN(ctx, "u-proc", &CreateGRNRequest{
		POID:  po.ID,
		Items: []GRNItemInput{{POItemID: po.Items[0].ID, ReceivedQty: 10}},
	})
	if !errors.Is(err, wferr.ErrInvalidState) {
		t.Fatalf("expected invalid state booking against draft po, got %v", err)
	}
}

func TestCreatePORejectsMalformedExpectedDate(t *testing.T) {
	env := setupProcurementTest(t)
	ctx := context.Background()

	pr := seedReviewedRequest(t, env.db)
	_, err := env.svc.CreatePO(ctx, "u-proc", &CreatePORequest{
		ProductionRequestID: pr.ID,
		SupplierName:        "Shree Textiles",
		ExpectedDate:        "15/09/2026",
		Items: []POItemInput{
			{InventoryID: env.inv.ID, MaterialCode: env.inv.MaterialCode, MaterialName: env.inv.MaterialName, Quantity: 40, Unit: "m", UnitPrice: 5},
		},
	})
	if !errors.Is(err, wferr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var count int64
	env.db.Model(&entity.PurchaseOrder{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no purchase order rows, got %d", count)
	}
}
