package service

import (
	"context"
	"fmt"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	invsvc "github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	"github.com/codigix/passion-clothing-sub000/internal/procurement/repository"
	prodentity "github.com/codigix/passion-clothing-sub000/internal/production/entity"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcurementService raises purchase orders against reviewed production
// requests and books deliveries through GRNs. GRN verification is the only
// path by which purchased stock enters inventory.
type ProcurementService struct {
	db        *gorm.DB
	repos     *repository.Repositories
	inventory *invsvc.InventoryService
	seq       *sequence.Generator
	notifier  *notify.Dispatcher
}

func NewProcurementService(db *gorm.DB, repos *repository.Repositories, inventory *invsvc.InventoryService, seq *sequence.Generator, notifier *notify.Dispatcher) *ProcurementService {
	return &ProcurementService{db: db, repos: repos, inventory: inventory, seq: seq, notifier: notifier}
}

type POItemInput struct {
	InventoryID  string  `json:"inventory_id"`
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price" binding:"gte=0"`
}

type CreatePORequest struct {
	ProductionRequestID string        `json:"production_request_id"`
	SupplierName        string        `json:"supplier_name" binding:"required"`
	ExpectedDate        string        `json:"expected_date"` // YYYY-MM-DD
	PaymentTerms        string        `json:"payment_terms"`
	Notes               string        `json:"notes"`
	Items               []POItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreatePO raises a purchase order. When tied to a production request the
// request must already be reviewed by manufacturing.
func (s *ProcurementService) CreatePO(ctx context.Context, userID string, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("purchase order needs at least one item")
	}

	var salesOrderID *string
	if req.ProductionRequestID != "" {
		var pr prodentity.ProductionRequest
		if err := s.db.WithContext(ctx).Where("id = ?", req.ProductionRequestID).First(&pr).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, wferr.NotFound("production request %s does not exist", req.ProductionRequestID)
			}
			return nil, err
		}
		if pr.Status != prodentity.RequestStatusReviewed {
			return nil, wferr.InvalidState("production request %s is %s, purchase orders require a reviewed request", pr.RequestNumber, pr.Status)
		}
		salesOrderID = pr.SalesOrderID
	}

	po := &entity.PurchaseOrder{
		ID:           uuid.New().String()[:32],
		SupplierName: req.SupplierName,
		Status:       entity.POStatusDraft,
		Currency:     "INR",
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
		CreatedBy:    userID,
		SalesOrderID: salesOrderID,
	}
	if req.ProductionRequestID != "" {
		po.ProductionRequestID = &req.ProductionRequestID
	}
	if req.ExpectedDate != "" {
		t, perr := time.Parse("2006-01-02", req.ExpectedDate)
		if perr != nil {
			return nil, wferr.Validation("expected_date %q is not a valid YYYY-MM-DD date", req.ExpectedDate)
		}
		po.ExpectedDate = &t
	}
	var total float64
	for i, it := range req.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		item := entity.POItem{
			ID:           uuid.New().String()[:32],
			MaterialCode: it.MaterialCode,
			MaterialName: it.MaterialName,
			Quantity:     it.Quantity,
			Unit:         unit,
			UnitPrice:    it.UnitPrice,
			SortOrder:    i,
		}
		if it.InventoryID != "" {
			inventoryID := it.InventoryID
			item.InventoryID = &inventoryID
		}
		total += it.Quantity * it.UnitPrice
		po.Items = append(po.Items, item)
	}
	po.TotalAmount = total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "PO")
		if err != nil {
			return fmt.Errorf("failed to allocate PO number: %w", err)
		}
		po.PONumber = number
		if err := s.repos.PO.WithTx(tx).Create(ctx, po); err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}
		if salesOrderID != nil {
			err := tx.WithContext(ctx).Model(&salesentity.SalesOrder{}).
				Where("id = ? AND status = ?", *salesOrderID, salesentity.SOStatusConfirmed).
				Update("status", salesentity.SOStatusInProcurement).Error
			if err != nil {
				return fmt.Errorf("failed to advance sales order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (s *ProcurementService) GetPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := s.repos.PO.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("purchase order %s does not exist", id)
		}
		return nil, err
	}
	return po, nil
}

func (s *ProcurementService) ListPOs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.repos.PO.FindAll(ctx, page, pageSize, filters)
}

// SendPO marks a draft order as sent to the supplier; only sent orders can
// receive deliveries.
func (s *ProcurementService) SendPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := s.GetPO(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusDraft {
		return nil, wferr.InvalidState("purchase order %s is %s, only draft orders can be sent", po.PONumber, po.Status)
	}
	po.Status = entity.POStatusSent
	if err := s.repos.PO.Update(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to send purchase order: %w", err)
	}
	return po, nil
}

type GRNItemInput struct {
	POItemID    string  `json:"po_item_id" binding:"required"`
	ReceivedQty float64 `json:"received_qty" binding:"required,gt=0"`
}

type CreateGRNRequest struct {
	POID          string         `json:"po_id" binding:"required"`
	InvoiceNumber string         `json:"invoice_number"`
	Notes         string         `json:"notes"`
	Items         []GRNItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateGRN books a delivery against a sent or partially received PO. The
// GRN stays pending until verification posts its stock.
func (s *ProcurementService) CreateGRN(ctx context.Context, userID string, req *CreateGRNRequest) (*entity.GoodsReceiptNote, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("GRN needs at least one item")
	}

	po, err := s.GetPO(ctx, req.POID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusSent && po.Status != entity.POStatusPartiallyReceived {
		return nil, wferr.InvalidState("purchase order %s is %s, deliveries require a sent order", po.PONumber, po.Status)
	}

	poItems := make(map[string]*entity.POItem, len(po.Items))
	for i := range po.Items {
		poItems[po.Items[i].ID] = &po.Items[i]
	}

	grn := &entity.GoodsReceiptNote{
		ID:            uuid.New().String()[:32],
		POID:          po.ID,
		Status:        entity.GRNStatusPending,
		ReceivedDate:  time.Now(),
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	for _, it := range req.Items {
		poItem, ok := poItems[it.POItemID]
		if !ok {
			return nil, wferr.Validation("PO item %s does not belong to purchase order %s", it.POItemID, po.PONumber)
		}
		grn.Items = append(grn.Items, entity.GRNItem{
			ID:           uuid.New().String()[:32],
			POItemID:     poItem.ID,
			InventoryID:  poItem.InventoryID,
			MaterialCode: poItem.MaterialCode,
			MaterialName: poItem.MaterialName,
			OrderedQty:   poItem.Quantity,
			ReceivedQty:  it.ReceivedQty,
			Unit:         poItem.Unit,
			UnitPrice:    poItem.UnitPrice,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "GRN")
		if err != nil {
			return fmt.Errorf("failed to allocate GRN number: %w", err)
		}
		grn.GRNNumber = number
		return s.repos.GRN.WithTx(tx).Create(ctx, grn)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptInventory, notify.Message{
		Type:        "grn_created",
		Title:       "Delivery booked",
		Body:        fmt.Sprintf("GRN %s against %s awaits verification", grn.GRNNumber, po.PONumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "goods_receipt_note",
		RelatedID:   grn.ID,
	})
	return grn, nil
}

func (s *ProcurementService) GetGRN(ctx context.Context, id string) (*entity.GoodsReceiptNote, error) {
	grn, err := s.repos.GRN.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("GRN %s does not exist", id)
		}
		return nil, err
	}
	return grn, nil
}

func (s *ProcurementService) ListGRNs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsReceiptNote, int64, error) {
	return s.repos.GRN.FindAll(ctx, page, pageSize, filters)
}

// VerifyGRN accepts or rejects a pending delivery. Acceptance posts each
// line's stock into inventory, bumps the PO item's received quantity, and
// raises a credit note for any overage beyond the ordered quantity.
func (s *ProcurementService) VerifyGRN(ctx context.Context, userID, id string, accept bool, remarks string) (*entity.GoodsReceiptNote, error) {
	grn, err := s.GetGRN(ctx, id)
	if err != nil {
		return nil, err
	}
	if grn.Status != entity.GRNStatusPending {
		return nil, wferr.InvalidState("GRN %s is %s, only pending GRNs can be verified", grn.GRNNumber, grn.Status)
	}

	po, err := s.GetPO(ctx, grn.POID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var creditNote *entity.CreditNote

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grn.VerifiedBy = &userID
		grn.VerifiedAt = &now
		if remarks != "" {
			grn.Notes = remarks
		}

		if !accept {
			grn.Status = entity.GRNStatusRejected
			return s.repos.GRN.WithTx(tx).Update(ctx, grn)
		}
		grn.Status = entity.GRNStatusVerified
		if err := s.repos.GRN.WithTx(tx).Update(ctx, grn); err != nil {
			return err
		}

		poItems := make(map[string]*entity.POItem, len(po.Items))
		for i := range po.Items {
			poItems[po.Items[i].ID] = &po.Items[i]
		}

		var overageAmount float64
		for _, line := range grn.Items {
			poItem := poItems[line.POItemID]
			if poItem == nil {
				return wferr.Validation("GRN line references unknown PO item %s", line.POItemID)
			}

			if line.InventoryID != nil {
				err := s.inventory.AdjustStockTx(ctx, tx, *line.InventoryID, line.ReceivedQty, invsvc.StockRef{
					Type:  "GRN",
					ID:    grn.ID,
					Code:  grn.GRNNumber,
					TxTyp: inventity.TxTypePurchaseIn,
					Notes: fmt.Sprintf("delivery against %s", po.PONumber),
					By:    userID,
				})
				if err != nil {
					return err
				}
			}

			poItem.ReceivedQty += line.ReceivedQty
			if err := s.repos.PO.WithTx(tx).UpdateItem(ctx, poItem); err != nil {
				return fmt.Errorf("failed to update PO item: %w", err)
			}
			if over := poItem.ReceivedQty - poItem.Quantity; over > 0 {
				overageAmount += over * poItem.UnitPrice
			}
		}

		fullyReceived := true
		for _, poItem := range poItems {
			if poItem.ReceivedQty < poItem.Quantity {
				fullyReceived = false
				break
			}
		}
		if fullyReceived {
			po.Status = entity.POStatusReceived
		} else {
			po.Status = entity.POStatusPartiallyReceived
		}
		if err := s.repos.PO.WithTx(tx).Update(ctx, po); err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}

		if overageAmount > 0 {
			number, err := s.seq.NextTx(ctx, tx, "CN")
			if err != nil {
				return fmt.Errorf("failed to allocate credit note number: %w", err)
			}
			creditNote = &entity.CreditNote{
				ID:               uuid.New().String()[:32],
				CreditNoteNumber: number,
				GRNID:            grn.ID,
				POID:             po.ID,
				SupplierName:     po.SupplierName,
				Amount:           overageAmount,
				Reason:           fmt.Sprintf("delivery %s exceeded ordered quantities on %s", grn.GRNNumber, po.PONumber),
				Status:           entity.CreditNoteStatusPending,
			}
			if err := s.repos.CreditNote.WithTx(tx).Create(ctx, creditNote); err != nil {
				return fmt.Errorf("failed to create credit note: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accept {
		s.notifier.NotifyDepartment(ctx, identity.DeptProcurement, notify.Message{
			Type:        "grn_verified",
			Title:       "Delivery verified",
			Body:        fmt.Sprintf("GRN %s verified, stock posted to inventory", grn.GRNNumber),
			Priority:    notify.PriorityNormal,
			RelatedType: "goods_receipt_note",
			RelatedID:   grn.ID,
		})
		if creditNote != nil {
			s.notifier.NotifyDepartment(ctx, identity.DeptFinance, notify.Message{
				Type:        "credit_note_raised",
				Title:       "Credit note raised",
				Body:        fmt.Sprintf("Credit note %s for %.2f raised against %s", creditNote.CreditNoteNumber, creditNote.Amount, po.PONumber),
				Priority:    notify.PriorityHigh,
				RelatedType: "credit_note",
				RelatedID:   creditNote.ID,
			})
		}
	} else {
		s.notifier.NotifyDepartment(ctx, identity.DeptProcurement, notify.Message{
			Type:        "grn_rejected",
			Title:       "Delivery rejected",
			Body:        fmt.Sprintf("GRN %s was rejected: %s", grn.GRNNumber, remarks),
			Priority:    notify.PriorityHigh,
			RelatedType: "goods_receipt_note",
			RelatedID:   grn.ID,
		})
	}
	return grn, nil
}

func (s *ProcurementService) GetCreditNote(ctx context.Context, id string) (*entity.CreditNote, error) {
	cn, err := s.repos.CreditNote.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("credit note %s does not exist", id)
		}
		return nil, err
	}
	return cn, nil
}

func (s *ProcurementService) ListCreditNotes(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.CreditNote, int64, error) {
	return s.repos.CreditNote.FindAll(ctx, page, pageSize, filters)
}

// ApproveCreditNote moves a pending credit note into the approved state
// for finance settlement.
func (s *ProcurementService) ApproveCreditNote(ctx context.Context, userID, id string) (*entity.CreditNote, error) {
	cn, err := s.GetCreditNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if cn.Status != entity.CreditNoteStatusPending {
		return nil, wferr.InvalidState("credit note %s is %s, only pending credit notes can be approved", cn.CreditNoteNumber, cn.Status)
	}
	now := time.Now()
	cn.Status = entity.CreditNoteStatusApproved
	cn.ApprovedBy = &userID
	cn.ApprovedAt = &now
	if err := s.repos.CreditNote.Update(ctx, cn); err != nil {
		return nil, fmt.Errorf("failed to approve credit note: %w", err)
	}
	return cn, nil
}
