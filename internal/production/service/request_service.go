package service

import (
	"context"
	"fmt"
	"time"

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

// RequestService owns production requests and material requests (MRNs),
// the two documents that open the production workflow.
type RequestService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	seq      *sequence.Generator
	notifier *notify.Dispatcher
}

func NewRequestService(db *gorm.DB, repos *repository.Repositories, seq *sequence.Generator, notifier *notify.Dispatcher) *RequestService {
	return &RequestService{db: db, repos: repos, seq: seq, notifier: notifier}
}

type CreateProductionRequestRequest struct {
	SalesOrderID string  `json:"sales_order_id"`
	CustomerPO   string  `json:"customer_po"`
	ProductName  string  `json:"product_name" binding:"required"`
	StyleCode    string  `json:"style_code"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	Priority     string  `json:"priority"`
	RequiredDate string  `json:"required_date"` // YYYY-MM-DD
	Notes        string  `json:"notes"`
}

// Create opens a production request. At most one non-cancelled request may
// exist per sales order.
func (s *RequestService) Create(ctx context.Context, userID string, req *CreateProductionRequestRequest) (*entity.ProductionRequest, error) {
	if req.SalesOrderID != "" {
		var so salesentity.SalesOrder
		if err := s.db.WithContext(ctx).Where("id = ?", req.SalesOrderID).First(&so).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, wferr.NotFound("sales order %s does not exist", req.SalesOrderID)
			}
			return nil, err
		}
		exists, err := s.repos.Request.ExistsForSalesOrder(ctx, req.SalesOrderID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, wferr.Conflict("sales order %s already has an active production request", req.SalesOrderID)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	pr := &entity.ProductionRequest{
		ID:          uuid.New().String()[:32],
		CustomerPO:  req.CustomerPO,
		ProductName: req.ProductName,
		StyleCode:   req.StyleCode,
		Quantity:    req.Quantity,
		Unit:        unit,
		Priority:    priority,
		Status:      entity.RequestStatusPending,
		Notes:       req.Notes,
		CreatedBy:   userID,
	}
	if req.SalesOrderID != "" {
		pr.SalesOrderID = &req.SalesOrderID
	}
	if req.RequiredDate != "" {
		t, perr := time.Parse("2006-01-02", req.RequiredDate)
		if perr != nil {
			return nil, wferr.Validation("required_date %q is not a valid YYYY-MM-DD date", req.RequiredDate)
		}
		pr.RequiredDate = &t
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "PRQ")
		if err != nil {
			return fmt.Errorf("failed to allocate request number: %w", err)
		}
		pr.RequestNumber = number
		return s.repos.Request.WithTx(tx).Create(ctx, pr)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptManufacturing, notify.Message{
		Type:        "production_request_created",
		Title:       "New production request",
		Body:        fmt.Sprintf("Production request %s for %s awaits review", pr.RequestNumber, pr.ProductName),
		Priority:    notify.PriorityNormal,
		RelatedType: "production_request",
		RelatedID:   pr.ID,
	})
	return pr, nil
}

func (s *RequestService) GetByID(ctx context.Context, id string) (*entity.ProductionRequest, error) {
	pr, err := s.repos.Request.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("production request %s does not exist", id)
		}
		return nil, err
	}
	return pr, nil
}

func (s *RequestService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionRequest, int64, error) {
	return s.repos.Request.FindAll(ctx, page, pageSize, filters)
}

type ReviewRequestRequest struct {
	Notes string `json:"notes"`
}

// Review is manufacturing's acceptance of a pending request. Only a
// reviewed request can be turned into a purchase order.
func (s *RequestService) Review(ctx context.Context, userID, id string, req *ReviewRequestRequest) (*entity.ProductionRequest, error) {
	pr, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Status != entity.RequestStatusPending {
		return nil, wferr.InvalidState("production request %s is %s, only pending requests can be reviewed", pr.RequestNumber, pr.Status)
	}

	now := time.Now()
	pr.Status = entity.RequestStatusReviewed
	pr.ReviewedBy = &userID
	pr.ReviewedAt = &now
	pr.ReviewNotes = req.Notes
	if err := s.repos.Request.Update(ctx, pr); err != nil {
		return nil, fmt.Errorf("failed to review production request: %w", err)
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptProcurement, notify.Message{
		Type:        "production_request_reviewed",
		Title:       "Production request reviewed",
		Body:        fmt.Sprintf("Request %s is reviewed and ready for procurement", pr.RequestNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "production_request",
		RelatedID:   pr.ID,
	})
	return pr, nil
}

// Cancel terminates a request that has not entered production.
func (s *RequestService) Cancel(ctx context.Context, id string) (*entity.ProductionRequest, error) {
	pr, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch pr.Status {
	case entity.RequestStatusInProduction, entity.RequestStatusCompleted:
		return nil, wferr.InvalidState("production request %s is %s and can no longer be cancelled", pr.RequestNumber, pr.Status)
	case entity.RequestStatusCancelled:
		return nil, wferr.InvalidState("production request %s is already cancelled", pr.RequestNumber)
	}
	pr.Status = entity.RequestStatusCancelled
	if err := s.repos.Request.Update(ctx, pr); err != nil {
		return nil, fmt.Errorf("failed to cancel production request: %w", err)
	}
	return pr, nil
}

type MaterialRequestItemInput struct {
	InventoryID  string  `json:"inventory_id" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
}

type CreateMaterialRequestRequest struct {
	ProductionRequestID string                     `json:"production_request_id"`
	SalesOrderID        string                     `json:"sales_order_id"`
	RequiredDate        string                     `json:"required_date"` // YYYY-MM-DD
	Notes               string                     `json:"notes"`
	Items               []MaterialRequestItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateMaterialRequest opens an MRN, the anchor of the dispatch →
// receipt → verification → approval chain.
func (s *RequestService) CreateMaterialRequest(ctx context.Context, userID string, req *CreateMaterialRequestRequest) (*entity.MaterialRequest, error) {
	if len(req.Items) == 0 {
		return nil, wferr.Validation("material request needs at least one item")
	}
	if req.ProductionRequestID != "" {
		if _, err := s.GetByID(ctx, req.ProductionRequestID); err != nil {
			return nil, err
		}
	}

	mrn := &entity.MaterialRequest{
		ID:          uuid.New().String()[:32],
		Status:      entity.MRNStatusPending,
		Notes:       req.Notes,
		RequestedBy: userID,
	}
	if req.ProductionRequestID != "" {
		mrn.ProductionRequestID = &req.ProductionRequestID
	}
	if req.SalesOrderID != "" {
		mrn.SalesOrderID = &req.SalesOrderID
	}
	if req.RequiredDate != "" {
		t, perr := time.Parse("2006-01-02", req.RequiredDate)
		if perr != nil {
			return nil, wferr.Validation("required_date %q is not a valid YYYY-MM-DD date", req.RequiredDate)
		}
		mrn.RequiredDate = &t
	}
	for _, it := range req.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		mrn.Items = append(mrn.Items, entity.MaterialRequestItem{
			ID:           uuid.New().String()[:32],
			InventoryID:  it.InventoryID,
			MaterialName: it.MaterialName,
			Quantity:     it.Quantity,
			Unit:         unit,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.seq.NextTx(ctx, tx, "MRN")
		if err != nil {
			return fmt.Errorf("failed to allocate MRN number: %w", err)
		}
		mrn.RequestNumber = number
		return s.repos.MaterialRequest.WithTx(tx).Create(ctx, mrn)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyDepartment(ctx, identity.DeptInventory, notify.Message{
		Type:        "material_request_created",
		Title:       "New material request",
		Body:        fmt.Sprintf("Material request %s awaits dispatch", mrn.RequestNumber),
		Priority:    notify.PriorityNormal,
		RelatedType: "material_request",
		RelatedID:   mrn.ID,
	})
	return mrn, nil
}

func (s *RequestService) GetMaterialRequest(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	mrn, err := s.repos.MaterialRequest.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("material request %s does not exist", id)
		}
		return nil, err
	}
	return mrn, nil
}

func (s *RequestService) ListMaterialRequests(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequest, int64, error) {
	return s.repos.MaterialRequest.FindAll(ctx, page, pageSize, filters)
}
