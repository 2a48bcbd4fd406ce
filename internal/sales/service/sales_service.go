package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/sales/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
)

type SalesService struct {
	repo *repository.SalesOrderRepository
	seq  *sequence.Generator
}

func NewSalesService(repo *repository.SalesOrderRepository, seq *sequence.Generator) *SalesService {
	return &SalesService{repo: repo, seq: seq}
}

type CreateSalesOrderRequest struct {
	CustomerName string  `json:"customer_name" binding:"required"`
	ProductName  string  `json:"product_name" binding:"required"`
	StyleCode    string  `json:"style_code"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price" binding:"gte=0"`
	DeliveryDate string  `json:"delivery_date"` // YYYY-MM-DD
	Notes        string  `json:"notes"`
}

func (s *SalesService) Create(ctx context.Context, userID string, req *CreateSalesOrderRequest) (*entity.SalesOrder, error) {
	number, err := s.seq.Next(ctx, "SO")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	so := &entity.SalesOrder{
		ID:           uuid.New().String()[:32],
		OrderNumber:  number,
		CustomerName: req.CustomerName,
		ProductName:  req.ProductName,
		StyleCode:    req.StyleCode,
		Quantity:     req.Quantity,
		Unit:         unit,
		UnitPrice:    req.UnitPrice,
		Status:       entity.SOStatusPending,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if req.DeliveryDate != "" {
		if t, perr := time.Parse("2006-01-02", req.DeliveryDate); perr == nil {
			so.DeliveryDate = &t
		}
	}

	if err := s.repo.Create(ctx, so); err != nil {
		return nil, fmt.Errorf("failed to create sales order: %w", err)
	}
	return so, nil
}

func (s *SalesService) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	so, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, wferr.NotFound("sales order %s does not exist", id)
		}
		return nil, err
	}
	return so, nil
}

func (s *SalesService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SalesOrder, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Confirm moves a pending order into the workflow.
func (s *SalesService) Confirm(ctx context.Context, id string) (*entity.SalesOrder, error) {
	so, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so.Status != entity.SOStatusPending {
		return nil, wferr.InvalidState("sales order %s is %s, only pending orders can be confirmed", so.OrderNumber, so.Status)
	}
	so.Status = entity.SOStatusConfirmed
	if err := s.repo.Update(ctx, so); err != nil {
		return nil, fmt.Errorf("failed to confirm sales order: %w", err)
	}
	return so, nil
}

// Cancel terminates an order that has not entered production.
func (s *SalesService) Cancel(ctx context.Context, id string) (*entity.SalesOrder, error) {
	so, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch so.Status {
	case entity.SOStatusInProduction, entity.SOStatusCompleted, entity.SOStatusShipped:
		return nil, wferr.InvalidState("sales order %s is %s and can no longer be cancelled", so.OrderNumber, so.Status)
	case entity.SOStatusCancelled:
		return nil, wferr.InvalidState("sales order %s is already cancelled", so.OrderNumber)
	}
	so.Status = entity.SOStatusCancelled
	if err := s.repo.Update(ctx, so); err != nil {
		return nil, fmt.Errorf("failed to cancel sales order: %w", err)
	}
	return so, nil
}
