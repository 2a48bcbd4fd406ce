package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	"github.com/codigix/passion-clothing-sub000/internal/inventory/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/wferr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryService struct {
	repo *repository.InventoryRepository
	db   *gorm.DB
}

func NewInventoryService(repo *repository.InventoryRepository, db *gorm.DB) *InventoryService {
	return &InventoryService{repo: repo, db: db}
}

type CreateInventoryRequest struct {
	MaterialCode string  `json:"material_code" binding:"required"`
	MaterialName string  `json:"material_name" binding:"required"`
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost" binding:"gte=0"`
	SafetyStock  float64 `json:"safety_stock" binding:"gte=0"`
	Location     string  `json:"location"`
}

func (s *InventoryService) Create(ctx context.Context, req *CreateInventoryRequest) (*entity.Inventory, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	inv := &entity.Inventory{
		ID:           uuid.New().String()[:32],
		MaterialCode: req.MaterialCode,
		MaterialName: req.MaterialName,
		Category:     req.Category,
		Quantity:     req.Quantity,
		AvailableQty: req.Quantity,
		Unit:         unit,
		UnitCost:     req.UnitCost,
		SafetyStock:  req.SafetyStock,
		Location:     req.Location,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return inv, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id string) (*entity.Inventory, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *InventoryService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Inventory, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *InventoryService) ListTransactions(ctx context.Context, inventoryID string, limit int) ([]entity.InventoryTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListTransactions(ctx, inventoryID, limit)
}

// StockRef identifies the workflow document driving a stock movement.
type StockRef struct {
	Type  string // GRN, DSP, MRT, ADJ
	ID    string
	Code  string
	TxTyp string // entity.TxType*
	Notes string
	By    string
}

// AdjustStockTx applies a stock delta inside an enclosing transaction,
// locking the inventory row first. Negative deltas must be covered by
// available stock.
func (s *InventoryService) AdjustStockTx(ctx context.Context, tx *gorm.DB, inventoryID string, delta float64, ref StockRef) error {
	repo := s.repo.WithTx(tx)

	inv, err := repo.FindByIDForUpdate(ctx, inventoryID)
	if err != nil {
		if err == repository.ErrNotFound {
			return wferr.NotFound("inventory item %s does not exist", inventoryID)
		}
		return err
	}

	if delta < 0 && inv.AvailableQty+delta < 0 {
		return wferr.Conflict("insufficient stock for %s: available %.4f, requested %.4f",
			inv.MaterialCode, inv.AvailableQty, -delta)
	}

	now := time.Now()
	inv.Quantity += delta
	inv.AvailableQty += delta
	inv.LastMovedAt = &now
	if err := repo.Update(ctx, inv); err != nil {
		return fmt.Errorf("failed to update inventory %s: %w", inv.MaterialCode, err)
	}

	movement := &entity.InventoryTransaction{
		ID:              uuid.New().String()[:32],
		InventoryID:     inv.ID,
		MaterialCode:    inv.MaterialCode,
		MaterialName:    inv.MaterialName,
		TransactionType: ref.TxTyp,
		Quantity:        delta,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		ReferenceCode:   ref.Code,
		Notes:           ref.Notes,
		CreatedBy:       ref.By,
	}
	if err := repo.CreateTransaction(ctx, movement); err != nil {
		return fmt.Errorf("failed to record inventory transaction: %w", err)
	}
	return nil
}

// AdjustStock is the standalone form used by manual corrections.
func (s *InventoryService) AdjustStock(ctx context.Context, inventoryID string, delta float64, ref StockRef) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.AdjustStockTx(ctx, tx, inventoryID, delta, ref)
	})
}
