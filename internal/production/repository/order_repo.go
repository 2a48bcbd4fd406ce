package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionOrder, int64, error) {
	var items []entity.ProductionOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if soID := filters["sales_order_id"]; soID != "" {
		query = query.Where("sales_order_id = ?", soID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_number ILIKE ? OR product_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Preload("Stages.Checkpoints").
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForUpdate locks the order row so stage transitions and rollups
// serialize per order.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) Update(ctx context.Context, o *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Omit("Stages").Save(o).Error
}

func (r *OrderRepository) FindStage(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	var s entity.ProductionStage
	err := r.db.WithContext(ctx).Preload("Checkpoints").Where("id = ?", stageID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindStageForUpdate locks one stage row.
func (r *OrderRepository) FindStageForUpdate(ctx context.Context, stageID string) (*entity.ProductionStage, error) {
	var s entity.ProductionStage
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", stageID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindStagesForUpdate locks every stage of the order, in stage order.
func (r *OrderRepository) FindStagesForUpdate(ctx context.Context, orderID string) ([]entity.ProductionStage, error) {
	var stages []entity.ProductionStage
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		Order("stage_order ASC").
		Find(&stages).Error
	return stages, err
}

func (r *OrderRepository) UpdateStage(ctx context.Context, s *entity.ProductionStage) error {
	return r.db.WithContext(ctx).Omit("Checkpoints").Save(s).Error
}

func (r *OrderRepository) CreateCheckpoint(ctx context.Context, cp *entity.QualityCheckpoint) error {
	return r.db.WithContext(ctx).Create(cp).Error
}

func (r *OrderRepository) UpdateCheckpoint(ctx context.Context, cp *entity.QualityCheckpoint) error {
	return r.db.WithContext(ctx).Save(cp).Error
}

func (r *OrderRepository) FindCheckpoint(ctx context.Context, id string) (*entity.QualityCheckpoint, error) {
	var cp entity.QualityCheckpoint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

func (r *OrderRepository) CreateReworkHistory(ctx context.Context, h *entity.StageReworkHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *OrderRepository) ListReworkHistory(ctx context.Context, stageID string) ([]entity.StageReworkHistory, error) {
	var hist []entity.StageReworkHistory
	err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("iteration ASC, created_at ASC").
		Find(&hist).Error
	return hist, err
}

func (r *OrderRepository) CreateRejection(ctx context.Context, rej *entity.StageRejection) error {
	return r.db.WithContext(ctx).Create(rej).Error
}

func (r *OrderRepository) ListRejections(ctx context.Context, stageID string) ([]entity.StageRejection, error) {
	var rejs []entity.StageRejection
	err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("created_at ASC").
		Find(&rejs).Error
	return rejs, err
}
