package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

func (r *RequestRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionRequest, int64, error) {
	var items []entity.ProductionRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionRequest{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if soID := filters["sales_order_id"]; soID != "" {
		query = query.Where("sales_order_id = ?", soID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("request_number ILIKE ? OR customer_po ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.ProductionRequest, error) {
	var req entity.ProductionRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ExistsForSalesOrder reports whether an active (not cancelled) request
// already covers the sales order.
func (r *RequestRepository) ExistsForSalesOrder(ctx context.Context, salesOrderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProductionRequest{}).
		Where("sales_order_id = ? AND status <> ?", salesOrderID, entity.RequestStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *RequestRepository) Create(ctx context.Context, req *entity.ProductionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Update(ctx context.Context, req *entity.ProductionRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

type MaterialRequestRepository struct {
	db *gorm.DB
}

func NewMaterialRequestRepository(db *gorm.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: db}
}

func (r *MaterialRequestRepository) WithTx(tx *gorm.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: tx}
}

func (r *MaterialRequestRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequest, int64, error) {
	var items []entity.MaterialRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialRequest{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if reqID := filters["production_request_id"]; reqID != "" {
		query = query.Where("production_request_id = ?", reqID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *MaterialRequestRepository) FindByID(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	var req entity.MaterialRequest
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindForUpdate locks the request row for the duration of the transaction
// so concurrent dispatches against it serialize.
func (r *MaterialRequestRepository) FindForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	var req entity.MaterialRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *MaterialRequestRepository) Create(ctx context.Context, req *entity.MaterialRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *MaterialRequestRepository) Update(ctx context.Context, req *entity.MaterialRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *MaterialRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.MaterialRequest{}).
		Where("id = ?", id).Update("status", status).Error
}
