package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DispatchRepository struct {
	db *gorm.DB
}

func NewDispatchRepository(db *gorm.DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

func (r *DispatchRepository) WithTx(tx *gorm.DB) *DispatchRepository {
	return &DispatchRepository{db: tx}
}

func (r *DispatchRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialDispatch, int64, error) {
	var items []entity.MaterialDispatch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialDispatch{})

	if status := filters["received_status"]; status != "" {
		query = query.Where("received_status = ?", status)
	}
	if reqID := filters["request_id"]; reqID != "" {
		query = query.Where("request_id = ?", reqID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *DispatchRepository) FindByID(ctx context.Context, id string) (*entity.MaterialDispatch, error) {
	var d entity.MaterialDispatch
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// CountActiveForRequest counts dispatches of the request that have not yet
// been received.
func (r *DispatchRepository) CountActiveForRequest(ctx context.Context, requestID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.MaterialDispatch{}).
		Where("request_id = ? AND received_status = ?", requestID, entity.DispatchStatusPending).
		Count(&count).Error
	return count, err
}

func (r *DispatchRepository) Create(ctx context.Context, d *entity.MaterialDispatch) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DispatchRepository) Update(ctx context.Context, d *entity.MaterialDispatch) error {
	return r.db.WithContext(ctx).Save(d).Error
}

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) WithTx(tx *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: tx}
}

func (r *ReceiptRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReceipt, int64, error) {
	var items []entity.MaterialReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialReceipt{})

	if status := filters["verification_status"]; status != "" {
		query = query.Where("verification_status = ?", status)
	}
	if reqID := filters["request_id"]; reqID != "" {
		query = query.Where("request_id = ?", reqID)
	}
	if filters["has_discrepancy"] == "true" {
		query = query.Where("has_discrepancy = true")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (*entity.MaterialReceipt, error) {
	var rec entity.MaterialReceipt
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ReceiptRepository) FindByDispatchID(ctx context.Context, dispatchID string) (*entity.MaterialReceipt, error) {
	var rec entity.MaterialReceipt
	err := r.db.WithContext(ctx).Preload("Items").Where("dispatch_id = ?", dispatchID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindDispatchForUpdate locks the dispatch row for the duration of the
// transaction so concurrent receipts serialize on it.
func (r *ReceiptRepository) FindDispatchForUpdate(ctx context.Context, id string) (*entity.MaterialDispatch, error) {
	var d entity.MaterialDispatch
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *ReceiptRepository) Create(ctx context.Context, rec *entity.MaterialReceipt) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ReceiptRepository) Update(ctx context.Context, rec *entity.MaterialReceipt) error {
	return r.db.WithContext(ctx).Save(rec).Error
}
