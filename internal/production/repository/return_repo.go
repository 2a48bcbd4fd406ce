package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReturnRepository struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

func (r *ReturnRepository) WithTx(tx *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: tx}
}

func (r *ReturnRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReturn, int64, error) {
	var items []entity.MaterialReturn
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialReturn{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *ReturnRepository) FindByID(ctx context.Context, id string) (*entity.MaterialReturn, error) {
	var ret entity.MaterialReturn
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&ret).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindForUpdate locks the return row for the duration of the transaction
// so concurrent approvals and processing serialize on its status.
func (r *ReturnRepository) FindForUpdate(ctx context.Context, id string) (*entity.MaterialReturn, error) {
	var ret entity.MaterialReturn
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", id).
		First(&ret).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepository) Create(ctx context.Context, ret *entity.MaterialReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *ReturnRepository) Update(ctx context.Context, ret *entity.MaterialReturn) error {
	return r.db.WithContext(ctx).Save(ret).Error
}
