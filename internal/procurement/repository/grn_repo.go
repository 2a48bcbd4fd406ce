package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	"gorm.io/gorm"
)

type GRNRepository struct {
	db *gorm.DB
}

func NewGRNRepository(db *gorm.DB) *GRNRepository {
	return &GRNRepository{db: db}
}

func (r *GRNRepository) WithTx(tx *gorm.DB) *GRNRepository {
	return &GRNRepository{db: tx}
}

func (r *GRNRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsReceiptNote, int64, error) {
	var items []entity.GoodsReceiptNote
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.GoodsReceiptNote{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if poID := filters["po_id"]; poID != "" {
		query = query.Where("po_id = ?", poID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *GRNRepository) FindByID(ctx context.Context, id string) (*entity.GoodsReceiptNote, error) {
	var grn entity.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&grn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &grn, nil
}

func (r *GRNRepository) Create(ctx context.Context, grn *entity.GoodsReceiptNote) error {
	return r.db.WithContext(ctx).Create(grn).Error
}

func (r *GRNRepository) Update(ctx context.Context, grn *entity.GoodsReceiptNote) error {
	return r.db.WithContext(ctx).Save(grn).Error
}
