package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

func (r *SalesOrderRepository) WithTx(tx *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: tx}
}

func (r *SalesOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SalesOrder, int64, error) {
	var items []entity.SalesOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SalesOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("customer_name ILIKE ? OR order_number ILIKE ? OR product_name ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *SalesOrderRepository) FindByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&so).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &so, nil
}

func (r *SalesOrderRepository) Create(ctx context.Context, so *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Create(so).Error
}

func (r *SalesOrderRepository) Update(ctx context.Context, so *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Save(so).Error
}

// UpdateStatus flips only the status column. Used by workflow steps so a
// concurrent edit of other order fields is never clobbered.
func (r *SalesOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SalesOrder{}).
		Where("id = ?", id).
		Update("status", status).Error
}
