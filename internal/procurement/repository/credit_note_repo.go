package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	"gorm.io/gorm"
)

type CreditNoteRepository struct {
	db *gorm.DB
}

func NewCreditNoteRepository(db *gorm.DB) *CreditNoteRepository {
	return &CreditNoteRepository{db: db}
}

func (r *CreditNoteRepository) WithTx(tx *gorm.DB) *CreditNoteRepository {
	return &CreditNoteRepository{db: tx}
}

func (r *CreditNoteRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.CreditNote, int64, error) {
	var items []entity.CreditNote
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CreditNote{})

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
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *CreditNoteRepository) FindByID(ctx context.Context, id string) (*entity.CreditNote, error) {
	var cn entity.CreditNote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cn, nil
}

func (r *CreditNoteRepository) Create(ctx context.Context, cn *entity.CreditNote) error {
	return r.db.WithContext(ctx).Create(cn).Error
}

func (r *CreditNoteRepository) Update(ctx context.Context, cn *entity.CreditNote) error {
	return r.db.WithContext(ctx).Save(cn).Error
}
