package repository

import (
	"context"
	"errors"

	"github.com/codigix/passion-clothing-sub000/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) WithTx(tx *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: tx}
}

func (r *VerificationRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialVerification, int64, error) {
	var items []entity.MaterialVerification
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialVerification{})

	if result := filters["overall_result"]; result != "" {
		query = query.Where("overall_result = ?", result)
	}
	if status := filters["approval_status"]; status != "" {
		query = query.Where("approval_status = ?", status)
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

func (r *VerificationRepository) FindByID(ctx context.Context, id string) (*entity.MaterialVerification, error) {
	var v entity.MaterialVerification
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepository) FindByReceiptID(ctx context.Context, receiptID string) (*entity.MaterialVerification, error) {
	var v entity.MaterialVerification
	err := r.db.WithContext(ctx).Preload("Items").Where("receipt_id = ?", receiptID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepository) Create(ctx context.Context, v *entity.MaterialVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VerificationRepository) Update(ctx context.Context, v *entity.MaterialVerification) error {
	return r.db.WithContext(ctx).Save(v).Error
}

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) WithTx(tx *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: tx}
}

func (r *ApprovalRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionApproval, int64, error) {
	var items []entity.ProductionApproval
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionApproval{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if reqID := filters["request_id"]; reqID != "" {
		query = query.Where("request_id = ?", reqID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Allocations").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *ApprovalRepository) FindByID(ctx context.Context, id string) (*entity.ProductionApproval, error) {
	var a entity.ProductionApproval
	err := r.db.WithContext(ctx).Preload("Allocations").Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApprovalRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.ProductionApproval, error) {
	var a entity.ProductionApproval
	err := r.db.WithContext(ctx).Preload("Allocations").Where("request_id = ?", requestID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindForUpdate locks the approval row for the duration of the transaction
// so concurrent production starts serialize on the gate flag.
func (r *ApprovalRepository) FindForUpdate(ctx context.Context, id string) (*entity.ProductionApproval, error) {
	var a entity.ProductionApproval
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApprovalRepository) Create(ctx context.Context, a *entity.ProductionApproval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApprovalRepository) Update(ctx context.Context, a *entity.ProductionApproval) error {
	return r.db.WithContext(ctx).Save(a).Error
}
