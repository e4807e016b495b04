package repository

import (
	"context"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const bulkBatchSize = 200

type ActRepository interface {
	Create(ctx context.Context, act *entity.Act) error
	// CreateBulk inserts all acts in one transaction.
	CreateBulk(ctx context.Context, acts []entity.Act) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Act, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type actRepository struct {
	db *gorm.DB
}

func NewActRepository(db *gorm.DB) ActRepository {
	return &actRepository{db: db}
}

func (r *actRepository) Create(ctx context.Context, act *entity.Act) error {
	return r.db.WithContext(ctx).Create(act).Error
}

func (r *actRepository) CreateBulk(ctx context.Context, acts []entity.Act) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&acts, bulkBatchSize).Error
	})
}

func (r *actRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Act, error) {
	var act entity.Act
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&act).Error; err != nil {
		return nil, err
	}
	return &act, nil
}

func (r *actRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Act{}).Error
}
