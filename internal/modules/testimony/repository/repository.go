package repository

import (
	"context"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestimonyRepository interface {
	Create(ctx context.Context, testimony *entity.SalvationTestimony) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SalvationTestimony, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type testimonyRepository struct {
	db *gorm.DB
}

func NewTestimonyRepository(db *gorm.DB) TestimonyRepository {
	return &testimonyRepository{db: db}
}

func (r *testimonyRepository) Create(ctx context.Context, testimony *entity.SalvationTestimony) error {
	return r.db.WithContext(ctx).Create(testimony).Error
}

func (r *testimonyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SalvationTestimony, error) {
	var testimony entity.SalvationTestimony
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&testimony).Error; err != nil {
		return nil, err
	}
	return &testimony, nil
}

func (r *testimonyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.SalvationTestimony{}).Error
}
