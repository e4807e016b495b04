package repository

import (
	"context"

	"anoa.com/gooddeeds/internal/entity"
	"gorm.io/gorm"
)

// TargetRepository resolves the object a comment or like points at.
type TargetRepository interface {
	Exists(ctx context.Context, target entity.Target) (bool, error)
}

type targetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) Exists(ctx context.Context, target entity.Target) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}

	var model interface{}
	kind, id := target.Kind()
	switch kind {
	case entity.TargetDeed:
		model = &entity.Deed{}
	case entity.TargetAct:
		model = &entity.Act{}
	case entity.TargetComment:
		model = &entity.Comment{}
	case entity.TargetGroup:
		model = &entity.Group{}
	}

	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
