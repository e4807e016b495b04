package repository

import (
	"context"
	"strings"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeedRepository interface {
	Create(ctx context.Context, deed *entity.Deed) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Deed, error)
	// FindByIDs keeps the order of ids and skips unknown ones.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Deed, error)
	List(ctx context.Context, limit int) ([]entity.Deed, error)
	// Search is the database fallback when the search index is down.
	Search(ctx context.Context, query string, limit int) ([]entity.Deed, error)
}

type deedRepository struct {
	db *gorm.DB
}

func NewDeedRepository(db *gorm.DB) DeedRepository {
	return &deedRepository{db: db}
}

func (r *deedRepository) Create(ctx context.Context, deed *entity.Deed) error {
	return r.db.WithContext(ctx).Create(deed).Error
}

func (r *deedRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Deed, error) {
	var deed entity.Deed
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deed).Error; err != nil {
		return nil, err
	}
	return &deed, nil
}

func (r *deedRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Deed, error) {
	if len(ids) == 0 {
		return []entity.Deed{}, nil
	}

	var rows []entity.Deed
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Deed, len(rows))
	for _, d := range rows {
		byID[d.ID] = d
	}
	deeds := make([]entity.Deed, 0, len(rows))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			deeds = append(deeds, d)
		}
	}
	return deeds, nil
}

func (r *deedRepository) List(ctx context.Context, limit int) ([]entity.Deed, error) {
	var deeds []entity.Deed
	err := r.db.WithContext(ctx).Order("title ASC").Limit(limit).Find(&deeds).Error
	return deeds, err
}

func (r *deedRepository) Search(ctx context.Context, query string, limit int) ([]entity.Deed, error) {
	var deeds []entity.Deed
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("title ASC").
		Limit(limit).
		Find(&deeds).Error
	return deeds, err
}
