package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/deed/dto"
	deedRepo "anoa.com/gooddeeds/internal/modules/deed/repository"
	"anoa.com/gooddeeds/internal/search"
	"anoa.com/gooddeeds/pkg/apperror"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/textfilter"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type DeedService interface {
	CreateDeed(ctx context.Context, req dto.CreateDeedRequest) (*entity.Deed, error)
	ListDeeds(ctx context.Context, query dto.ListDeedsQuery) ([]entity.Deed, error)
	RequireDeed(ctx context.Context, id uuid.UUID) (*entity.Deed, error)
}

type deedService struct {
	repo  deedRepo.DeedRepository
	index search.DeedIndex
}

// NewDeedService accepts a nil index; listing then always uses the database.
func NewDeedService(repo deedRepo.DeedRepository, index search.DeedIndex) DeedService {
	return &deedService{repo: repo, index: index}
}

func (s *deedService) CreateDeed(ctx context.Context, req dto.CreateDeedRequest) (*entity.Deed, error) {
	deed := &entity.Deed{
		Title:       textfilter.Sanitize(req.Title),
		Description: textfilter.Sanitize(req.Description),
	}
	if deed.Title == "" {
		return nil, fmt.Errorf("deed title is empty: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, deed); err != nil {
		return nil, err
	}

	if s.index != nil {
		go func(d entity.Deed) {
			if err := s.index.IndexDeed(&d); err != nil {
				logger.Warn("index deed", zap.String("deed_id", d.ID.String()), zap.Error(err))
			}
		}(*deed)
	}

	return deed, nil
}

func (s *deedService) ListDeeds(ctx context.Context, query dto.ListDeedsQuery) ([]entity.Deed, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := strings.TrimSpace(query.Search)
	if q == "" {
		return s.repo.List(ctx, limit)
	}

	if s.index != nil && s.index.Healthy() {
		ids, err := s.index.SearchDeeds(q, limit)
		if err == nil {
			return s.repo.FindByIDs(ctx, ids)
		}
		logger.Warn("deed search failed, falling back to database", zap.Error(err))
	}

	return s.repo.Search(ctx, q, limit)
}

func (s *deedService) RequireDeed(ctx context.Context, id uuid.UUID) (*entity.Deed, error) {
	deed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("deed: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return deed, nil
}
