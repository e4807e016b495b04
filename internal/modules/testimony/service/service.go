package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/gooddeeds/internal/entity"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"
	"anoa.com/gooddeeds/internal/modules/testimony/dto"
	testimonyRepo "anoa.com/gooddeeds/internal/modules/testimony/repository"
	"anoa.com/gooddeeds/pkg/apperror"
	"anoa.com/gooddeeds/pkg/textfilter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Groups interface {
	RequireGroup(ctx context.Context, groupID uuid.UUID) (*entity.Group, error)
	RequireCampaign(ctx context.Context, campaignID uuid.UUID, groupID *uuid.UUID) (*entity.Campaign, error)
}

type SuperAdmins interface {
	IsSuperAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

type TestimonyService interface {
	CreateTestimony(ctx context.Context, userID uuid.UUID, req dto.CreateTestimonyRequest) (*entity.SalvationTestimony, error)
	DeleteTestimony(ctx context.Context, userID, testimonyID uuid.UUID) error
}

type testimonyService struct {
	repo   testimonyRepo.TestimonyRepository
	groups Groups
	supers SuperAdmins
	events feedService.Events
}

func NewTestimonyService(repo testimonyRepo.TestimonyRepository, groups Groups, supers SuperAdmins, events feedService.Events) TestimonyService {
	return &testimonyService{repo: repo, groups: groups, supers: supers, events: events}
}

func (s *testimonyService) CreateTestimony(ctx context.Context, userID uuid.UUID, req dto.CreateTestimonyRequest) (*entity.SalvationTestimony, error) {
	text := textfilter.Sanitize(req.Text)
	if text == "" {
		return nil, fmt.Errorf("testimony is empty: %w", apperror.ErrInvalidInput)
	}
	if textfilter.ContainsProfanity(text) {
		return nil, apperror.New(http.StatusBadRequest, "testimony contains inappropriate language", apperror.ErrInvalidInput)
	}

	testimony := &entity.SalvationTestimony{UserID: userID, Text: text}

	if req.GroupID != "" {
		groupID, err := uuid.Parse(req.GroupID)
		if err != nil {
			return nil, fmt.Errorf("group must be a valid id: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.groups.RequireGroup(ctx, groupID); err != nil {
			return nil, err
		}
		testimony.GroupID = &groupID
	}
	if req.CampaignID != "" {
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("campaign must be a valid id: %w", apperror.ErrInvalidInput)
		}
		campaign, err := s.groups.RequireCampaign(ctx, campaignID, testimony.GroupID)
		if err != nil {
			return nil, err
		}
		testimony.CampaignID = &campaignID
		testimony.GroupID = &campaign.GroupID
	}

	if err := s.repo.Create(ctx, testimony); err != nil {
		return nil, err
	}

	s.events.DocumentSaved(feedService.TestimonySource(testimony))
	return testimony, nil
}

func (s *testimonyService) DeleteTestimony(ctx context.Context, userID, testimonyID uuid.UUID) error {
	testimony, err := s.repo.FindByID(ctx, testimonyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("testimony: %w", apperror.ErrNotFound)
		}
		return err
	}

	if testimony.UserID != userID {
		super, err := s.supers.IsSuperAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !super {
			return fmt.Errorf("not the author of this testimony: %w", apperror.ErrForbidden)
		}
	}

	if err := s.repo.Delete(ctx, testimony.ID); err != nil {
		return err
	}

	s.events.DocumentRemoved(feedService.TestimonySource(testimony))
	return nil
}
