package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/act/dto"
	actRepo "anoa.com/gooddeeds/internal/modules/act/repository"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"
	"anoa.com/gooddeeds/pkg/apperror"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxBulkCount = 1000

// Deeds and Groups are the lookups acts need from the deed and group modules.
type Deeds interface {
	RequireDeed(ctx context.Context, id uuid.UUID) (*entity.Deed, error)
}

type Groups interface {
	RequireGroup(ctx context.Context, groupID uuid.UUID) (*entity.Group, error)
	RequireCampaign(ctx context.Context, campaignID uuid.UUID, groupID *uuid.UUID) (*entity.Campaign, error)
	CanAdminister(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
}

type SuperAdmins interface {
	IsSuperAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

// BulkRecorder creates the feed item that represents a bulk batch.
type BulkRecorder interface {
	RecordBulk(ctx context.Context, batch feedService.BulkBatch) (*entity.FeedItem, error)
}

type ActService interface {
	CreateAct(ctx context.Context, userID uuid.UUID, req dto.CreateActRequest) (*entity.Act, error)
	DeleteAct(ctx context.Context, userID, actID uuid.UUID) error
	CreateBulkActs(ctx context.Context, actorID uuid.UUID, req dto.BulkActRequest) (*dto.BulkActResult, error)
}

type actService struct {
	repo   actRepo.ActRepository
	deeds  Deeds
	groups Groups
	supers SuperAdmins
	events feedService.Events
	bulk   BulkRecorder
}

func NewActService(
	repo actRepo.ActRepository,
	deeds Deeds,
	groups Groups,
	supers SuperAdmins,
	events feedService.Events,
	bulk BulkRecorder,
) ActService {
	return &actService{
		repo:   repo,
		deeds:  deeds,
		groups: groups,
		supers: supers,
		events: events,
		bulk:   bulk,
	}
}

func parseOptionalID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid id: %w", field, apperror.ErrInvalidInput)
	}
	return &id, nil
}

func parseRequiredID(s, field string) (uuid.UUID, error) {
	id, err := parseOptionalID(s, field)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("%s is required: %w", field, apperror.ErrInvalidInput)
	}
	return *id, nil
}

func (s *actService) CreateAct(ctx context.Context, userID uuid.UUID, req dto.CreateActRequest) (*entity.Act, error) {
	deedID, err := parseRequiredID(req.DeedID, "deed")
	if err != nil {
		return nil, err
	}
	groupID, err := parseOptionalID(req.GroupID, "group")
	if err != nil {
		return nil, err
	}
	campaignID, err := parseOptionalID(req.CampaignID, "campaign")
	if err != nil {
		return nil, err
	}

	if _, err := s.deeds.RequireDeed(ctx, deedID); err != nil {
		return nil, err
	}
	if groupID != nil {
		if _, err := s.groups.RequireGroup(ctx, *groupID); err != nil {
			return nil, err
		}
	}
	if campaignID != nil {
		campaign, err := s.groups.RequireCampaign(ctx, *campaignID, groupID)
		if err != nil {
			return nil, err
		}
		// a campaign always belongs to a group
		groupID = &campaign.GroupID
	}

	act := &entity.Act{
		UserID:     &userID,
		DeedID:     deedID,
		GroupID:    groupID,
		CampaignID: campaignID,
	}
	if err := s.repo.Create(ctx, act); err != nil {
		return nil, err
	}

	s.events.DocumentSaved(feedService.ActSource(act))
	return act, nil
}

func (s *actService) DeleteAct(ctx context.Context, userID, actID uuid.UUID) error {
	act, err := s.repo.FindByID(ctx, actID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("act: %w", apperror.ErrNotFound)
		}
		return err
	}

	if act.UserID == nil || *act.UserID != userID {
		super, err := s.supers.IsSuperAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !super {
			return fmt.Errorf("not the owner of this act: %w", apperror.ErrForbidden)
		}
	}

	if err := s.repo.Delete(ctx, act.ID); err != nil {
		return err
	}

	s.events.DocumentRemoved(feedService.ActSource(act))
	return nil
}

// CreateBulkActs stores count acts for a group and one feed item for all of
// them. Bulk acts never go through the per-document feed events.
func (s *actService) CreateBulkActs(ctx context.Context, actorID uuid.UUID, req dto.BulkActRequest) (*dto.BulkActResult, error) {
	ctx, span := tracing.Start(ctx, "act.CreateBulkActs", attribute.Int("bulk.count", req.Count))
	defer span.End()

	deedID, err := parseRequiredID(req.DeedID, "deed")
	if err != nil {
		return nil, err
	}
	groupID, err := parseRequiredID(req.GroupID, "group")
	if err != nil {
		return nil, err
	}
	campaignID, err := parseOptionalID(req.CampaignID, "campaign")
	if err != nil {
		return nil, err
	}
	if req.Count < 1 || req.Count > MaxBulkCount {
		return nil, fmt.Errorf("count must be between 1 and %d: %w", MaxBulkCount, apperror.ErrInvalidInput)
	}

	if _, err := s.groups.RequireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	ok, err := s.groups.CanAdminister(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("only group admins can log bulk acts: %w", apperror.ErrForbidden)
	}
	if _, err := s.deeds.RequireDeed(ctx, deedID); err != nil {
		return nil, err
	}
	if campaignID != nil {
		if _, err := s.groups.RequireCampaign(ctx, *campaignID, &groupID); err != nil {
			return nil, err
		}
	}

	acts := make([]entity.Act, req.Count)
	for i := range acts {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		acts[i] = entity.Act{
			ID:         id,
			DeedID:     deedID,
			GroupID:    &groupID,
			CampaignID: campaignID,
			Bulk:       true,
		}
	}
	if err := s.repo.CreateBulk(ctx, acts); err != nil {
		span.RecordError(err)
		return nil, err
	}

	actIDs := make([]uuid.UUID, len(acts))
	for i := range acts {
		actIDs[i] = acts[i].ID
	}

	item, err := s.bulk.RecordBulk(ctx, feedService.BulkBatch{
		AdminID:    actorID,
		DeedID:     deedID,
		GroupID:    groupID,
		CampaignID: campaignID,
		Count:      req.Count,
	})
	if err != nil {
		span.RecordError(err)
		// acts stay; reconciliation is manual
		logger.Report(err, "bulk acts stored without feed item",
			zap.String("deed_id", deedID.String()),
			zap.String("group_id", groupID.String()),
			zap.String("admin_id", actorID.String()),
			zap.Int("count", req.Count),
		)
		return nil, fmt.Errorf("bulk feed item: %w", apperror.ErrCreationFailed)
	}

	return &dto.BulkActResult{
		Count:      req.Count,
		ActIDs:     actIDs,
		FeedItemID: item.ID,
	}, nil
}
