package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/group/dto"
	groupRepo "anoa.com/gooddeeds/internal/modules/group/repository"
	userRepo "anoa.com/gooddeeds/internal/modules/user/repository"
	"anoa.com/gooddeeds/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupService interface {
	CreateGroup(ctx context.Context, userID uuid.UUID, req dto.CreateGroupRequest) (*entity.Group, error)
	GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*dto.GroupResponse, error)
	Join(ctx context.Context, userID, groupID uuid.UUID) error
	CreateCampaign(ctx context.Context, userID, groupID uuid.UUID, req dto.CreateCampaignRequest) (*entity.Campaign, error)

	// RequireGroup returns the group or a not-found error.
	RequireGroup(ctx context.Context, groupID uuid.UUID) (*entity.Group, error)
	// RequireCampaign returns the campaign, checking it belongs to groupID when that is set.
	RequireCampaign(ctx context.Context, campaignID uuid.UUID, groupID *uuid.UUID) (*entity.Campaign, error)
	// CanAdminister reports whether userID is a super admin or an admin of groupID.
	CanAdminister(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
}

type groupService struct {
	repo     groupRepo.GroupRepository
	userRepo userRepo.UserRepository
}

func NewGroupService(repo groupRepo.GroupRepository, userRepo userRepo.UserRepository) GroupService {
	return &groupService{repo: repo, userRepo: userRepo}
}

func (s *groupService) CreateGroup(ctx context.Context, userID uuid.UUID, req dto.CreateGroupRequest) (*entity.Group, error) {
	url := slugify(req.URL)
	if url == "" {
		url = slugify(req.Name)
	}
	if url == "" {
		return nil, fmt.Errorf("group url is empty: %w", apperror.ErrInvalidInput)
	}

	taken, err := s.repo.URLTaken(ctx, url)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("group url %q is taken: %w", url, apperror.ErrConflict)
	}

	group := &entity.Group{
		Name:        strings.TrimSpace(req.Name),
		URL:         url,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.repo.CreateWithAdmin(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*dto.GroupResponse, error) {
	group, err := s.RequireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.CountMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	role, err := s.repo.MemberRole(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.repo.ListCampaigns(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &dto.GroupResponse{
		Group:     *group,
		Members:   members,
		Role:      role,
		Campaigns: campaigns,
	}, nil
}

func (s *groupService) Join(ctx context.Context, userID, groupID uuid.UUID) error {
	if _, err := s.RequireGroup(ctx, groupID); err != nil {
		return err
	}
	_, err := s.repo.AddMember(ctx, &entity.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    entity.GroupRoleMember,
	})
	return err
}

func (s *groupService) CreateCampaign(ctx context.Context, userID, groupID uuid.UUID, req dto.CreateCampaignRequest) (*entity.Campaign, error) {
	if _, err := s.RequireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	ok, err := s.CanAdminister(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("only group admins can create campaigns: %w", apperror.ErrForbidden)
	}

	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return nil, fmt.Errorf("campaign ends before it starts: %w", apperror.ErrInvalidInput)
	}

	campaign := &entity.Campaign{
		GroupID:     groupID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *groupService) RequireGroup(ctx context.Context, groupID uuid.UUID) (*entity.Group, error) {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) RequireCampaign(ctx context.Context, campaignID uuid.UUID, groupID *uuid.UUID) (*entity.Campaign, error) {
	campaign, err := s.repo.FindCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("campaign: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if groupID != nil && campaign.GroupID != *groupID {
		return nil, fmt.Errorf("campaign does not belong to group: %w", apperror.ErrInvalidInput)
	}
	return campaign, nil
}

func (s *groupService) CanAdminister(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	super, err := s.userRepo.IsSuperAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}

	role, err := s.repo.MemberRole(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return role == entity.GroupRoleAdmin, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
