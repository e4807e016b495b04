package repository

import (
	"context"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	// CreateWithAdmin stores the group and makes its creator an admin member.
	CreateWithAdmin(ctx context.Context, group *entity.Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)
	URLTaken(ctx context.Context, url string) (bool, error)
	AddMember(ctx context.Context, member *entity.GroupMember) (bool, error)
	// MemberRole returns "" for non-members.
	MemberRole(ctx context.Context, groupID, userID uuid.UUID) (string, error)
	CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error)

	CreateCampaign(ctx context.Context, campaign *entity.Campaign) error
	FindCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error)
	ListCampaigns(ctx context.Context, groupID uuid.UUID) ([]entity.Campaign, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateWithAdmin(ctx context.Context, group *entity.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&entity.GroupMember{
			GroupID: group.ID,
			UserID:  group.CreatedBy,
			Role:    entity.GroupRoleAdmin,
		}).Error
	})
}

func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	var group entity.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) URLTaken(ctx context.Context, url string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Group{}).Where("url = ?", url).Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) AddMember(ctx context.Context, member *entity.GroupMember) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member)
	return res.RowsAffected == 1, res.Error
}

func (r *groupRepository) MemberRole(ctx context.Context, groupID, userID uuid.UUID) (string, error) {
	var members []entity.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Limit(1).
		Find(&members).Error
	if err != nil || len(members) == 0 {
		return "", err
	}
	return members[0].Role, nil
}

func (r *groupRepository) CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *groupRepository) CreateCampaign(ctx context.Context, campaign *entity.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *groupRepository) FindCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	var campaign entity.Campaign
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *groupRepository) ListCampaigns(ctx context.Context, groupID uuid.UUID) ([]entity.Campaign, error) {
	campaigns := []entity.Campaign{}
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("id DESC").Find(&campaigns).Error
	return campaigns, err
}
