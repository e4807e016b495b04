package dto

import (
	"time"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
)

type UserSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Picture *string   `json:"picture,omitempty"`
}

type GroupSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
	URL  string    `json:"url,omitempty"`
}

type CampaignSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title,omitempty"`
}

type DeedSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title,omitempty"`
}

// TargetResponse carries only the member that is set.
type TargetResponse struct {
	Deed  *DeedSummary  `json:"deed,omitempty"`
	Group *GroupSummary `json:"group,omitempty"`
}

type FeedItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	User      *UserSummary     `json:"user,omitempty"`
	Group     *GroupSummary    `json:"group,omitempty"`
	Campaign  *CampaignSummary `json:"campaign,omitempty"`
	Target    TargetResponse   `json:"target"`
	Act       *uuid.UUID       `json:"act,omitempty"`
	Comment   *uuid.UUID       `json:"comment,omitempty"`
	Testimony *uuid.UUID       `json:"testimony,omitempty"`
	Bulk      bool             `json:"bulk"`
	Count     int              `json:"count"`
	Likes     int64            `json:"likes"`
	Comments  int64            `json:"comments"`
	Created   time.Time        `json:"created"`
	Modified  time.Time        `json:"modified"`
}

// FromEntity maps an item with references as bare ids. Testimony items never
// expose the writer.
func FromEntity(item *entity.FeedItem) FeedItemResponse {
	resp := FeedItemResponse{
		ID:        item.ID,
		Act:       item.ActID,
		Comment:   item.CommentID,
		Testimony: item.TestimonyID,
		Bulk:      item.Bulk,
		Count:     item.Count,
		Created:   item.Created,
		Modified:  item.Modified,
	}
	if item.TestimonyID == nil {
		resp.User = &UserSummary{ID: item.UserID}
	}
	if item.GroupID != nil {
		resp.Group = &GroupSummary{ID: *item.GroupID}
	}
	if item.CampaignID != nil {
		resp.Campaign = &CampaignSummary{ID: *item.CampaignID}
	}
	if item.Target.Deed != nil {
		resp.Target.Deed = &DeedSummary{ID: *item.Target.Deed}
	} else if item.Target.Group != nil {
		resp.Target.Group = &GroupSummary{ID: *item.Target.Group}
	}
	return resp
}

type FeedListResponse struct {
	Data []FeedItemResponse `json:"data"`
}
