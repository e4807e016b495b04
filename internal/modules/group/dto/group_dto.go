package dto

import (
	"time"

	"anoa.com/gooddeeds/internal/entity"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	URL         string `json:"url" binding:"omitempty,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

type CreateCampaignRequest struct {
	Title       string     `json:"title" binding:"required,max=150"`
	Description string     `json:"description" binding:"max=2000"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type GroupResponse struct {
	entity.Group
	Members   int64             `json:"members"`
	Role      string            `json:"role,omitempty"`
	Campaigns []entity.Campaign `json:"campaigns"`
}
