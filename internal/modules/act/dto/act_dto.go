package dto

import "github.com/google/uuid"

type CreateActRequest struct {
	DeedID     string `json:"deed" binding:"required,uuid"`
	GroupID    string `json:"group" binding:"omitempty,uuid"`
	CampaignID string `json:"campaign" binding:"omitempty,uuid"`
}

type BulkActRequest struct {
	DeedID     string `json:"deed" binding:"required,uuid"`
	GroupID    string `json:"group" binding:"required,uuid"`
	CampaignID string `json:"campaign" binding:"omitempty,uuid"`
	Count      int    `json:"count" binding:"required,min=1,max=1000"`
}

type BulkActResult struct {
	Count      int         `json:"count"`
	ActIDs     []uuid.UUID `json:"actIds"`
	FeedItemID uuid.UUID   `json:"feedItemId"`
}
