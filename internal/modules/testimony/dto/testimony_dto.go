package dto

type CreateTestimonyRequest struct {
	Text       string `json:"text" binding:"required,max=5000"`
	GroupID    string `json:"group" binding:"omitempty,uuid"`
	CampaignID string `json:"campaign" binding:"omitempty,uuid"`
}
