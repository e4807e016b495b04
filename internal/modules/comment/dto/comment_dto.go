package dto

type CreateCommentRequest struct {
	Text       string `json:"text" binding:"required,max=2000"`
	TargetType string `json:"target_type" binding:"required,oneof=deed act comment group"`
	TargetID   string `json:"target_id" binding:"required,uuid"`
}
