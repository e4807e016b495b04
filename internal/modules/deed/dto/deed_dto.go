package dto

type CreateDeedRequest struct {
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description" binding:"max=5000"`
}

type ListDeedsQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
