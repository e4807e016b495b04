package dto

type ToggleLikeRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=deed act comment group"`
	TargetID   string `json:"target_id" binding:"required,uuid"`
}

type LikeStatus struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}
