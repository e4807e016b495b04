package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedTarget is the deed-or-group subset of Target that a feed item can be about.
type FeedTarget struct {
	Deed  *uuid.UUID `gorm:"type:uuid;index:idx_feed_items_streak,priority:2" json:"deed,omitempty"`
	Group *uuid.UUID `gorm:"type:uuid;index" json:"group,omitempty"`
}

// FeedItem is a displayable, possibly collapsed, unit of activity.
// At most one of ActID, CommentID and TestimonyID is set; bulk items set none.
// The unique indexes on the source ids let find-or-create rely on the database
// instead of a read-then-write.
type FeedItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_feed_items_streak,priority:1" json:"user"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index" json:"group,omitempty"`
	CampaignID  *uuid.UUID `gorm:"type:uuid;index" json:"campaign,omitempty"`
	Target      FeedTarget `gorm:"embedded;embeddedPrefix:target_" json:"target"`
	ActID       *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"act,omitempty"`
	CommentID   *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"comment,omitempty"`
	TestimonyID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"testimony,omitempty"`
	Bulk        bool       `gorm:"not null;default:false" json:"bulk"`
	Count       int        `gorm:"not null;default:1" json:"count"`
	Created     time.Time  `gorm:"not null" json:"created"`
	Modified    time.Time  `gorm:"not null;index:idx_feed_items_streak,priority:3" json:"modified"`
}

func (f *FeedItem) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
