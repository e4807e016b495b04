package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deed is a kind of good action users can perform, e.g. "donate blood".
type Deed struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *Deed) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

// Act records that a deed was performed. Bulk acts are logged by a group admin
// on behalf of the group and carry no acting user.
type Act struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user,omitempty"`
	DeedID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"deed"`
	GroupID    *uuid.UUID `gorm:"type:uuid;index" json:"group,omitempty"`
	CampaignID *uuid.UUID `gorm:"type:uuid;index" json:"campaign,omitempty"`
	Bulk       bool       `gorm:"not null;default:false" json:"bulk"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created"`
}

func (a *Act) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
