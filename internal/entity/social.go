package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Target    Target    `gorm:"embedded;embeddedPrefix:target_" json:"target"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Target    Target    `gorm:"embedded;embeddedPrefix:target_" json:"target"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}

// SalvationTestimony is shown in the feed without revealing who wrote it.
type SalvationTestimony struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user"`
	GroupID    *uuid.UUID `gorm:"type:uuid;index" json:"group,omitempty"`
	CampaignID *uuid.UUID `gorm:"type:uuid;index" json:"campaign,omitempty"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created"`
}

func (s *SalvationTestimony) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
