package service

import (
	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
)

type SourceType string

const (
	SourceAct       SourceType = "act"
	SourceComment   SourceType = "comment"
	SourceTestimony SourceType = "testimony"
)

// Source is the part of a saved or removed document the aggregator looks at.
type Source struct {
	Type       SourceType
	ID         uuid.UUID
	UserID     uuid.UUID
	GroupID    *uuid.UUID
	CampaignID *uuid.UUID
	Deed       *uuid.UUID
	Target     entity.Target
	Bulk       bool
}

func ActSource(a *entity.Act) Source {
	src := Source{
		Type:       SourceAct,
		ID:         a.ID,
		GroupID:    a.GroupID,
		CampaignID: a.CampaignID,
		Deed:       &a.DeedID,
		Bulk:       a.Bulk,
	}
	if a.UserID != nil {
		src.UserID = *a.UserID
	}
	return src
}

func CommentSource(c *entity.Comment) Source {
	return Source{
		Type:   SourceComment,
		ID:     c.ID,
		UserID: c.UserID,
		Target: c.Target,
	}
}

// TestimonySource uses the testimony's group as the target so testimonies
// written inside a group show up in that group's feed.
func TestimonySource(s *entity.SalvationTestimony) Source {
	return Source{
		Type:       SourceTestimony,
		ID:         s.ID,
		UserID:     s.UserID,
		GroupID:    s.GroupID,
		CampaignID: s.CampaignID,
		Target:     entity.Target{Group: s.GroupID},
	}
}

// qualifies reports whether the document can produce a feed item at all.
func (s Source) qualifies() bool {
	return s.Deed != nil || s.Target.Deed != nil || s.Target.Group != nil
}

func (s Source) candidate() *entity.FeedItem {
	item := &entity.FeedItem{
		UserID:     s.UserID,
		GroupID:    s.GroupID,
		CampaignID: s.CampaignID,
	}

	if s.Deed != nil {
		item.Target.Deed = s.Deed
	} else {
		item.Target.Deed = s.Target.Deed
		item.Target.Group = s.Target.Group
	}

	id := s.ID
	switch s.Type {
	case SourceAct:
		item.ActID = &id
	case SourceComment:
		item.CommentID = &id
	case SourceTestimony:
		item.TestimonyID = &id
	}
	return item
}
