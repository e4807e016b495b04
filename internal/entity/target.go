package entity

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidTarget = errors.New("target must reference exactly one of deed, act, comment or group")

const (
	TargetDeed    = "deed"
	TargetAct     = "act"
	TargetComment = "comment"
	TargetGroup   = "group"
)

// Target points a comment or like at exactly one object. Stored embedded with
// the target_ column prefix.
type Target struct {
	Deed    *uuid.UUID `gorm:"type:uuid;index" json:"deed,omitempty"`
	Act     *uuid.UUID `gorm:"type:uuid;index" json:"act,omitempty"`
	Comment *uuid.UUID `gorm:"type:uuid;index" json:"comment,omitempty"`
	Group   *uuid.UUID `gorm:"type:uuid;index" json:"group,omitempty"`
}

// NewTarget builds a target from a type name as used in routes and request bodies.
func NewTarget(kind string, id uuid.UUID) (Target, error) {
	var t Target
	switch kind {
	case TargetDeed:
		t.Deed = &id
	case TargetAct:
		t.Act = &id
	case TargetComment:
		t.Comment = &id
	case TargetGroup:
		t.Group = &id
	default:
		return t, ErrInvalidTarget
	}
	return t, nil
}

func (t Target) Validate() error {
	n := 0
	for _, id := range []*uuid.UUID{t.Deed, t.Act, t.Comment, t.Group} {
		if id != nil {
			n++
		}
	}
	if n != 1 {
		return ErrInvalidTarget
	}
	return nil
}

// Kind returns the set member's name and id.
func (t Target) Kind() (string, uuid.UUID) {
	switch {
	case t.Deed != nil:
		return TargetDeed, *t.Deed
	case t.Act != nil:
		return TargetAct, *t.Act
	case t.Comment != nil:
		return TargetComment, *t.Comment
	case t.Group != nil:
		return TargetGroup, *t.Group
	}
	return "", uuid.Nil
}
