package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/feed/dto"
	feedRepo "anoa.com/gooddeeds/internal/modules/feed/repository"
	"anoa.com/gooddeeds/pkg/apperror"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	OperatorAnd = "$and"
	OperatorOr  = "$or"
)

// filterColumns is the allow-list of filterable fields and their columns.
var filterColumns = map[string]string{
	"user":         "user_id",
	"group":        "group_id",
	"campaign":     "campaign_id",
	"act":          "act_id",
	"comment":      "comment_id",
	"testimony":    "testimony_id",
	"target.deed":  "target_deed",
	"target.group": "target_group",
}

type QueryService interface {
	Query(ctx context.Context, params url.Values) ([]dto.FeedItemResponse, error)
}

type queryService struct {
	repo feedRepo.FeedRepository
}

func NewQueryService(repo feedRepo.FeedRepository) QueryService {
	return &queryService{repo: repo}
}

// ParseQuery turns request parameters into a repository query. Unknown keys are ignored.
func ParseQuery(params url.Values) (feedRepo.Query, error) {
	q := feedRepo.Query{Limit: DefaultLimit}

	switch op := params.Get("operator"); op {
	case "", OperatorAnd:
	case OperatorOr:
		q.Or = true
	default:
		return q, fmt.Errorf("unsupported operator %q: %w", op, apperror.ErrBadRequest)
	}

	if n, err := strconv.Atoi(params.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	for _, cursor := range []struct {
		key string
		dst **uuid.UUID
	}{{"before", &q.Before}, {"after", &q.After}} {
		raw := params.Get(cursor.key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, fmt.Errorf("invalid %s cursor: %w", cursor.key, apperror.ErrBadRequest)
		}
		*cursor.dst = &id
	}

	// deterministic order keeps the generated SQL stable
	for _, key := range []string{"user", "group", "campaign", "act", "comment", "testimony", "target.deed", "target.group"} {
		values, ok := params[key]
		if !ok {
			continue
		}
		f := feedRepo.Filter{Column: filterColumns[key], SkipTestimonies: key == "user"}
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				switch part {
				case "":
				case "null":
					f.Null = true
				default:
					id, err := uuid.Parse(part)
					if err != nil {
						return q, fmt.Errorf("invalid id %q for %s: %w", part, key, apperror.ErrBadRequest)
					}
					f.IDs = append(f.IDs, id)
				}
			}
		}
		if len(f.IDs) > 0 || f.Null {
			q.Filters = append(q.Filters, f)
		}
	}

	return q, nil
}

func (s *queryService) Query(ctx context.Context, params url.Values) ([]dto.FeedItemResponse, error) {
	q, err := ParseQuery(params)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.FeedItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.FromEntity(&items[i]))
	}
	if len(resp) == 0 {
		return resp, nil
	}

	if err := s.populate(ctx, items, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type idSet map[uuid.UUID]struct{}

func (s idSet) add(id *uuid.UUID) {
	if id != nil {
		s[*id] = struct{}{}
	}
}

func (s idSet) list() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

func (s *queryService) populate(ctx context.Context, items []entity.FeedItem, resp []dto.FeedItemResponse) error {
	users, groups, campaigns, deeds := idSet{}, idSet{}, idSet{}, idSet{}
	acts, comments := idSet{}, idSet{}
	for i := range items {
		it := &items[i]
		if it.TestimonyID == nil {
			users.add(&it.UserID)
		}
		groups.add(it.GroupID)
		groups.add(it.Target.Group)
		campaigns.add(it.CampaignID)
		deeds.add(it.Target.Deed)
		acts.add(it.ActID)
		comments.add(it.CommentID)
	}

	userRows, err := s.repo.UsersByID(ctx, users.list())
	if err != nil {
		return err
	}
	userByID := make(map[uuid.UUID]entity.User, len(userRows))
	for _, u := range userRows {
		userByID[u.ID] = u
	}

	groupRows, err := s.repo.GroupsByID(ctx, groups.list())
	if err != nil {
		return err
	}
	groupByID := make(map[uuid.UUID]entity.Group, len(groupRows))
	for _, g := range groupRows {
		groupByID[g.ID] = g
	}

	campaignRows, err := s.repo.CampaignsByID(ctx, campaigns.list())
	if err != nil {
		return err
	}
	campaignByID := make(map[uuid.UUID]entity.Campaign, len(campaignRows))
	for _, c := range campaignRows {
		campaignByID[c.ID] = c
	}

	deedRows, err := s.repo.DeedsByID(ctx, deeds.list())
	if err != nil {
		return err
	}
	deedByID := make(map[uuid.UUID]entity.Deed, len(deedRows))
	for _, d := range deedRows {
		deedByID[d.ID] = d
	}

	actLikes, err := s.repo.CountLikes(ctx, entity.TargetAct, acts.list())
	if err != nil {
		return err
	}
	actComments, err := s.repo.CountComments(ctx, entity.TargetAct, acts.list())
	if err != nil {
		return err
	}
	commentLikes, err := s.repo.CountLikes(ctx, entity.TargetComment, comments.list())
	if err != nil {
		return err
	}
	commentReplies, err := s.repo.CountComments(ctx, entity.TargetComment, comments.list())
	if err != nil {
		return err
	}

	for i := range resp {
		r := &resp[i]
		if r.User != nil {
			if u, ok := userByID[r.User.ID]; ok {
				r.User.Name = u.Name
				r.User.Picture = u.Picture
			}
		}
		if r.Group != nil {
			if g, ok := groupByID[r.Group.ID]; ok {
				r.Group.Name, r.Group.URL = g.Name, g.URL
			}
		}
		if r.Campaign != nil {
			if c, ok := campaignByID[r.Campaign.ID]; ok {
				r.Campaign.Title = c.Title
			}
		}
		if r.Target.Deed != nil {
			if d, ok := deedByID[r.Target.Deed.ID]; ok {
				r.Target.Deed.Title = d.Title
			}
		}
		if r.Target.Group != nil {
			if g, ok := groupByID[r.Target.Group.ID]; ok {
				r.Target.Group.Name, r.Target.Group.URL = g.Name, g.URL
			}
		}
		switch {
		case r.Act != nil:
			r.Likes, r.Comments = actLikes[*r.Act], actComments[*r.Act]
		case r.Comment != nil:
			r.Likes, r.Comments = commentLikes[*r.Comment], commentReplies[*r.Comment]
		}
	}
	return nil
}
