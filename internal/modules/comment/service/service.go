package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/comment/dto"
	commentRepo "anoa.com/gooddeeds/internal/modules/comment/repository"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"
	targetRepo "anoa.com/gooddeeds/internal/modules/target/repository"
	"anoa.com/gooddeeds/pkg/apperror"
	"anoa.com/gooddeeds/pkg/ratelimiter"
	"anoa.com/gooddeeds/pkg/textfilter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const rateLimitAction = "comment"

type SuperAdmins interface {
	IsSuperAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

type CommentService interface {
	CreateComment(ctx context.Context, userID uuid.UUID, req dto.CreateCommentRequest) (*entity.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type commentService struct {
	repo     commentRepo.CommentRepository
	targets  targetRepo.TargetRepository
	supers   SuperAdmins
	events   feedService.Events
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
}

func NewCommentService(
	repo commentRepo.CommentRepository,
	targets targetRepo.TargetRepository,
	supers SuperAdmins,
	events feedService.Events,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
) CommentService {
	return &commentService{
		repo:     repo,
		targets:  targets,
		supers:   supers,
		events:   events,
		limiter:  limiter,
		cooldown: cooldown,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID uuid.UUID, req dto.CreateCommentRequest) (*entity.Comment, error) {
	text := textfilter.Sanitize(req.Text)
	if text == "" {
		return nil, fmt.Errorf("comment is empty: %w", apperror.ErrInvalidInput)
	}
	if textfilter.ContainsProfanity(text) {
		return nil, apperror.New(http.StatusBadRequest, "comment contains inappropriate language", apperror.ErrInvalidInput)
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("target must be a valid id: %w", apperror.ErrInvalidInput)
	}
	target, err := entity.NewTarget(req.TargetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}
	exists, err := s.targets.Exists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("comment target: %w", apperror.ErrNotFound)
	}

	allowed, err := s.limiter.Allow(ctx, userID, rateLimitAction, s.cooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := s.limiter.Remaining(ctx, userID, rateLimitAction)
		return nil, apperror.New(http.StatusTooManyRequests,
			fmt.Sprintf("you are commenting too fast, please wait %.0f seconds", ttl.Seconds()),
			apperror.ErrRateLimitExceeded)
	}

	comment := &entity.Comment{
		UserID: userID,
		Text:   text,
		Target: target,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		_ = s.limiter.Clear(ctx, userID, rateLimitAction)
		return nil, err
	}

	s.events.DocumentSaved(feedService.CommentSource(comment))
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment: %w", apperror.ErrNotFound)
		}
		return err
	}

	if comment.UserID != userID {
		super, err := s.supers.IsSuperAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !super {
			return fmt.Errorf("not the author of this comment: %w", apperror.ErrForbidden)
		}
	}

	if err := s.repo.Delete(ctx, comment.ID); err != nil {
		return err
	}

	s.events.DocumentRemoved(feedService.CommentSource(comment))
	return nil
}
