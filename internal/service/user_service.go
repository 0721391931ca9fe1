package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
)

// UserService serves privacy-projected profile views and visibility
// updates. Admin-side user CRUD goes through the generic resource stack.
type UserService interface {
	ViewProfile(ctx context.Context, requester *Actor, targetID uint) Result
	ViewOwnProfile(ctx context.Context, requester Actor) Result
	UpdateVisibility(ctx context.Context, requester Actor, visibility string) Result
}

type userService struct {
	repo     repository.UserRepository
	redis    *redis.Client
	cacheTTL time.Duration
	recorder ActivityRecorder
	logger   zerolog.Logger
}

// NewUserService constructs the profile service. Redis is optional; with
// nil, public projections are computed on every request.
func NewUserService(repo repository.UserRepository, redisClient *redis.Client, cacheTTL time.Duration, recorder ActivityRecorder, logger zerolog.Logger) UserService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &userService{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		recorder: recorder,
		logger:   logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) ViewProfile(ctx context.Context, requester *Actor, targetID uint) Result {
	anonymous := requester == nil || !requester.Authenticated
	if anonymous {
		if view, ok := s.cachedPublicView(ctx, targetID); ok {
			return OKResult("profile retrieved", view)
		}
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no user found with id %d", targetID))
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("target_id", targetID).Msg("failed to fetch profile target")
		return InternalResult("")
	}

	tier, allowed := ResolveTier(requester, target)
	if !allowed {
		return ForbiddenResult("this profile is private")
	}

	view := Project(target, tier)

	if tier == TierPublic {
		s.cachePublicView(ctx, targetID, view)
	}

	if tier == TierAdmin && requester != nil && !sameIdentity(requester.ID, target.ID) {
		s.auditFetch(ctx, *requester, target.ID)
	}

	return OKResult("profile retrieved", view)
}

func (s *userService) ViewOwnProfile(ctx context.Context, requester Actor) Result {
	if !requester.Authenticated {
		return ForbiddenResult("authentication required")
	}
	return s.ViewProfile(ctx, &requester, requester.ID)
}

func (s *userService) UpdateVisibility(ctx context.Context, requester Actor, visibility string) Result {
	switch visibility {
	case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
	default:
		return BadRequestResult(fmt.Sprintf("invalid visibility %q", visibility))
	}

	err := s.repo.UpdateVisibility(ctx, requester.ID, visibility)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no user found with id %d", requester.ID))
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", requester.ID).Msg("failed to update profile visibility")
		return InternalResult("")
	}

	s.invalidatePublicView(ctx, requester.ID)

	if s.recorder != nil {
		entry := ActivityEntry{
			Actor:       requester,
			Action:      models.ActionUpdate,
			EntityType:  "user",
			Description: fmt.Sprintf("updated profile visibility to %s", visibility),
			AffectedIDs: []uint{requester.ID},
			Details:     map[string]interface{}{"profileVisibility": visibility},
		}
		if err := s.recorder.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record visibility update")
		}
	}

	return OKResult("profile visibility updated", map[string]string{"profileVisibility": visibility})
}

func (s *userService) auditFetch(ctx context.Context, requester Actor, targetID uint) {
	if s.recorder == nil {
		return
	}
	entry := ActivityEntry{
		Actor:       requester,
		Action:      models.ActionFetch,
		EntityType:  "user",
		Description: fmt.Sprintf("admin viewed full profile of user %d", targetID),
		AffectedIDs: []uint{targetID},
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record admin profile fetch")
	}
}

func (s *userService) profileCacheKey(targetID uint) string {
	return fmt.Sprintf("libris:profile:public:%d", targetID)
}

func (s *userService) cachedPublicView(ctx context.Context, targetID uint) (map[string]interface{}, bool) {
	if s.redis == nil {
		return nil, false
	}
	payload, err := s.redis.Get(ctx, s.profileCacheKey(targetID)).Result()
	if err != nil {
		return nil, false
	}
	var view map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &view); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached profile view")
		return nil, false
	}
	return view, true
}

func (s *userService) cachePublicView(ctx context.Context, targetID uint, view map[string]interface{}) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal profile view for cache")
		return
	}
	if err := s.redis.Set(ctx, s.profileCacheKey(targetID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache profile view")
	}
}

func (s *userService) invalidatePublicView(ctx context.Context, targetID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.profileCacheKey(targetID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate cached profile view")
	}
}
