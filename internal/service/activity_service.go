package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/libris-api/internal/dto"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/query"
	"github.com/noah-isme/libris-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor       Actor
	Action      string
	EntityType  string
	Description string
	AffectedIDs []uint
	Details     map[string]interface{}
}

// ActivityRecorder appends entries to the audit trail. Every mutating
// operation records exactly one entry (one batched entry for list
// operations); nothing ever updates or deletes one.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// FeedPublisher pushes a persisted audit entry to live subscribers.
type FeedPublisher interface {
	Publish(ctx context.Context, entry models.ActivityLog)
}

// ActivityService exposes methods to persist and query the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, raw map[string]string) Result
}

type activityService struct {
	repo   repository.ActivityLogRepository
	feed   FeedPublisher
	logger zerolog.Logger
}

// NewActivityService constructs the audit trail service. The feed may be
// nil when no live stream is wired.
func NewActivityService(repo repository.ActivityLogRepository, feed FeedPublisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		feed:   feed,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return fmt.Errorf("entity type is required")
	}

	model := models.ActivityLog{
		ActorID:     entry.Actor.ID,
		ActorRole:   normalizeRole(entry.Actor.Role),
		Action:      strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType:  strings.ToLower(strings.TrimSpace(entry.EntityType)),
		Description: entry.Description,
		AffectedIDs: entry.AffectedIDs,
		Details:     sanitizeDetails(entry.Details),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return err
	}

	if s.feed != nil {
		s.feed.Publish(ctx, model)
	}

	return nil
}

func (s *activityService) List(ctx context.Context, raw map[string]string) Result {
	q := query.Parse(raw)

	entries, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list activity log")
		return InternalResult("")
	}

	result := dto.PaginatedResult{
		Items:       entries,
		TotalItems:  total,
		TotalPages:  totalPages(total, q.Limit),
		CurrentPage: q.Page,
		PageSize:    q.Limit,
		Sort:        q.Sort,
	}
	if entries == nil {
		result.Items = []models.ActivityLog{}
	}

	if total == 0 {
		return EmptyResult("no activity entries found", result)
	}

	return OKResult("activity entries retrieved", result)
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "anonymous"
	}
	return r
}
