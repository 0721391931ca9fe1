package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
)

// sanitizer strips markup down to a safe subset before site copy and FAQ
// answers are persisted. Answers and bodies allow basic formatting,
// everything else is plain text.
var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// SanitizeFaq is the prepare hook for FAQ writes.
func SanitizeFaq(faq *models.Faq) {
	faq.Name = strings.TrimSpace(plainPolicy.Sanitize(faq.Name))
	faq.Answer = strings.TrimSpace(richPolicy.Sanitize(faq.Answer))
}

// SanitizeSiteContent is the prepare hook for site content writes.
func SanitizeSiteContent(content *models.SiteContent) {
	content.Key = strings.ToLower(strings.TrimSpace(plainPolicy.Sanitize(content.Key)))
	content.Name = strings.TrimSpace(plainPolicy.Sanitize(content.Name))
	content.Body = strings.TrimSpace(richPolicy.Sanitize(content.Body))
}

// SiteContentReader resolves site copy by its stable key for the public
// site, with a short redis cache in front of the database.
type SiteContentReader interface {
	GetByKey(ctx context.Context, key string) Result
}

type siteContentReader struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewSiteContentReader constructs the keyed site content lookup. Redis is
// optional.
func NewSiteContentReader(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) SiteContentReader {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &siteContentReader{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "site_content_reader").Logger(),
	}
}

func (r *siteContentReader) GetByKey(ctx context.Context, key string) Result {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return BadRequestResult("content key is required")
	}

	if cached, ok := r.cached(ctx, key); ok {
		return OKResult("site content retrieved", cached)
	}

	var content models.SiteContent
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no site content found with key %q", key))
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to fetch site content")
		return InternalResult("")
	}

	r.cache(ctx, key, content)

	return OKResult("site content retrieved", content)
}

func (r *siteContentReader) cacheKey(key string) string {
	return "libris:content:" + key
}

func (r *siteContentReader) cached(ctx context.Context, key string) (models.SiteContent, bool) {
	if r.redis == nil {
		return models.SiteContent{}, false
	}
	payload, err := r.redis.Get(ctx, r.cacheKey(key)).Result()
	if err != nil {
		return models.SiteContent{}, false
	}
	var content models.SiteContent
	if err := json.Unmarshal([]byte(payload), &content); err != nil {
		r.logger.Warn().Err(err).Msg("failed to unmarshal cached site content")
		return models.SiteContent{}, false
	}
	return content, true
}

func (r *siteContentReader) cache(ctx context.Context, key string, content models.SiteContent) {
	if r.redis == nil {
		return
	}
	payload, err := json.Marshal(content)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, r.cacheKey(key), payload, r.cacheTTL).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to cache site content")
	}
}
