package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/query"
)

// ActivityLogRepository persists the append-only audit trail. There is
// deliberately no update or delete surface.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, q query.ListQuery) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, q query.ListQuery) ([]models.ActivityLog, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(q.Scope(activityFieldMapping))

	countQuery := tx.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit > 0 {
		tx = tx.Offset(q.Offset()).Limit(q.Limit)
	}

	var entries []models.ActivityLog
	if err := tx.Order(q.OrderClause()).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// activityFieldMapping remaps client-facing filter keys onto audit columns.
var activityFieldMapping = map[string]string{
	"actor":    "actorId",
	"type":     "entityType",
	"resource": "entityType",
}
