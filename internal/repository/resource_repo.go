package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/query"
)

// ResourceRepository is the generic persistence surface every managed
// resource is served through. Expansion of reference fields is explicit:
// callers name the associations they need and get fully materialised
// values back.
type ResourceRepository[T models.Resource] interface {
	FindByID(ctx context.Context, id uint, expand []string) (T, error)
	FindByIDs(ctx context.Context, ids []uint) ([]T, error)
	List(ctx context.Context, q query.ListQuery, mapping map[string]string, expand []string) ([]T, int64, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
}

type resourceRepository[T models.Resource] struct {
	db *gorm.DB
}

// NewResourceRepository constructs a gorm-backed repository for one
// resource type.
func NewResourceRepository[T models.Resource](db *gorm.DB) ResourceRepository[T] {
	return &resourceRepository[T]{db: db}
}

func (r *resourceRepository[T]) FindByID(ctx context.Context, id uint, expand []string) (T, error) {
	var entity T
	tx := r.db.WithContext(ctx)
	for _, association := range expand {
		tx = tx.Preload(association)
	}
	err := tx.First(&entity, id).Error
	return entity, err
}

func (r *resourceRepository[T]) FindByIDs(ctx context.Context, ids []uint) ([]T, error) {
	var entities []T
	if len(ids) == 0 {
		return entities, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&entities).Error
	return entities, err
}

func (r *resourceRepository[T]) List(ctx context.Context, q query.ListQuery, mapping map[string]string, expand []string) ([]T, int64, error) {
	tx := r.db.WithContext(ctx).Model(new(T)).Scopes(q.Scope(mapping))

	countQuery := tx.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit > 0 {
		tx = tx.Offset(q.Offset()).Limit(q.Limit)
	}
	for _, association := range expand {
		tx = tx.Preload(association)
	}

	var entities []T
	if err := tx.Order(q.OrderClause()).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (r *resourceRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *resourceRepository[T]) Update(ctx context.Context, entity *T) error {
	// Updates with a struct skips zero-valued fields, so the stored
	// created_at and any unset attributes survive a partial payload.
	return r.db.WithContext(ctx).Model(entity).Updates(entity).Error
}

func (r *resourceRepository[T]) DeleteByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resourceRepository[T]) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(T))
	return result.RowsAffected, result.Error
}

func (r *resourceRepository[T]) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	var existing []uint
	if len(ids) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).Model(new(T)).Where("id IN ?", ids).Pluck("id", &existing).Error
	return existing, err
}
