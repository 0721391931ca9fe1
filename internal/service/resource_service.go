package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/dto"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/query"
	"github.com/noah-isme/libris-api/internal/repository"
)

// BlobRemover removes an externally stored blob. Callers treat failures
// as best-effort: an orphaned blob is accepted, a blocked record deletion
// is not.
type BlobRemover interface {
	Remove(ctx context.Context, fileID string) error
}

// ResourceOperations is the capability surface the controller dispatch
// layer is written against.
type ResourceOperations[T models.Resource] interface {
	GetByID(ctx context.Context, id uint) Result
	GetList(ctx context.Context, raw map[string]string) Result
	Create(ctx context.Context, actor Actor, entity *T) Result
	UpdateByID(ctx context.Context, actor Actor, id uint, entity *T) Result
	DeleteByID(ctx context.Context, actor Actor, id uint) Result
	DeleteByList(ctx context.Context, actor Actor, ids []uint) Result
}

// ResourceConfig declares the per-type behaviour of a resource service.
type ResourceConfig[T models.Resource] struct {
	// TypeName is the human-readable singular resource name used in
	// messages and audit entries.
	TypeName string
	// FieldMapping remaps client filter keys onto entity fields before the
	// query builder applies them.
	FieldMapping map[string]string
	// Expand names the reference fields materialised on reads.
	Expand []string
	// Prepare runs before validation on create and update, e.g. to
	// sanitize user-supplied markup.
	Prepare func(entity *T)
}

type resourceService[T models.Resource] struct {
	repo      repository.ResourceRepository[T]
	cfg       ResourceConfig[T]
	validator *validator.Validate
	recorder  ActivityRecorder
	blobs     BlobRemover
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewResourceService constructs the generic CRUD service for one resource
// type. The blob remover may be nil for resources without attachments.
func NewResourceService[T models.Resource](
	repo repository.ResourceRepository[T],
	cfg ResourceConfig[T],
	validate *validator.Validate,
	recorder ActivityRecorder,
	blobs BlobRemover,
	logger zerolog.Logger,
) ResourceOperations[T] {
	return &resourceService[T]{
		repo:      repo,
		cfg:       cfg,
		validator: validate,
		recorder:  recorder,
		blobs:     blobs,
		logger:    logger.With().Str("component", strings.ReplaceAll(cfg.TypeName, " ", "_")+"_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/libris-api/internal/service/resource"),
	}
}

func (s *resourceService[T]) GetByID(ctx context.Context, id uint) Result {
	entity, err := s.repo.FindByID(ctx, id, s.cfg.Expand)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no %s found with id %d", s.cfg.TypeName, id))
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("id", id).Msg("failed to fetch resource")
		return InternalResult("")
	}

	return OKResult(fmt.Sprintf("%s retrieved", s.cfg.TypeName), entity)
}

func (s *resourceService[T]) GetList(ctx context.Context, raw map[string]string) Result {
	q := query.Parse(raw)

	items, total, err := s.repo.List(ctx, q, s.cfg.FieldMapping, s.cfg.Expand)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list resources")
		return InternalResult("")
	}

	result := dto.PaginatedResult{
		Items:       items,
		TotalItems:  total,
		TotalPages:  totalPages(total, q.Limit),
		CurrentPage: q.Page,
		PageSize:    q.Limit,
		Sort:        q.Sort,
	}
	if items == nil {
		result.Items = []T{}
	}

	if total == 0 {
		return EmptyResult(fmt.Sprintf("no %ss found", s.cfg.TypeName), result)
	}

	return OKResult(fmt.Sprintf("%ss retrieved", s.cfg.TypeName), result)
}

func (s *resourceService[T]) Create(ctx context.Context, actor Actor, entity *T) Result {
	ctx, span := s.tracer.Start(ctx, "resource.create", trace.WithAttributes(
		attribute.String("resource.type", s.cfg.TypeName),
	))
	defer span.End()

	if s.cfg.Prepare != nil {
		s.cfg.Prepare(entity)
	}
	if err := s.validator.Struct(entity); err != nil {
		return BadRequestResult(err.Error())
	}

	if auditable, ok := any(entity).(models.Auditable); ok {
		auditable.StampCreatedBy(actor.Username)
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ConflictResult(fmt.Sprintf("a %s with the same unique value already exists", s.cfg.TypeName))
		}
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("failed to create resource")
		return InternalResult("")
	}

	id := (*entity).ResourceID()
	s.audit(ctx, actor, models.ActionCreate,
		fmt.Sprintf("created %s %d", s.cfg.TypeName, id), []uint{id}, nil)

	return CreatedResult(fmt.Sprintf("%s created", s.cfg.TypeName), entity)
}

func (s *resourceService[T]) UpdateByID(ctx context.Context, actor Actor, id uint, entity *T) Result {
	existing, err := s.repo.FindByID(ctx, id, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no %s found with id %d", s.cfg.TypeName, id))
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("id", id).Msg("failed to fetch resource for update")
		return InternalResult("")
	}

	if s.cfg.Prepare != nil {
		s.cfg.Prepare(entity)
	}
	if err := s.validator.Struct(entity); err != nil {
		return BadRequestResult(err.Error())
	}

	carryIdentity(entity, existing)
	if auditable, ok := any(entity).(models.Auditable); ok {
		auditable.StampUpdatedBy(actor.Username)
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ConflictResult(fmt.Sprintf("a %s with the same unique value already exists", s.cfg.TypeName))
		}
		s.logger.Error().Err(err).Uint("id", id).Msg("failed to update resource")
		return InternalResult("")
	}

	s.audit(ctx, actor, models.ActionUpdate,
		fmt.Sprintf("updated %s %d", s.cfg.TypeName, id), []uint{id}, nil)

	return OKResult(fmt.Sprintf("%s updated", s.cfg.TypeName), entity)
}

func (s *resourceService[T]) DeleteByID(ctx context.Context, actor Actor, id uint) Result {
	ctx, span := s.tracer.Start(ctx, "resource.delete", trace.WithAttributes(
		attribute.String("resource.type", s.cfg.TypeName),
		attribute.Int("resource.id", int(id)),
	))
	defer span.End()

	existing, err := s.repo.FindByID(ctx, id, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundResult(fmt.Sprintf("no %s found with id %d", s.cfg.TypeName, id))
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("id", id).Msg("failed to fetch resource for delete")
		return InternalResult("")
	}

	// Blob first, record last: a crash in between orphans a blob (accepted)
	// but never leaves a deleted record with an intact reference.
	s.cleanupBlob(ctx, existing)

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundResult(fmt.Sprintf("no %s found with id %d", s.cfg.TypeName, id))
		}
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("id", id).Msg("failed to delete resource")
		return InternalResult("")
	}

	s.audit(ctx, actor, models.ActionDelete,
		fmt.Sprintf("deleted %s %d", s.cfg.TypeName, id), []uint{id}, nil)

	return OKResult(fmt.Sprintf("%s deleted", s.cfg.TypeName), nil)
}

func (s *resourceService[T]) DeleteByList(ctx context.Context, actor Actor, ids []uint) Result {
	if len(ids) == 0 {
		return BadRequestResult("no ids supplied")
	}

	ctx, span := s.tracer.Start(ctx, "resource.delete_list", trace.WithAttributes(
		attribute.String("resource.type", s.cfg.TypeName),
		attribute.Int("resource.requested", len(ids)),
	))
	defer span.End()

	existingIDs, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve ids for batch delete")
		return InternalResult("")
	}
	notFound := len(ids) - len(existingIDs)

	if records, err := s.repo.FindByIDs(ctx, existingIDs); err != nil {
		s.logger.Warn().Err(err).Msg("skipping blob cleanup, failed to load records")
	} else {
		for _, record := range records {
			s.cleanupBlob(ctx, record)
		}
	}

	deleted64, err := s.repo.DeleteByIDs(ctx, existingIDs)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("bulk delete failed")
		return InternalResult("")
	}

	deleted := int(deleted64)
	failed := len(ids) - deleted - notFound
	summary := dto.BatchDeleteSummary{
		Deleted:   deleted,
		NotFound:  notFound,
		Failed:    failed,
		Requested: len(ids),
	}
	summary.Message = fmt.Sprintf("%d %s(s) deleted, %d not found, %d failed",
		deleted, s.cfg.TypeName, notFound, failed)

	s.audit(ctx, actor, models.ActionDelete, summary.Message, existingIDs, map[string]interface{}{
		"deleted":   deleted,
		"notFound":  notFound,
		"failed":    failed,
		"requested": len(ids),
	})

	if deleted == 0 {
		return EmptyResult(summary.Message, summary)
	}

	return OKResult(summary.Message, summary)
}

func (s *resourceService[T]) cleanupBlob(ctx context.Context, entity T) {
	if s.blobs == nil {
		return
	}
	owner, ok := any(entity).(models.BlobOwner)
	if !ok {
		return
	}
	fileID := owner.BlobID()
	if fileID == "" {
		return
	}
	if err := s.blobs.Remove(ctx, fileID); err != nil {
		// Best effort: orphaning the blob is accepted, blocking the record
		// deletion is not.
		s.logger.Warn().Err(err).
			Str("file_id", fileID).
			Uint("resource_id", entity.ResourceID()).
			Msg("blob cleanup failed")
	}
}

func (s *resourceService[T]) audit(ctx context.Context, actor Actor, action, description string, affected []uint, details map[string]interface{}) {
	if s.recorder == nil {
		return
	}
	entry := ActivityEntry{
		Actor:       actor,
		Action:      action,
		EntityType:  s.cfg.TypeName,
		Description: description,
		AffectedIDs: affected,
		Details:     details,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

// carryIdentity anchors the stored primary key and creating actor onto
// the incoming payload before saving.
func carryIdentity[T models.Resource](entity *T, existing T) {
	if setter, ok := any(entity).(models.Identifiable); ok {
		setter.SetResourceID(existing.ResourceID())
	}
	if stamper, ok := any(entity).(models.Auditable); ok {
		if info, ok := any(existing).(models.AuditInfo); ok {
			stamper.StampCreatedBy(info.CreatedByActor())
		}
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
