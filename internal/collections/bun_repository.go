package collections

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunCollectionRepository implements CollectionRepository with optional caching.
type BunCollectionRepository struct {
	repo repository.Repository[*Collection]
}

func NewBunCollectionRepository(db *bun.DB) *BunCollectionRepository {
	return NewBunCollectionRepositoryWithCache(db, nil, nil)
}

// NewBunCollectionRepositoryWithCache wraps the bun repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunCollectionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunCollectionRepository {
	base := NewCollectionRepository(db)
	return &BunCollectionRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunCollectionRepository) Create(ctx context.Context, record *Collection) (*Collection, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunCollectionRepository) Update(ctx context.Context, record *Collection) (*Collection, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"display_name",
			"description",
			"managed",
			"schema_version",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, resourceCollection, record.ID.String())
	}
	return updated, nil
}

func (r *BunCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Collection{ID: id})
}

func (r *BunCollectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Collection, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, resourceCollection, id.String())
	}
	return result, nil
}

func (r *BunCollectionRepository) GetByName(ctx context.Context, name string) (*Collection, error) {
	result, err := r.repo.GetByIdentifier(ctx, name)
	if err != nil {
		return nil, mapRepositoryError(err, resourceCollection, name)
	}
	return result, nil
}

func (r *BunCollectionRepository) List(ctx context.Context) ([]*Collection, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.name ASC")
	}))
	return records, err
}

// BunFieldRepository implements FieldRepository with optional caching.
type BunFieldRepository struct {
	repo repository.Repository[*Field]
}

func NewBunFieldRepository(db *bun.DB) *BunFieldRepository {
	return NewBunFieldRepositoryWithCache(db, nil, nil)
}

func NewBunFieldRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunFieldRepository {
	base := NewFieldRepository(db)
	return &BunFieldRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunFieldRepository) Create(ctx context.Context, record *Field) (*Field, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunFieldRepository) Update(ctx context.Context, record *Field) (*Field, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"field_label",
			"field_type",
			"field_options",
			"field_order",
			"is_required",
			"is_searchable",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, resourceField, record.ID.String())
	}
	return updated, nil
}

func (r *BunFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Field{ID: id})
}

func (r *BunFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*Field, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, resourceField, id.String())
	}
	return result, nil
}

func (r *BunFieldRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*Field, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collection_id = ?", collectionID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.field_order ASC, ?TableAlias.sequence ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, resourceField, collectionID.String())
	}
	return SortFields(records), nil
}

// DeleteByCollection removes fields one by one so cached entries are invalidated.
func (r *BunFieldRepository) DeleteByCollection(ctx context.Context, collectionID uuid.UUID) error {
	fields, err := r.ListByCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	for _, field := range fields {
		if err := r.repo.Delete(ctx, &Field{ID: field.ID}); err != nil {
			return fmt.Errorf("delete field %s: %w", field.Name, err)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
