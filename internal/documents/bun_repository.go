package documents

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

// BunDocumentRepository implements DocumentRepository with optional caching.
type BunDocumentRepository struct {
	db   *bun.DB
	repo repository.Repository[*Document]
}

func NewBunDocumentRepository(db *bun.DB) *BunDocumentRepository {
	return NewBunDocumentRepositoryWithCache(db, nil, nil)
}

func NewBunDocumentRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunDocumentRepository {
	base := NewDocumentRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunDocumentRepository{db: db, repo: base}
}

func (r *BunDocumentRepository) Create(ctx context.Context, record *Document) (*Document, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunDocumentRepository) Update(ctx context.Context, record *Document) (*Document, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"title",
			"slug",
			"status",
			"data",
			"schema_version",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, record.ID.String())
	}
	return updated, nil
}

func (r *BunDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Document{ID: id})
}

func (r *BunDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

func (r *BunDocumentRepository) GetBySlug(ctx context.Context, collectionID uuid.UUID, slug string) (*Document, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collection_id = ?", collectionID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "document", Key: slug}
	}
	return records[0], nil
}

func (r *BunDocumentRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*Document, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collection_id = ?", collectionID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.slug ASC")
		}),
	)
	return records, err
}

// CountByCollection queries the database directly so the answer never comes
// from a cached listing.
func (r *BunDocumentRepository) CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("document repository: database not configured")
	}
	count, err := r.db.NewSelect().
		Model((*Document)(nil)).
		Where("?TableAlias.collection_id = ?", collectionID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "document", Key: key}
	}
	return fmt.Errorf("document repository error: %w", err)
}
