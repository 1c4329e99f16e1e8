package documents

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentRepository persists content documents.
type DocumentRepository interface {
	Create(ctx context.Context, record *Document) (*Document, error)
	Update(ctx context.Context, record *Document) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	GetBySlug(ctx context.Context, collectionID uuid.UUID, slug string) (*Document, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*Document, error)
	CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error)
}

func NewDocumentRepository(db *bun.DB) repository.Repository[*Document] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Document]{
		NewRecord: func() *Document { return &Document{} },
		GetID: func(d *Document) uuid.UUID {
			return d.ID
		},
		SetID: func(d *Document, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(d *Document) string {
			if d == nil {
				return ""
			}
			return d.ID.String()
		},
	})
}
