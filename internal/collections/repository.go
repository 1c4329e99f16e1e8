package collections

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CollectionRepository persists collection records.
type CollectionRepository interface {
	Create(ctx context.Context, record *Collection) (*Collection, error)
	Update(ctx context.Context, record *Collection) (*Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	GetByName(ctx context.Context, name string) (*Collection, error)
	List(ctx context.Context) ([]*Collection, error)
}

// FieldRepository persists field definitions.
type FieldRepository interface {
	Create(ctx context.Context, record *Field) (*Field, error)
	Update(ctx context.Context, record *Field) (*Field, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Field, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*Field, error)
	DeleteByCollection(ctx context.Context, collectionID uuid.UUID) error
}

func NewCollectionRepository(db *bun.DB) repository.Repository[*Collection] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Collection]{
		NewRecord: func() *Collection { return &Collection{} },
		GetID: func(c *Collection) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Collection, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(c *Collection) string {
			return c.Name
		},
	})
}

func NewFieldRepository(db *bun.DB) repository.Repository[*Field] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Field]{
		NewRecord: func() *Field { return &Field{} },
		GetID: func(f *Field) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Field, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(f *Field) string {
			if f == nil {
				return ""
			}
			return f.ID.String()
		},
	})
}
