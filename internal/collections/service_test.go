package collections_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/logging/console"
)

type fixture struct {
	collections *collections.MemoryCollectionRepository
	fields      *collections.MemoryFieldRepository
	registry    collections.Service
	store       collections.FieldService
}

func newFixture(opts ...collections.Option) *fixture {
	collectionRepo := collections.NewMemoryCollectionRepository()
	fieldRepo := collections.NewMemoryFieldRepository()
	opts = append([]collections.Option{collections.WithLocker(collections.NewLocker())}, opts...)
	return &fixture{
		collections: collectionRepo,
		fields:      fieldRepo,
		registry:    collections.NewService(collectionRepo, fieldRepo, opts...),
		store:       collections.NewFieldService(collectionRepo, fieldRepo, opts...),
	}
}

type staticCounter map[uuid.UUID]int

func (c staticCounter) CountByCollection(_ context.Context, id uuid.UUID) (int, error) {
	return c[id], nil
}

func ptr[T any](v T) *T { return &v }

func TestServiceCreateRejectsInvalidName(t *testing.T) {
	fx := newFixture()
	for _, name := range []string{"", "Articles", "blog-posts", "news feed"} {
		if _, err := fx.registry.Create(context.Background(), collections.CreateCollectionRequest{Name: name}); !errors.Is(err, collections.ErrInvalidName) {
			t.Fatalf("name %q: expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestServiceCreateDuplicateName(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Managed || created.SchemaVersion != 1 || created.DisplayName != "articles" {
		t.Fatalf("unexpected collection %+v", created)
	}

	if _, err := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles", DisplayName: "Again"}); !errors.Is(err, collections.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestServiceUpdateNameIsImmutable(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, _ := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles", DisplayName: "Articles"})

	_, err := fx.registry.Update(ctx, collections.UpdateCollectionRequest{ID: created.ID, Name: ptr("posts")})
	if !errors.Is(err, collections.ErrImmutableField) {
		t.Fatalf("expected ErrImmutableField, got %v", err)
	}
	if !collections.IsConflict(err) {
		t.Fatalf("immutable attribute must be a conflict")
	}

	updated, err := fx.registry.Update(ctx, collections.UpdateCollectionRequest{
		ID:          created.ID,
		Name:        ptr("articles"),
		DisplayName: ptr("News"),
		Description: ptr("Long form"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "articles" || updated.DisplayName != "News" || updated.Description != "Long form" {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestServiceUpdateMissingCollection(t *testing.T) {
	fx := newFixture()
	_, err := fx.registry.Update(context.Background(), collections.UpdateCollectionRequest{ID: uuid.New(), DisplayName: ptr("x")})
	if !errors.Is(err, collections.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestServiceDeleteRefusesCollectionWithContent(t *testing.T) {
	counter := staticCounter{}
	fx := newFixture(collections.WithContentCounter(counter))
	ctx := context.Background()

	created, _ := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if _, err := fx.store.Create(ctx, collections.CreateFieldRequest{CollectionID: created.ID, Name: "headline", Type: "text"}); err != nil {
		t.Fatalf("create field: %v", err)
	}

	counter[created.ID] = 2
	if err := fx.registry.Delete(ctx, created.ID); !errors.Is(err, collections.ErrCollectionHasContent) {
		t.Fatalf("expected ErrCollectionHasContent, got %v", err)
	}
	if _, err := fx.registry.Get(ctx, created.ID); err != nil {
		t.Fatalf("collection must survive refused delete: %v", err)
	}

	counter[created.ID] = 0
	if err := fx.registry.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fx.registry.Get(ctx, created.ID); !errors.Is(err, collections.ErrCollectionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	remaining, _ := fx.fields.ListByCollection(ctx, created.ID)
	if len(remaining) != 0 {
		t.Fatalf("expected fields removed with collection, got %d", len(remaining))
	}
}

func TestServiceGetByNameIncludesOrderedFields(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, _ := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	_, _ = fx.store.Create(ctx, collections.CreateFieldRequest{CollectionID: created.ID, Name: "body", Type: "textarea", Order: ptr(5)})
	_, _ = fx.store.Create(ctx, collections.CreateFieldRequest{CollectionID: created.ID, Name: "headline", Type: "text", Order: ptr(1)})

	got, err := fx.registry.GetByName(ctx, "articles")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if len(got.Fields) != 2 || got.Fields[0].Name != "headline" || got.Fields[1].Name != "body" {
		t.Fatalf("unexpected field order %+v", got.Fields)
	}

	if _, err := fx.registry.GetByName(ctx, "missing"); !errors.Is(err, collections.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestServiceListSortedByName(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	for _, name := range []string{"pages", "articles", "events"} {
		if _, err := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, err := fx.registry.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Name != "articles" || list[2].Name != "pages" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestServiceLogsCarryCollectionScope(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	fx := newFixture(collections.WithLogger(logging.FieldsLogger(provider)))

	ctx := logging.WithScope(context.Background(), logging.Scope{Command: "collections.field.create"})
	created, err := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.store.Create(ctx, collections.CreateFieldRequest{CollectionID: created.ID, Name: "headline", Label: "Headline", Type: "text"}); err != nil {
		t.Fatalf("create field: %v", err)
	}

	out := buf.String()
	want := "field.created command=collections.field.create collection=articles collection_id=" + created.ID.String() + " field_name=headline"
	if !strings.Contains(out, want) {
		t.Fatalf("expected scoped field entry %q in\n%s", want, out)
	}
}
