package cms_test

import (
	"context"
	"errors"
	"testing"

	cms "github.com/goliatone/go-cms-collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/internal/di"
)

func TestArticlesScenario(t *testing.T) {
	ctx := context.Background()
	module, err := cms.New(cms.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	articles, err := module.Collections().Create(ctx, cms.CreateCollectionRequest{Name: "articles", DisplayName: "Articles"})
	if err != nil {
		t.Fatalf("create articles: %v", err)
	}
	if _, err := module.Collections().Create(ctx, cms.CreateCollectionRequest{Name: "articles"}); err == nil {
		t.Fatalf("duplicate collection name must fail")
	}

	headline, err := module.Fields().Create(ctx, cms.CreateFieldRequest{
		CollectionID: articles.ID, Name: "headline", Type: "text", IsRequired: true,
	})
	if err != nil {
		t.Fatalf("create headline: %v", err)
	}
	if _, err := module.Fields().Create(ctx, cms.CreateFieldRequest{
		CollectionID: articles.ID, Name: "summary", Type: "select",
		Options: map[string]any{"choices": []string{"short", "long"}},
	}); err != nil {
		t.Fatalf("create summary: %v", err)
	}

	_, err = module.Documents().Save(ctx, cms.SaveRequest{
		CollectionID: articles.ID,
		Payload:      cms.Payload{Title: "Hello", Slug: "hello", Fields: map[string]any{"headline": "", "summary": "medium"}},
	})
	var refused *documents.ValidationError
	if !errors.As(err, &refused) {
		t.Fatalf("expected refused save, got %v", err)
	}
	if !refused.Issues.Has("headline", documents.CodeRequiredFieldMissing) || !refused.Issues.Has("summary", documents.CodeInvalidOption) {
		t.Fatalf("expected required and option issues, got %+v", refused.Issues)
	}

	saved, err := module.Documents().Save(ctx, cms.SaveRequest{
		CollectionID: articles.ID,
		Payload:      cms.Payload{Title: "Hello", Slug: "hello", Fields: map[string]any{"headline": "Hello", "summary": "short"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := module.Fields().Delete(ctx, headline.ID); err != nil {
		t.Fatalf("delete headline: %v", err)
	}
	view, err := module.Documents().Read(ctx, saved.Document.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if view.Orphans["headline"] != "Hello" {
		t.Fatalf("headline must remain readable, got %v", view.Orphans)
	}
	fields, err := module.Fields().List(ctx, articles.ID)
	if err != nil {
		t.Fatalf("list fields: %v", err)
	}
	for _, field := range fields {
		if field.Name == "headline" {
			t.Fatalf("headline must no longer be listed")
		}
	}
}

func TestFieldTypesFollowPluginState(t *testing.T) {
	state := plugins.NewStaticState(fieldtypes.PluginMarkdown)
	module, err := cms.New(cms.DefaultConfig(), di.WithPluginState(state))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	ctx := context.Background()

	offered := map[string]bool{}
	types, err := module.FieldTypes(ctx)
	if err != nil {
		t.Fatalf("field types: %v", err)
	}
	for _, desc := range types {
		offered[desc.Key] = true
	}
	if !offered[fieldtypes.TypeRichTextMarkdown] || offered[fieldtypes.TypeRichTextQuill] {
		t.Fatalf("unexpected offered types %v", offered)
	}

	state.Disable(fieldtypes.PluginMarkdown)
	res, err := module.ResolveEditor(ctx, fieldtypes.TypeRichTextMarkdown)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Degraded() || res.Type != fieldtypes.TypeTextarea {
		t.Fatalf("expected degraded markdown, got %+v", res)
	}
}

func TestManagedCollectionsAreReadOnly(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Features.ManagedCollections = true
	cfg.Managed.Collections = []cms.ManagedCollectionConfig{{
		Name:   "products",
		Fields: []cms.ManagedFieldConfig{{Name: "sku", Type: "text", Required: true}},
	}}
	module, err := cms.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	ctx := context.Background()
	if _, err := module.SyncManaged(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	products, err := module.Collections().GetByName(ctx, "products")
	if err != nil {
		t.Fatalf("get products: %v", err)
	}
	label := "Products!"
	if _, err := module.Collections().Update(ctx, cms.UpdateCollectionRequest{ID: products.ID, DisplayName: &label}); !errors.Is(err, cms.ErrCollectionManaged) || !cms.IsConflict(err) {
		t.Fatalf("expected ErrCollectionManaged, got %v", err)
	}
	if err := module.Fields().Delete(ctx, products.Fields[0].ID); !errors.Is(err, cms.ErrCollectionManaged) {
		t.Fatalf("expected ErrCollectionManaged, got %v", err)
	}
}
