package di_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/di"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/logging/gologger"
	"github.com/goliatone/go-cms-collections/internal/runtimeconfig"
	"github.com/google/uuid"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestContainerMemoryWiringSharesContentCounter(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	ctx := context.Background()

	articles, err := container.CollectionService().Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if _, err := container.DocumentService().Save(ctx, documents.SaveRequest{
		CollectionID: articles.ID,
		Payload:      documents.Payload{Title: "Post", Slug: "post"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := container.CollectionService().Delete(ctx, articles.ID); !errors.Is(err, collections.ErrCollectionHasContent) {
		t.Fatalf("expected ErrCollectionHasContent, got %v", err)
	}
}

func TestContainerEnablesConfiguredPlugins(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Plugins.Enabled = []string{fieldtypes.PluginQuill}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	ctx := context.Background()
	articles, err := container.CollectionService().Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	if _, err := container.FieldService().Create(ctx, collections.CreateFieldRequest{
		CollectionID: articles.ID, Name: "body", Type: fieldtypes.TypeRichTextQuill,
	}); err != nil {
		t.Fatalf("quill must be available: %v", err)
	}
	_, err = container.FieldService().Create(ctx, collections.CreateFieldRequest{
		CollectionID: articles.ID, Name: "notes", Type: fieldtypes.TypeRichTextTinyMCE,
	})
	if !errors.Is(err, collections.ErrTypeUnavailable) {
		t.Fatalf("expected ErrTypeUnavailable for tinymce, got %v", err)
	}
}

func TestContainerManagedSync(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.ManagedCollections = true
	cfg.Managed.Collections = []runtimeconfig.ManagedCollectionConfig{{
		Name:   "faqs",
		Fields: []runtimeconfig.ManagedFieldConfig{{Name: "question", Type: "text", Required: true}},
	}}
	files := fstest.MapFS{
		"products.md": {Data: []byte("---\nname: products\nfields:\n  - name: sku\n    type: text\n---\n")},
	}

	container, err := di.NewContainer(cfg, di.WithManagedFS(files))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	result, err := container.SyncManaged(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected two managed collections, got %+v", result)
	}

	faqs, err := container.CollectionService().GetByName(context.Background(), "faqs")
	if err != nil || !faqs.Managed {
		t.Fatalf("expected managed faqs, got %+v %v", faqs, err)
	}
}

func TestContainerBunStorageWithCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = fmt.Sprintf("file:di_container_%d?mode=memory&cache=shared", time.Now().UnixNano())
	cfg.Storage.Migrate = true
	cfg.Cache.Enabled = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	if container.BunDB() == nil {
		t.Fatalf("expected bun database")
	}

	ctx := context.Background()
	articles, err := container.CollectionService().Create(ctx, collections.CreateCollectionRequest{Name: "articles"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if _, err := container.FieldService().Create(ctx, collections.CreateFieldRequest{
		CollectionID: articles.ID, Name: "headline", Type: "text", IsRequired: true,
	}); err != nil {
		t.Fatalf("create field: %v", err)
	}
	saved, err := container.DocumentService().Save(ctx, documents.SaveRequest{
		CollectionID: articles.ID,
		Payload:      documents.Payload{Title: "Post", Slug: "post", Fields: map[string]any{"headline": "Hi"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Document.ID == uuid.Nil {
		t.Fatalf("expected document id")
	}
}

func TestContainerUsesGoLoggerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
}

func TestContainerRegistersCommandsWhenEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if set, err := container.RegisterCommands(nil); err != nil || set != nil {
		t.Fatalf("commands must be skipped when disabled, got %v %v", set, err)
	}

	cfg.Features.Commands = true
	container, err = di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	set, err := container.RegisterCommands(nil)
	if err != nil || set == nil || set.SaveDocument == nil {
		t.Fatalf("expected handlers, got %v %v", set, err)
	}
}
