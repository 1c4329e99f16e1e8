package collections_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/identity"
	"github.com/google/uuid"
)

func siteSettings() collections.ManagedDefinition {
	return collections.ManagedDefinition{
		Name:        "site_settings",
		DisplayName: "Site settings",
		Fields: []collections.ManagedField{
			{Name: "site_title", Type: "text", Required: true},
			{Name: "theme", Type: "select", Options: map[string]any{"choices": []string{"light", "dark"}}},
		},
	}
}

func TestSyncManagedCreatesAndIsIdempotent(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	result, err := fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{siteSettings()})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Created) != 1 || result.Created[0] != "site_settings" {
		t.Fatalf("unexpected result %+v", result)
	}

	stored, err := fx.registry.GetByName(ctx, "site_settings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.Managed || stored.ID != identity.CollectionUUID("site_settings") {
		t.Fatalf("expected managed collection with stable id, got %+v", stored)
	}
	if len(stored.Fields) != 2 || stored.Fields[0].Name != "site_title" || stored.Fields[1].Order != 2 {
		t.Fatalf("unexpected managed fields %+v", stored.Fields)
	}

	again, err := fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{siteSettings()})
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if len(again.Unchanged) != 1 {
		t.Fatalf("expected unchanged on resync, got %+v", again)
	}
	reloaded, _ := fx.registry.GetByName(ctx, "site_settings")
	if reloaded.SchemaVersion != stored.SchemaVersion {
		t.Fatalf("resync must not bump version: %d != %d", reloaded.SchemaVersion, stored.SchemaVersion)
	}
}

func TestSyncManagedAppliesChanges(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	_, _ = fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{siteSettings()})
	before, _ := fx.registry.GetByName(ctx, "site_settings")

	def := siteSettings()
	def.Fields = def.Fields[:1]
	def.Fields[0].Required = false
	result, err := fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{def})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Updated) != 1 {
		t.Fatalf("expected updated, got %+v", result)
	}
	after, _ := fx.registry.GetByName(ctx, "site_settings")
	if after.SchemaVersion != before.SchemaVersion+1 {
		t.Fatalf("expected a single version bump, got %d -> %d", before.SchemaVersion, after.SchemaVersion)
	}
	if len(after.Fields) != 1 || after.Fields[0].IsRequired {
		t.Fatalf("unexpected fields after sync %+v", after.Fields)
	}
	if after.Fields[0].ID != before.Fields[0].ID {
		t.Fatalf("field identity must survive sync")
	}
}

func TestManagedCollectionRejectsMutations(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	_, _ = fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{siteSettings()})
	managed, _ := fx.registry.GetByName(ctx, "site_settings")
	fieldID := managed.Fields[0].ID

	checks := map[string]error{}
	_, checks["update collection"] = fx.registry.Update(ctx, collections.UpdateCollectionRequest{ID: managed.ID, DisplayName: ptr("Changed")})
	checks["delete collection"] = fx.registry.Delete(ctx, managed.ID)
	_, checks["create field"] = fx.store.Create(ctx, collections.CreateFieldRequest{CollectionID: managed.ID, Name: "extra", Type: "text"})
	_, checks["update field"] = fx.store.Update(ctx, collections.UpdateFieldRequest{ID: fieldID, Label: ptr("Changed")})
	checks["delete field"] = fx.store.Delete(ctx, fieldID)
	_, checks["reorder"] = fx.store.Reorder(ctx, managed.ID, []uuid.UUID{managed.Fields[1].ID, managed.Fields[0].ID})

	for op, err := range checks {
		if !errors.Is(err, collections.ErrCollectionManaged) {
			t.Fatalf("%s: expected ErrCollectionManaged, got %v", op, err)
		}
	}

	after, _ := fx.registry.GetByName(ctx, "site_settings")
	if after.DisplayName != managed.DisplayName || after.SchemaVersion != managed.SchemaVersion {
		t.Fatalf("managed collection changed: %+v", after)
	}
	if len(after.Fields) != 2 || after.Fields[0].Label != managed.Fields[0].Label {
		t.Fatalf("managed fields changed: %+v", after.Fields)
	}
}

func TestSyncManagedRefusesUserDefinedNameClash(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	if _, err := fx.registry.Create(ctx, collections.CreateCollectionRequest{Name: "site_settings"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := collections.ManagedDefinition{Name: "Bad-Name"}
	result, err := fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{siteSettings(), bad, {Name: "footer"}})
	if !errors.Is(err, collections.ErrDuplicateName) || !errors.Is(err, collections.ErrInvalidName) {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if len(result.Created) != 1 || result.Created[0] != "footer" {
		t.Fatalf("other definitions must still sync, got %+v", result)
	}
}

func TestSyncManagedKeepsUnknownTypes(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	def := collections.ManagedDefinition{
		Name:   "legacy",
		Fields: []collections.ManagedField{{Name: "map", Type: "geo-point"}},
	}
	if _, err := fx.registry.SyncManaged(ctx, []collections.ManagedDefinition{def}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	stored, _ := fx.registry.GetByName(ctx, "legacy")
	if len(stored.Fields) != 1 || stored.Fields[0].Type != "geo-point" {
		t.Fatalf("unknown type must be stored as declared, got %+v", stored.Fields)
	}
}
