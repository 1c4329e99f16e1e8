package cms

import (
	"context"

	"github.com/goliatone/go-cms-collections/internal/collections"
	collectionscmd "github.com/goliatone/go-cms-collections/internal/commands/collections"
	"github.com/goliatone/go-cms-collections/internal/di"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/plugins"
)

// CollectionService exports the collection registry contract.
type CollectionService = collections.Service

// FieldService exports the field definition store contract.
type FieldService = collections.FieldService

// DocumentService exports the content document contract.
type DocumentService = documents.Service

type (
	Collection              = collections.Collection
	Field                   = collections.Field
	Schema                  = collections.Schema
	CreateCollectionRequest = collections.CreateCollectionRequest
	UpdateCollectionRequest = collections.UpdateCollectionRequest
	CreateFieldRequest      = collections.CreateFieldRequest
	UpdateFieldRequest      = collections.UpdateFieldRequest
	ManagedDefinition       = collections.ManagedDefinition
	ManagedField            = collections.ManagedField
	SyncResult              = collections.SyncResult

	Document     = documents.Document
	Payload      = documents.Payload
	SaveRequest  = documents.SaveRequest
	SaveResult   = documents.SaveResult
	DocumentView = documents.View
	Issue        = documents.Issue
	Issues       = documents.Issues

	FieldTypeDescriptor = fieldtypes.Descriptor
	EditorResolution    = plugins.Resolution
	PluginState         = plugins.State

	CommandRegistry = collectionscmd.CommandRegistry
	CommandHandlers = collectionscmd.HandlerSet
)

var (
	ErrCollectionNotFound      = collections.ErrCollectionNotFound
	ErrFieldNotFound           = collections.ErrFieldNotFound
	ErrCollectionManaged       = collections.ErrCollectionManaged
	ErrCollectionHasContent    = collections.ErrCollectionHasContent
	ErrImmutableField          = collections.ErrImmutableField
	ErrTypeUnavailable         = collections.ErrTypeUnavailable
	ErrSchemaChangedDuringEdit = collections.ErrSchemaChangedDuringEdit
	ErrDocumentNotFound        = documents.ErrDocumentNotFound
	ErrValidationFailed        = documents.ErrValidationFailed
	ErrSchemaInconsistent      = documents.ErrSchemaInconsistent
)

// IsConflict reports whether err stems from a managed, immutable, non-empty or
// concurrently changed resource.
func IsConflict(err error) bool {
	return collections.IsConflict(err)
}

// Module represents the top level collections runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Collections returns the collection registry.
func (m *Module) Collections() CollectionService {
	return m.container.CollectionService()
}

// Fields returns the field definition store.
func (m *Module) Fields() FieldService {
	return m.container.FieldService()
}

// Documents returns the content document service.
func (m *Module) Documents() DocumentService {
	return m.container.DocumentService()
}

// SyncManaged reconciles managed collections with their configured definitions.
func (m *Module) SyncManaged(ctx context.Context) (*SyncResult, error) {
	return m.container.SyncManaged(ctx)
}

// RegisterCommands registers command handlers with reg when the commands feature is enabled.
func (m *Module) RegisterCommands(reg CommandRegistry) (*CommandHandlers, error) {
	return m.container.RegisterCommands(reg)
}

// FieldTypes lists the field types a new field may use given the currently
// enabled editor plugins.
func (m *Module) FieldTypes(ctx context.Context) ([]FieldTypeDescriptor, error) {
	enabled, err := plugins.Enabled(ctx, m.container.PluginState())
	if err != nil {
		return nil, err
	}
	registry := m.container.TypeRegistry()
	keys := plugins.NewResolver(registry).Offerable(enabled)
	out := make([]FieldTypeDescriptor, 0, len(keys))
	for _, key := range keys {
		desc, err := registry.Describe(key)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// ResolveEditor reports which editor a field type gets under the enabled plugins.
func (m *Module) ResolveEditor(ctx context.Context, fieldType string) (EditorResolution, error) {
	enabled, err := plugins.Enabled(ctx, m.container.PluginState())
	if err != nil {
		return EditorResolution{}, err
	}
	return plugins.NewResolver(m.container.TypeRegistry()).Resolve(fieldType, enabled), nil
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
