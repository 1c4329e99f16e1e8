package collectionscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/commands"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/managed"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

var (
	ErrCollectionsServiceRequired = errors.New("collections command: collection service is nil")
	ErrFieldsServiceRequired      = errors.New("collections command: field service is nil")
	ErrDocumentsServiceRequired   = errors.New("collections command: document service is nil")
	ErrManagedLoaderRequired      = errors.New("collections command: managed loader is nil")
)

// Services groups the collaborators the handlers dispatch to. Handlers for a
// missing collaborator fail at execution time.
type Services struct {
	Collections collections.Service
	Fields      collections.FieldService
	Documents   documents.Service
	Managed     *managed.Loader
}

var _ command.Commander[CreateCollectionCommand] = (*CreateCollectionHandler)(nil)

// CreateCollectionHandler registers a user-defined collection.
type CreateCollectionHandler struct {
	inner *commands.Handler[CreateCollectionCommand]
}

// NewCreateCollectionHandler constructs the handler.
func NewCreateCollectionHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[CreateCollectionCommand]) *CreateCollectionHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg CreateCollectionCommand) error {
		if s.Collections == nil {
			return ErrCollectionsServiceRequired
		}
		_, err := s.Collections.Create(ctx, collections.CreateCollectionRequest{Name: msg.Name, DisplayName: msg.DisplayName, Description: msg.Description})
		return err
	}

	handlerOpts := []commands.HandlerOption[CreateCollectionCommand]{
		commands.WithLogger[CreateCollectionCommand](logger),
		commands.WithOperation[CreateCollectionCommand]("registry.create"),
		commands.WithMessageScope(func(msg CreateCollectionCommand) logging.Scope {
			return logging.Scope{Collection: msg.Name}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateCollectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateCollectionCommand].
func (h *CreateCollectionHandler) Execute(ctx context.Context, msg CreateCollectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[UpdateCollectionCommand] = (*UpdateCollectionHandler)(nil)

// UpdateCollectionHandler patches collection metadata.
type UpdateCollectionHandler struct {
	inner *commands.Handler[UpdateCollectionCommand]
}

// NewUpdateCollectionHandler constructs the handler.
func NewUpdateCollectionHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateCollectionCommand]) *UpdateCollectionHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg UpdateCollectionCommand) error {
		if s.Collections == nil {
			return ErrCollectionsServiceRequired
		}
		_, err := s.Collections.Update(ctx, collections.UpdateCollectionRequest{ID: msg.CollectionID, Name: msg.Name, DisplayName: msg.DisplayName, Description: msg.Description})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateCollectionCommand]{
		commands.WithLogger[UpdateCollectionCommand](logger),
		commands.WithOperation[UpdateCollectionCommand]("registry.update"),
		commands.WithMessageScope(func(msg UpdateCollectionCommand) logging.Scope {
			return logging.Scope{CollectionID: msg.CollectionID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateCollectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateCollectionCommand].
func (h *UpdateCollectionHandler) Execute(ctx context.Context, msg UpdateCollectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[DeleteCollectionCommand] = (*DeleteCollectionHandler)(nil)

// DeleteCollectionHandler removes an empty collection.
type DeleteCollectionHandler struct {
	inner *commands.Handler[DeleteCollectionCommand]
}

// NewDeleteCollectionHandler constructs the handler.
func NewDeleteCollectionHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteCollectionCommand]) *DeleteCollectionHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg DeleteCollectionCommand) error {
		if s.Collections == nil {
			return ErrCollectionsServiceRequired
		}
		return s.Collections.Delete(ctx, msg.CollectionID)
	}

	handlerOpts := []commands.HandlerOption[DeleteCollectionCommand]{
		commands.WithLogger[DeleteCollectionCommand](logger),
		commands.WithOperation[DeleteCollectionCommand]("registry.delete"),
		commands.WithMessageScope(func(msg DeleteCollectionCommand) logging.Scope {
			return logging.Scope{CollectionID: msg.CollectionID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteCollectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteCollectionCommand].
func (h *DeleteCollectionHandler) Execute(ctx context.Context, msg DeleteCollectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[CreateFieldCommand] = (*CreateFieldHandler)(nil)

// CreateFieldHandler adds a field definition.
type CreateFieldHandler struct {
	inner *commands.Handler[CreateFieldCommand]
}

// NewCreateFieldHandler constructs the handler.
func NewCreateFieldHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[CreateFieldCommand]) *CreateFieldHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg CreateFieldCommand) error {
		if s.Fields == nil {
			return ErrFieldsServiceRequired
		}
		_, err := s.Fields.Create(ctx, msg.request())
		return err
	}

	handlerOpts := []commands.HandlerOption[CreateFieldCommand]{
		commands.WithLogger[CreateFieldCommand](logger),
		commands.WithOperation[CreateFieldCommand]("fields.create"),
		commands.WithMessageScope(func(msg CreateFieldCommand) logging.Scope {
			return logging.Scope{CollectionID: msg.CollectionID, Field: msg.Name}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateFieldHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateFieldCommand].
func (h *CreateFieldHandler) Execute(ctx context.Context, msg CreateFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[UpdateFieldCommand] = (*UpdateFieldHandler)(nil)

// UpdateFieldHandler patches a field definition.
type UpdateFieldHandler struct {
	inner *commands.Handler[UpdateFieldCommand]
}

// NewUpdateFieldHandler constructs the handler.
func NewUpdateFieldHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateFieldCommand]) *UpdateFieldHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg UpdateFieldCommand) error {
		if s.Fields == nil {
			return ErrFieldsServiceRequired
		}
		_, err := s.Fields.Update(ctx, collections.UpdateFieldRequest{
			ID:           msg.FieldID,
			Name:         msg.Name,
			Label:        msg.Label,
			Type:         msg.FieldType,
			Options:      msg.Options,
			Order:        msg.Order,
			IsRequired:   msg.Required,
			IsSearchable: msg.Searchable,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateFieldCommand]{
		commands.WithLogger[UpdateFieldCommand](logger),
		commands.WithOperation[UpdateFieldCommand]("fields.update"),
		commands.WithMessageScope(func(msg UpdateFieldCommand) logging.Scope {
			return logging.Scope{FieldID: msg.FieldID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateFieldHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateFieldCommand].
func (h *UpdateFieldHandler) Execute(ctx context.Context, msg UpdateFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[DeleteFieldCommand] = (*DeleteFieldHandler)(nil)

// DeleteFieldHandler removes a field definition.
type DeleteFieldHandler struct {
	inner *commands.Handler[DeleteFieldCommand]
}

// NewDeleteFieldHandler constructs the handler.
func NewDeleteFieldHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteFieldCommand]) *DeleteFieldHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg DeleteFieldCommand) error {
		if s.Fields == nil {
			return ErrFieldsServiceRequired
		}
		return s.Fields.Delete(ctx, msg.FieldID)
	}

	handlerOpts := []commands.HandlerOption[DeleteFieldCommand]{
		commands.WithLogger[DeleteFieldCommand](logger),
		commands.WithOperation[DeleteFieldCommand]("fields.delete"),
		commands.WithMessageScope(func(msg DeleteFieldCommand) logging.Scope {
			return logging.Scope{FieldID: msg.FieldID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteFieldHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteFieldCommand].
func (h *DeleteFieldHandler) Execute(ctx context.Context, msg DeleteFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[ReorderFieldsCommand] = (*ReorderFieldsHandler)(nil)

// ReorderFieldsHandler reorders the fields of a collection.
type ReorderFieldsHandler struct {
	inner *commands.Handler[ReorderFieldsCommand]
}

// NewReorderFieldsHandler constructs the handler.
func NewReorderFieldsHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderFieldsCommand]) *ReorderFieldsHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg ReorderFieldsCommand) error {
		if s.Fields == nil {
			return ErrFieldsServiceRequired
		}
		_, err := s.Fields.Reorder(ctx, msg.CollectionID, msg.FieldIDs)
		return err
	}

	handlerOpts := []commands.HandlerOption[ReorderFieldsCommand]{
		commands.WithLogger[ReorderFieldsCommand](logger),
		commands.WithOperation[ReorderFieldsCommand]("fields.reorder"),
		commands.WithMessageScope(func(msg ReorderFieldsCommand) logging.Scope {
			return logging.Scope{CollectionID: msg.CollectionID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReorderFieldsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReorderFieldsCommand].
func (h *ReorderFieldsHandler) Execute(ctx context.Context, msg ReorderFieldsCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[SaveDocumentCommand] = (*SaveDocumentHandler)(nil)

// SaveDocumentHandler validates and stores a content document.
type SaveDocumentHandler struct {
	inner *commands.Handler[SaveDocumentCommand]
}

// NewSaveDocumentHandler constructs the handler.
func NewSaveDocumentHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[SaveDocumentCommand]) *SaveDocumentHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg SaveDocumentCommand) error {
		if s.Documents == nil {
			return ErrDocumentsServiceRequired
		}
		result, err := s.Documents.Save(ctx, documents.SaveRequest{
			CollectionID:  msg.CollectionID,
			DocumentID:    msg.DocumentID,
			SchemaVersion: msg.SchemaVersion,
			Payload: documents.Payload{
				Title:  msg.Title,
				Slug:   msg.Slug,
				Status: msg.Status,
				Fields: msg.Fields,
			},
		})
		if err != nil {
			return err
		}
		if warnings := result.Issues.Warnings(); len(warnings) > 0 {
			logger.WithContext(ctx).Warn("collections.command.documents.save.warnings", "document_id", result.Document.ID, "warnings", len(warnings))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveDocumentCommand]{
		commands.WithLogger[SaveDocumentCommand](logger),
		commands.WithOperation[SaveDocumentCommand]("documents.save"),
		commands.WithMessageScope(func(msg SaveDocumentCommand) logging.Scope {
			return logging.Scope{CollectionID: msg.CollectionID, DocumentID: msg.DocumentID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveDocumentCommand].
func (h *SaveDocumentHandler) Execute(ctx context.Context, msg SaveDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[DeleteDocumentCommand] = (*DeleteDocumentHandler)(nil)

// DeleteDocumentHandler removes a content document.
type DeleteDocumentHandler struct {
	inner *commands.Handler[DeleteDocumentCommand]
}

// NewDeleteDocumentHandler constructs the handler.
func NewDeleteDocumentHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteDocumentCommand]) *DeleteDocumentHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg DeleteDocumentCommand) error {
		if s.Documents == nil {
			return ErrDocumentsServiceRequired
		}
		return s.Documents.Delete(ctx, msg.DocumentID)
	}

	handlerOpts := []commands.HandlerOption[DeleteDocumentCommand]{
		commands.WithLogger[DeleteDocumentCommand](logger),
		commands.WithOperation[DeleteDocumentCommand]("documents.delete"),
		commands.WithMessageScope(func(msg DeleteDocumentCommand) logging.Scope {
			return logging.Scope{DocumentID: msg.DocumentID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteDocumentCommand].
func (h *DeleteDocumentHandler) Execute(ctx context.Context, msg DeleteDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

var _ command.Commander[SyncManagedCommand] = (*SyncManagedHandler)(nil)

// SyncManagedHandler reconciles managed collections.
type SyncManagedHandler struct {
	inner *commands.Handler[SyncManagedCommand]
}

// NewSyncManagedHandler constructs the handler.
func NewSyncManagedHandler(s Services, logger interfaces.Logger, opts ...commands.HandlerOption[SyncManagedCommand]) *SyncManagedHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg SyncManagedCommand) error {
		if s.Managed == nil {
			return ErrManagedLoaderRequired
		}
		result, err := s.Managed.Sync(ctx)
		if result != nil {
			logger.WithContext(ctx).Info("collections.command.managed.sync.completed", "created", len(result.Created), "updated", len(result.Updated), "unchanged", len(result.Unchanged))
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[SyncManagedCommand]{
		commands.WithLogger[SyncManagedCommand](logger),
		commands.WithOperation[SyncManagedCommand]("managed.sync"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncManagedHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncManagedCommand].
func (h *SyncManagedHandler) Execute(ctx context.Context, msg SyncManagedCommand) error {
	return h.inner.Execute(ctx, msg)
}
