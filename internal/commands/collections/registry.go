package collectionscmd

import (
	"github.com/goliatone/go-cms-collections/internal/commands"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterCollectionCommands.
type HandlerSet struct {
	CreateCollection *CreateCollectionHandler
	UpdateCollection *UpdateCollectionHandler
	DeleteCollection *DeleteCollectionHandler
	CreateField      *CreateFieldHandler
	UpdateField      *UpdateFieldHandler
	DeleteField      *DeleteFieldHandler
	ReorderFields    *ReorderFieldsHandler
	SaveDocument     *SaveDocumentHandler
	DeleteDocument   *DeleteDocumentHandler
	SyncManaged      *SyncManagedHandler
}

func (s *HandlerSet) all() []any {
	handlers := []any{
		s.CreateCollection,
		s.UpdateCollection,
		s.DeleteCollection,
		s.CreateField,
		s.UpdateField,
		s.DeleteField,
		s.ReorderFields,
		s.SaveDocument,
		s.DeleteDocument,
	}
	if s.SyncManaged != nil {
		handlers = append(handlers, s.SyncManaged)
	}
	return handlers
}

// RegisterCollectionCommands builds the handlers and registers them with reg
// when it is non-nil. The managed sync handler is only built when a loader is
// supplied.
func RegisterCollectionCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	logger := commands.CommandLogger(provider, "collections")

	set := &HandlerSet{
		CreateCollection: NewCreateCollectionHandler(services, logger),
		UpdateCollection: NewUpdateCollectionHandler(services, logger),
		DeleteCollection: NewDeleteCollectionHandler(services, logger),
		CreateField:      NewCreateFieldHandler(services, logger),
		UpdateField:      NewUpdateFieldHandler(services, logger),
		DeleteField:      NewDeleteFieldHandler(services, logger),
		ReorderFields:    NewReorderFieldsHandler(services, logger),
		SaveDocument:     NewSaveDocumentHandler(services, logger),
		DeleteDocument:   NewDeleteDocumentHandler(services, logger),
	}
	if services.Managed != nil {
		set.SyncManaged = NewSyncManagedHandler(services, logger)
	}

	if reg != nil {
		for _, handler := range set.all() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
