package collectionscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-cms-collections/internal/collections"
)

const (
	createCollectionMessageType = "collections.registry.create"
	updateCollectionMessageType = "collections.registry.update"
	deleteCollectionMessageType = "collections.registry.delete"
	createFieldMessageType      = "collections.fields.create"
	updateFieldMessageType      = "collections.fields.update"
	deleteFieldMessageType      = "collections.fields.delete"
	reorderFieldsMessageType    = "collections.fields.reorder"
	saveDocumentMessageType     = "collections.documents.save"
	deleteDocumentMessageType   = "collections.documents.delete"
	syncManagedMessageType      = "collections.managed.sync"
)

// CreateCollectionCommand registers a new user-defined collection.
type CreateCollectionCommand struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Type implements command.Message.
func (CreateCollectionCommand) Type() string { return createCollectionMessageType }

// Validate checks the machine name before the registry sees it.
func (m CreateCollectionCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.By(machineName("collections.registry.create.name_invalid"))),
	)
}

// UpdateCollectionCommand patches collection metadata. Name is carried so that
// rename attempts surface as immutability errors.
type UpdateCollectionCommand struct {
	CollectionID uuid.UUID `json:"collection_id"`
	Name         *string   `json:"name,omitempty"`
	DisplayName  *string   `json:"display_name,omitempty"`
	Description  *string   `json:"description,omitempty"`
}

// Type implements command.Message.
func (UpdateCollectionCommand) Type() string { return updateCollectionMessageType }

func (m UpdateCollectionCommand) Validate() error {
	return requireID("collection_id", m.CollectionID, "collections.registry.update.collection_id_required")
}

// DeleteCollectionCommand removes an empty, non-managed collection.
type DeleteCollectionCommand struct {
	CollectionID uuid.UUID `json:"collection_id"`
}

// Type implements command.Message.
func (DeleteCollectionCommand) Type() string { return deleteCollectionMessageType }

func (m DeleteCollectionCommand) Validate() error {
	return requireID("collection_id", m.CollectionID, "collections.registry.delete.collection_id_required")
}

// CreateFieldCommand adds a field definition to a collection.
type CreateFieldCommand struct {
	CollectionID uuid.UUID      `json:"collection_id"`
	Name         string         `json:"name"`
	Label        string         `json:"label,omitempty"`
	FieldType    string         `json:"type"`
	Options      map[string]any `json:"options,omitempty"`
	Order        *int           `json:"order,omitempty"`
	Required     bool           `json:"required,omitempty"`
	Searchable   bool           `json:"searchable,omitempty"`
}

// Type implements command.Message.
func (CreateFieldCommand) Type() string { return createFieldMessageType }

// Validate performs shape checks only. Type availability and options are
// decided by the field store.
func (m CreateFieldCommand) Validate() error {
	errs := validation.Errors{}
	if m.CollectionID == uuid.Nil {
		errs["collection_id"] = validation.NewError("collections.fields.create.collection_id_required", "collection_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		errs["name"] = validation.NewError("collections.fields.create.name_required", "name is required")
	}
	if strings.TrimSpace(m.FieldType) == "" {
		errs["type"] = validation.NewError("collections.fields.create.type_required", "type is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m CreateFieldCommand) request() collections.CreateFieldRequest {
	return collections.CreateFieldRequest{
		CollectionID: m.CollectionID,
		Name:         m.Name,
		Label:        m.Label,
		Type:         m.FieldType,
		Options:      m.Options,
		Order:        m.Order,
		IsRequired:   m.Required,
		IsSearchable: m.Searchable,
	}
}

// UpdateFieldCommand patches a field definition; nil members are untouched.
type UpdateFieldCommand struct {
	FieldID    uuid.UUID      `json:"field_id"`
	Name       *string        `json:"name,omitempty"`
	Label      *string        `json:"label,omitempty"`
	FieldType  *string        `json:"type,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
	Order      *int           `json:"order,omitempty"`
	Required   *bool          `json:"required,omitempty"`
	Searchable *bool          `json:"searchable,omitempty"`
}

// Type implements command.Message.
func (UpdateFieldCommand) Type() string { return updateFieldMessageType }

func (m UpdateFieldCommand) Validate() error {
	return requireID("field_id", m.FieldID, "collections.fields.update.field_id_required")
}

// DeleteFieldCommand removes a field definition. Stored document data is kept.
type DeleteFieldCommand struct {
	FieldID uuid.UUID `json:"field_id"`
}

// Type implements command.Message.
func (DeleteFieldCommand) Type() string { return deleteFieldMessageType }

func (m DeleteFieldCommand) Validate() error {
	return requireID("field_id", m.FieldID, "collections.fields.delete.field_id_required")
}

// ReorderFieldsCommand assigns field orders from the position in FieldIDs.
type ReorderFieldsCommand struct {
	CollectionID uuid.UUID   `json:"collection_id"`
	FieldIDs     []uuid.UUID `json:"field_ids"`
}

// Type implements command.Message.
func (ReorderFieldsCommand) Type() string { return reorderFieldsMessageType }

func (m ReorderFieldsCommand) Validate() error {
	errs := validation.Errors{}
	if m.CollectionID == uuid.Nil {
		errs["collection_id"] = validation.NewError("collections.fields.reorder.collection_id_required", "collection_id is required")
	}
	if len(m.FieldIDs) == 0 {
		errs["field_ids"] = validation.NewError("collections.fields.reorder.field_ids_required", "field_ids is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SaveDocumentCommand creates (DocumentID nil) or updates a content document.
type SaveDocumentCommand struct {
	CollectionID  uuid.UUID      `json:"collection_id"`
	DocumentID    uuid.UUID      `json:"document_id,omitempty"`
	SchemaVersion int            `json:"schema_version,omitempty"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Status        string         `json:"status,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
}

// Type implements command.Message.
func (SaveDocumentCommand) Type() string { return saveDocumentMessageType }

// Validate only checks addressing; content rules belong to the document service.
func (m SaveDocumentCommand) Validate() error {
	return requireID("collection_id", m.CollectionID, "collections.documents.save.collection_id_required")
}

// DeleteDocumentCommand removes a content document.
type DeleteDocumentCommand struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// Type implements command.Message.
func (DeleteDocumentCommand) Type() string { return deleteDocumentMessageType }

func (m DeleteDocumentCommand) Validate() error {
	return requireID("document_id", m.DocumentID, "collections.documents.delete.document_id_required")
}

// SyncManagedCommand reconciles managed collections with their configuration.
type SyncManagedCommand struct{}

// Type implements command.Message.
func (SyncManagedCommand) Type() string { return syncManagedMessageType }

func (SyncManagedCommand) Validate() error { return nil }

func requireID(key string, id uuid.UUID, code string) error {
	if id == uuid.Nil {
		return validation.Errors{key: validation.NewError(code, key+" is required")}
	}
	return nil
}

func machineName(code string) validation.RuleFunc {
	return func(value any) error {
		name, _ := value.(string)
		if name != "" && !collections.ValidName(strings.TrimSpace(name)) {
			return validation.NewError(code, "must contain only lowercase letters, digits and underscores")
		}
		return nil
	}
}
