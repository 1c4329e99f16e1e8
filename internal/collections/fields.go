package collections

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
	"github.com/google/uuid"
)

// FieldService manages field definitions of non-managed collections.
type FieldService interface {
	Create(ctx context.Context, req CreateFieldRequest) (*Field, error)
	CreateBatch(ctx context.Context, collectionID uuid.UUID, reqs []CreateFieldRequest) ([]*Field, error)
	Update(ctx context.Context, req UpdateFieldRequest) (*Field, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, collectionID uuid.UUID) ([]*Field, error)
	Reorder(ctx context.Context, collectionID uuid.UUID, fieldIDs []uuid.UUID) ([]*Field, error)
	Schema(ctx context.Context, collectionID uuid.UUID) (*Schema, error)
}

// CreateFieldRequest captures a new field definition. Order is appended after
// the current maximum when nil.
type CreateFieldRequest struct {
	CollectionID uuid.UUID
	Name         string
	Label        string
	Type         string
	Options      map[string]any
	Order        *int
	IsRequired   bool
	IsSearchable bool
}

// UpdateFieldRequest is a field patch; nil members are left untouched. A
// non-nil empty Options map clears the options.
type UpdateFieldRequest struct {
	ID           uuid.UUID
	Name         *string
	Label        *string
	Type         *string
	Options      map[string]any
	Order        *int
	IsRequired   *bool
	IsSearchable *bool
}

// NewFieldService constructs the field definition store.
func NewFieldService(collections CollectionRepository, fields FieldRepository, opts ...Option) FieldService {
	cfg := applyOptions(opts)
	return &fieldService{
		collections: collections,
		fields:      fields,
		resolver:    plugins.NewResolver(cfg.types),
		options:     cfg,
	}
}

type fieldService struct {
	collections CollectionRepository
	fields      FieldRepository
	resolver    *plugins.Resolver
	options
}

func (s *fieldService) Create(ctx context.Context, req CreateFieldRequest) (*Field, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if req.CollectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}

	unlock := s.locker.Lock(req.CollectionID)
	defer unlock()

	return s.create(ctx, req)
}

// CreateBatch creates every valid field; failures are reported per item in a
// *BatchError without rolling back the fields that succeeded.
func (s *fieldService) CreateBatch(ctx context.Context, collectionID uuid.UUID, reqs []CreateFieldRequest) ([]*Field, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if collectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}

	unlock := s.locker.Lock(collectionID)
	defer unlock()

	created := make([]*Field, 0, len(reqs))
	var batchErr *BatchError
	for i, req := range reqs {
		req.CollectionID = collectionID
		field, err := s.create(ctx, req)
		if err != nil {
			if IsConflict(err) || isNotFound(err) {
				// the whole collection refuses mutations; nothing else can succeed
				return nil, err
			}
			if batchErr == nil {
				batchErr = &BatchError{}
			}
			batchErr.Items = append(batchErr.Items, BatchItemError{
				Index:     i,
				FieldName: strings.TrimSpace(req.Name),
				Err:       err,
			})
			continue
		}
		created = append(created, field)
	}
	if batchErr != nil {
		return created, batchErr
	}
	return created, nil
}

func (s *fieldService) create(ctx context.Context, req CreateFieldRequest) (*Field, error) {
	collection, err := s.mutableCollection(ctx, req.CollectionID)
	if err != nil {
		return nil, err
	}
	existing, err := s.fields.ListByCollection(ctx, collection.ID)
	if err != nil {
		return nil, err
	}
	enabled, err := plugins.Enabled(ctx, s.plugins)
	if err != nil {
		return nil, fmt.Errorf("resolve enabled plugins: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	fieldType := fieldtypes.NormalizeKey(req.Type)

	defErr := &FieldDefinitionError{FieldName: name}
	switch {
	case !ValidName(name):
		defErr.add("field_name", fmt.Errorf("%w: %q", ErrInvalidFieldName, name))
	case hasFieldNamed(existing, name):
		defErr.add("field_name", fmt.Errorf("%w: %q", ErrDuplicateFieldName, name))
	}
	if s.checkType(defErr, fieldType, enabled) {
		s.checkOptions(defErr, fieldType, req.Options)
	}
	if len(defErr.Issues) > 0 {
		return nil, defErr
	}

	maxOrder, maxSequence := bounds(existing)
	order := maxOrder + 1
	if req.Order != nil {
		order = *req.Order
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = name
	}

	now := s.now()
	record := &Field{
		ID:           s.id(),
		CollectionID: collection.ID,
		Name:         name,
		Label:        label,
		Type:         fieldType,
		Options:      normalizeOptions(req.Options),
		Order:        order,
		Sequence:     maxSequence + 1,
		IsRequired:   req.IsRequired,
		IsSearchable: req.IsSearchable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.fields.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := s.bumpVersion(ctx, collection); err != nil {
		return nil, err
	}
	s.log(ctx, collection, created.Name).Info("field.created", "field_type", created.Type, "field_order", created.Order)
	return created, nil
}

func (s *fieldService) Update(ctx context.Context, req UpdateFieldRequest) (*Field, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if req.ID == uuid.Nil {
		return nil, ErrFieldIDRequired
	}

	current, err := s.fields.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(current.CollectionID)
	defer unlock()

	collection, err := s.mutableCollection(ctx, current.CollectionID)
	if err != nil {
		return nil, err
	}
	// reload under the lock so concurrent edits are not lost
	record, err := s.fields.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != record.Name {
		return nil, &ImmutableError{Resource: resourceField, Attribute: "field_name"}
	}

	enabled, err := plugins.Enabled(ctx, s.plugins)
	if err != nil {
		return nil, fmt.Errorf("resolve enabled plugins: %w", err)
	}

	defErr := &FieldDefinitionError{FieldName: record.Name}
	nextType := record.Type
	retyped := false
	if req.Type != nil {
		if normalized := fieldtypes.NormalizeKey(*req.Type); normalized != record.Type {
			nextType = normalized
			retyped = true
		}
	}
	nextOptions := record.Options
	optionsChanged := false
	if req.Options != nil {
		nextOptions = normalizeOptions(req.Options)
		optionsChanged = !reflect.DeepEqual(nextOptions, normalizeOptions(record.Options))
	}

	if retyped {
		if s.checkType(defErr, nextType, enabled) {
			s.checkOptions(defErr, nextType, nextOptions)
		}
	} else if optionsChanged {
		// an existing field keeps its type even when its editor is degraded or
		// its type disappeared from the registry; options are only checked
		// against a type the registry still knows
		if _, err := s.types.Describe(nextType); err == nil {
			s.checkOptions(defErr, nextType, nextOptions)
		}
	}
	if len(defErr.Issues) > 0 {
		return nil, defErr
	}

	bump := retyped || optionsChanged
	record.Type = nextType
	record.Options = nextOptions
	if req.Label != nil {
		if trimmed := strings.TrimSpace(*req.Label); trimmed != "" {
			record.Label = trimmed
		}
	}
	if req.Order != nil {
		record.Order = *req.Order
	}
	if req.IsRequired != nil && *req.IsRequired != record.IsRequired {
		record.IsRequired = *req.IsRequired
		bump = true
	}
	if req.IsSearchable != nil {
		record.IsSearchable = *req.IsSearchable
	}
	record.UpdatedAt = s.now()

	updated, err := s.fields.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	if bump {
		if err := s.bumpVersion(ctx, collection); err != nil {
			return nil, err
		}
	}
	s.log(ctx, collection, updated.Name).Info("field.updated", "field_type", updated.Type, "schema_changed", bump)
	return updated, nil
}

// Delete removes the field definition only. Stored document data keyed by the
// field name is left in place.
func (s *fieldService) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.collections == nil || s.fields == nil {
		return ErrServiceUnavailable
	}
	if id == uuid.Nil {
		return ErrFieldIDRequired
	}

	record, err := s.fields.GetByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locker.Lock(record.CollectionID)
	defer unlock()

	collection, err := s.mutableCollection(ctx, record.CollectionID)
	if err != nil {
		return err
	}
	if err := s.fields.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.bumpVersion(ctx, collection); err != nil {
		return err
	}
	s.log(ctx, collection, record.Name).Info("field.deleted")
	return nil
}

func (s *fieldService) List(ctx context.Context, collectionID uuid.UUID) ([]*Field, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if collectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}
	if _, err := s.collections.GetByID(ctx, collectionID); err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return SortFields(fields), nil
}

// Reorder assigns field_order 1..n following fieldIDs, which must name every
// field of the collection exactly once.
func (s *fieldService) Reorder(ctx context.Context, collectionID uuid.UUID, fieldIDs []uuid.UUID) ([]*Field, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if collectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}

	unlock := s.locker.Lock(collectionID)
	defer unlock()

	collection, err := s.mutableCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	existing, err := s.fields.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if len(fieldIDs) != len(existing) {
		return nil, ErrReorderMismatch
	}
	byID := make(map[uuid.UUID]*Field, len(existing))
	for _, field := range existing {
		byID[field.ID] = field
	}

	now := s.now()
	seen := make(map[uuid.UUID]struct{}, len(fieldIDs))
	for _, id := range fieldIDs {
		if _, ok := byID[id]; !ok {
			return nil, ErrReorderMismatch
		}
		if _, dup := seen[id]; dup {
			return nil, ErrReorderMismatch
		}
		seen[id] = struct{}{}
	}
	for i, id := range fieldIDs {
		field := byID[id]
		if field.Order == i+1 {
			continue
		}
		field.Order = i + 1
		field.UpdatedAt = now
		if _, err := s.fields.Update(ctx, field); err != nil {
			return nil, err
		}
	}
	s.log(ctx, collection, "").Info("fields.reordered", "count", len(fieldIDs))

	fields, err := s.fields.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return SortFields(fields), nil
}

// Schema returns the collection, its ordered fields and the schema version as
// one snapshot.
func (s *fieldService) Schema(ctx context.Context, collectionID uuid.UUID) (*Schema, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}
	if collectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}
	collection, err := s.collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	ordered := SortFields(fields)
	collection.Fields = cloneFields(ordered)
	return &Schema{
		Collection: collection,
		Fields:     ordered,
		Version:    collection.SchemaVersion,
	}, nil
}

func (s *fieldService) mutableCollection(ctx context.Context, id uuid.UUID) (*Collection, error) {
	collection, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection.Managed {
		return nil, managedError(collection)
	}
	return collection, nil
}

// checkType records unknown or unavailable types and reports whether the type
// is known, so options can be checked against it.
func (s *fieldService) checkType(defErr *FieldDefinitionError, fieldType string, enabled plugins.Set) bool {
	resolution := s.resolver.Resolve(fieldType, enabled)
	switch resolution.Outcome {
	case plugins.OutcomeUnsupported:
		defErr.add("field_type", fmt.Errorf("%w: %q", ErrUnknownFieldType, fieldType))
		return false
	case plugins.OutcomeDegraded:
		defErr.add("field_type", fmt.Errorf("%w: %q needs plugin %q", ErrTypeUnavailable, fieldType, resolution.Plugin))
	}
	return true
}

func (s *fieldService) checkOptions(defErr *FieldDefinitionError, fieldType string, opts map[string]any) {
	if err := s.types.ValidateOptions(fieldType, opts); err != nil {
		defErr.add("field_options", fmt.Errorf("%w: %w", ErrInvalidFieldOptions, err))
	}
}

func (s *fieldService) bumpVersion(ctx context.Context, collection *Collection) error {
	collection.SchemaVersion++
	collection.UpdatedAt = s.now()
	updated, err := s.collections.Update(ctx, collection)
	if err != nil {
		return fmt.Errorf("bump schema version: %w", err)
	}
	collection.SchemaVersion = updated.SchemaVersion
	return nil
}

func (s *fieldService) log(ctx context.Context, collection *Collection, fieldName string) interfaces.Logger {
	_, logger := logging.Scoped(ctx, s.logger, logging.Scope{CollectionID: collection.ID, Collection: collection.Name, Field: fieldName})
	return logger
}

func (e *FieldDefinitionError) add(attribute string, err error) {
	e.Issues = append(e.Issues, Issue{Attribute: attribute, Err: err})
}

func hasFieldNamed(fields []*Field, name string) bool {
	for _, field := range fields {
		if field != nil && field.Name == name {
			return true
		}
	}
	return false
}

func bounds(fields []*Field) (maxOrder int, maxSequence int64) {
	for i, field := range fields {
		if i == 0 || field.Order > maxOrder {
			maxOrder = field.Order
		}
		if field.Sequence > maxSequence {
			maxSequence = field.Sequence
		}
	}
	return maxOrder, maxSequence
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
