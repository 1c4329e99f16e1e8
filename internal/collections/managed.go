package collections

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/identity"
)

// ManagedDefinition is a collection definition owned by external configuration.
type ManagedDefinition struct {
	Name        string
	DisplayName string
	Description string
	Fields      []ManagedField
}

// ManagedField is one fixed field of a managed collection. Order defaults to
// the position in the definition when nil.
type ManagedField struct {
	Name       string
	Label      string
	Type       string
	Options    map[string]any
	Order      *int
	Required   bool
	Searchable bool
}

// SyncResult lists collection names by what the sync did to them.
type SyncResult struct {
	Created   []string
	Updated   []string
	Unchanged []string
}

// SyncManaged upserts managed collections and their fields straight through the
// repositories. It is the only write path for managed collections. A failing
// definition is reported in the joined error without stopping the others.
func (s *service) SyncManaged(ctx context.Context, definitions []ManagedDefinition) (*SyncResult, error) {
	if s == nil || s.collections == nil || s.fields == nil {
		return nil, ErrServiceUnavailable
	}

	result := &SyncResult{}
	var errs []error
	for _, def := range definitions {
		outcome, err := s.syncDefinition(ctx, def)
		if err != nil {
			s.log(ctx, nil).Error("managed.sync.failed", "collection", def.Name, "error", err)
			errs = append(errs, fmt.Errorf("managed collection %q: %w", def.Name, err))
			continue
		}
		switch outcome {
		case syncCreated:
			result.Created = append(result.Created, def.Name)
		case syncUpdated:
			result.Updated = append(result.Updated, def.Name)
		default:
			result.Unchanged = append(result.Unchanged, def.Name)
		}
	}
	return result, errors.Join(errs...)
}

type syncOutcome int

const (
	syncUnchanged syncOutcome = iota
	syncUpdated
	syncCreated
)

func (s *service) syncDefinition(ctx context.Context, def ManagedDefinition) (syncOutcome, error) {
	name := strings.TrimSpace(def.Name)
	if !ValidName(name) {
		return syncUnchanged, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := validateManagedFields(def.Fields); err != nil {
		return syncUnchanged, err
	}

	unlockRegistry := s.locker.Lock(registryLockKey)
	defer unlockRegistry()

	now := s.now()
	outcome := syncUnchanged
	collection, err := s.collections.GetByName(ctx, name)
	switch {
	case err == nil && !collection.Managed:
		return syncUnchanged, fmt.Errorf("%w: %q is user-defined", ErrDuplicateName, name)
	case err == nil:
	case isNotFound(err):
		collection, err = s.collections.Create(ctx, &Collection{
			ID:            identity.CollectionUUID(name),
			Name:          name,
			DisplayName:   displayNameOr(def.DisplayName, name),
			Description:   strings.TrimSpace(def.Description),
			Managed:       true,
			SchemaVersion: 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return syncUnchanged, err
		}
		outcome = syncCreated
	default:
		return syncUnchanged, err
	}

	unlock := s.locker.Lock(collection.ID)
	defer unlock()

	metaChanged := false
	if display := displayNameOr(def.DisplayName, name); display != collection.DisplayName {
		collection.DisplayName = display
		metaChanged = true
	}
	if description := strings.TrimSpace(def.Description); description != collection.Description {
		collection.Description = description
		metaChanged = true
	}

	schemaChanged, fieldsTouched, err := s.syncFields(ctx, collection, def.Fields)
	if err != nil {
		return syncUnchanged, err
	}

	if schemaChanged && outcome != syncCreated {
		collection.SchemaVersion++
	}
	if metaChanged || schemaChanged {
		collection.UpdatedAt = now
		if _, err := s.collections.Update(ctx, collection); err != nil {
			return syncUnchanged, err
		}
	}
	if outcome == syncUnchanged && (metaChanged || schemaChanged || fieldsTouched) {
		outcome = syncUpdated
	}
	s.log(ctx, collection).Info("managed.synced", "schema_changed", schemaChanged, "schema_version", collection.SchemaVersion)
	return outcome, nil
}

// syncFields reconciles stored fields with the definition. It reports whether a
// validation-relevant attribute changed and whether any field row was written.
func (s *service) syncFields(ctx context.Context, collection *Collection, defs []ManagedField) (schemaChanged, touched bool, err error) {
	existing, err := s.fields.ListByCollection(ctx, collection.ID)
	if err != nil {
		return false, false, err
	}
	byName := make(map[string]*Field, len(existing))
	_, maxSequence := bounds(existing)
	for _, field := range existing {
		byName[field.Name] = field
	}

	now := s.now()
	wanted := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		name := strings.TrimSpace(def.Name)
		wanted[name] = struct{}{}
		fieldType := fieldtypes.NormalizeKey(def.Type)
		if _, err := s.types.Describe(fieldType); err != nil {
			s.log(ctx, collection).Warn("managed.field.unknown_type", "field_name", name, "field_type", fieldType)
		}
		order := i + 1
		if def.Order != nil {
			order = *def.Order
		}
		label := strings.TrimSpace(def.Label)
		if label == "" {
			label = name
		}
		options := normalizeOptions(def.Options)

		current, ok := byName[name]
		if !ok {
			maxSequence++
			if _, err := s.fields.Create(ctx, &Field{
				ID:           identity.FieldUUID(collection.ID, name),
				CollectionID: collection.ID,
				Name:         name,
				Label:        label,
				Type:         fieldType,
				Options:      options,
				Order:        order,
				Sequence:     maxSequence,
				IsRequired:   def.Required,
				IsSearchable: def.Searchable,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return false, false, err
			}
			schemaChanged, touched = true, true
			continue
		}

		relevant := current.Type != fieldType ||
			current.IsRequired != def.Required ||
			!reflect.DeepEqual(normalizeOptions(current.Options), options)
		cosmetic := current.Label != label ||
			current.Order != order ||
			current.IsSearchable != def.Searchable
		if !relevant && !cosmetic {
			continue
		}
		current.Type = fieldType
		current.Options = options
		current.IsRequired = def.Required
		current.Label = label
		current.Order = order
		current.IsSearchable = def.Searchable
		current.UpdatedAt = now
		if _, err := s.fields.Update(ctx, current); err != nil {
			return false, false, err
		}
		touched = true
		schemaChanged = schemaChanged || relevant
	}

	for _, field := range existing {
		if _, ok := wanted[field.Name]; ok {
			continue
		}
		if err := s.fields.Delete(ctx, field.ID); err != nil {
			return false, false, err
		}
		schemaChanged, touched = true, true
	}
	return schemaChanged, touched, nil
}

func validateManagedFields(fields []ManagedField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if !ValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateFieldName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func displayNameOr(displayName, fallback string) string {
	if trimmed := strings.TrimSpace(displayName); trimmed != "" {
		return trimmed
	}
	return fallback
}
