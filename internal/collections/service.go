package collections

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
	"github.com/google/uuid"
)

// Service is the collection registry.
type Service interface {
	Create(ctx context.Context, req CreateCollectionRequest) (*Collection, error)
	Update(ctx context.Context, req UpdateCollectionRequest) (*Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Collection, error)
	GetByName(ctx context.Context, name string) (*Collection, error)
	List(ctx context.Context) ([]*Collection, error)
	SyncManaged(ctx context.Context, definitions []ManagedDefinition) (*SyncResult, error)
}

// CreateCollectionRequest captures the fields required to create a collection.
type CreateCollectionRequest struct {
	Name        string
	DisplayName string
	Description string
}

// UpdateCollectionRequest captures a collection patch. Name is accepted only so
// that attempts to rename can be refused explicitly.
type UpdateCollectionRequest struct {
	ID          uuid.UUID
	Name        *string
	DisplayName *string
	Description *string
}

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidName reports whether name is a valid machine key for a collection or field.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// NewService constructs the collection registry.
func NewService(collections CollectionRepository, fields FieldRepository, opts ...Option) Service {
	return &service{
		collections: collections,
		fields:      fields,
		options:     applyOptions(opts),
	}
}

type service struct {
	collections CollectionRepository
	fields      FieldRepository
	options
}

func (s *service) Create(ctx context.Context, req CreateCollectionRequest) (*Collection, error) {
	if s == nil || s.collections == nil {
		return nil, ErrServiceUnavailable
	}

	name := strings.TrimSpace(req.Name)
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	unlock := s.locker.Lock(registryLockKey)
	defer unlock()

	if err := s.ensureNameAvailable(ctx, name); err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = name
	}
	now := s.now()
	record := &Collection{
		ID:            s.id(),
		Name:          name,
		DisplayName:   displayName,
		Description:   strings.TrimSpace(req.Description),
		SchemaVersion: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.collections.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx, created).Info("collection.created")
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdateCollectionRequest) (*Collection, error) {
	if s == nil || s.collections == nil {
		return nil, ErrServiceUnavailable
	}
	if req.ID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}

	unlock := s.locker.Lock(req.ID)
	defer unlock()

	record, err := s.collections.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if record.Managed {
		return nil, managedError(record)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != record.Name {
		return nil, &ImmutableError{Resource: resourceCollection, Attribute: "name"}
	}

	if req.DisplayName != nil {
		if trimmed := strings.TrimSpace(*req.DisplayName); trimmed != "" {
			record.DisplayName = trimmed
		}
	}
	if req.Description != nil {
		record.Description = strings.TrimSpace(*req.Description)
	}
	record.UpdatedAt = s.now()

	updated, err := s.collections.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx, updated).Info("collection.updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.collections == nil || s.fields == nil {
		return ErrServiceUnavailable
	}
	if id == uuid.Nil {
		return ErrCollectionIDRequired
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	record, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Managed {
		return managedError(record)
	}
	if s.counter != nil {
		count, err := s.counter.CountByCollection(ctx, id)
		if err != nil {
			return fmt.Errorf("count collection content: %w", err)
		}
		if count > 0 {
			s.log(ctx, record).Warn("collection.delete.refused", "documents", count)
			return fmt.Errorf("%w: %q has %d document(s)", ErrCollectionHasContent, record.Name, count)
		}
	}

	if err := s.fields.DeleteByCollection(ctx, id); err != nil {
		return err
	}
	if err := s.collections.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx, record).Info("collection.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Collection, error) {
	if s == nil || s.collections == nil {
		return nil, ErrServiceUnavailable
	}
	if id == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}
	record, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withFields(ctx, record)
}

func (s *service) GetByName(ctx context.Context, name string) (*Collection, error) {
	if s == nil || s.collections == nil {
		return nil, ErrServiceUnavailable
	}
	record, err := s.collections.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.withFields(ctx, record)
}

func (s *service) List(ctx context.Context) ([]*Collection, error) {
	if s == nil || s.collections == nil {
		return nil, ErrServiceUnavailable
	}
	return s.collections.List(ctx)
}

func (s *service) withFields(ctx context.Context, record *Collection) (*Collection, error) {
	if s.fields == nil {
		return record, nil
	}
	fields, err := s.fields.ListByCollection(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Fields = SortFields(fields)
	return record, nil
}

func (s *service) ensureNameAvailable(ctx context.Context, name string) error {
	existing, err := s.collections.GetByName(ctx, name)
	if err == nil && existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	var notFound *NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

func (s *service) log(ctx context.Context, record *Collection) interfaces.Logger {
	scope := logging.Scope{}
	if record != nil {
		scope = logging.Scope{CollectionID: record.ID, Collection: record.Name}
	}
	_, logger := logging.Scoped(ctx, s.logger, scope)
	return logger
}

func managedError(record *Collection) error {
	return fmt.Errorf("%w: %q", ErrCollectionManaged, record.Name)
}
