package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/internal/richtext"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
	"github.com/google/uuid"
)

// Service saves and reads content documents against their collection schema.
type Service interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	Read(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context, collectionID uuid.UUID) ([]*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SchemaProvider returns the current schema snapshot of a collection.
type SchemaProvider interface {
	Schema(ctx context.Context, collectionID uuid.UUID) (*collections.Schema, error)
}

// SaveRequest creates a document when DocumentID is nil and updates it
// otherwise. A non-zero SchemaVersion is the version the editor form was built
// from; the save is refused when the schema has moved since.
type SaveRequest struct {
	CollectionID  uuid.UUID
	DocumentID    uuid.UUID
	SchemaVersion int
	Payload       Payload
}

// SaveResult is a persisted document plus the non-blocking issues of the save.
type SaveResult struct {
	Document *Document
	Created  bool
	Issues   Issues
	Hints    map[string]EditorHint
}

type IDGenerator func() uuid.UUID

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocker shares the per-collection lock registry used by field mutations.
func WithLocker(locker *collections.Locker) ServiceOption {
	return func(s *service) {
		if locker != nil {
			s.locker = locker
		}
	}
}

func WithPluginState(state plugins.State) ServiceOption {
	return func(s *service) {
		s.plugins = state
	}
}

func WithTypeRegistry(registry *fieldtypes.Registry) ServiceOption {
	return func(s *service) {
		if registry != nil {
			s.types = registry
		}
	}
}

// WithRenderer sets the rich-text renderer used for read previews.
func WithRenderer(renderer *richtext.Renderer) ServiceOption {
	return func(s *service) {
		s.renderer = renderer
	}
}

// NewService constructs the document service.
func NewService(repo DocumentRepository, schemas SchemaProvider, opts ...ServiceOption) Service {
	svc := &service{
		repo:     repo,
		schemas:  schemas,
		now:      func() time.Time { return time.Now().UTC() },
		id:       uuid.New,
		logger:   logging.NoOp(),
		locker:   collections.NewLocker(),
		types:    fieldtypes.DefaultRegistry(),
		renderer: richtext.NewRenderer(richtext.Options{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	svc.validator = NewValidator(svc.types)
	svc.mapper = NewMapper(svc.validator, svc.renderer)
	return svc
}

type service struct {
	repo      DocumentRepository
	schemas   SchemaProvider
	now       func() time.Time
	id        IDGenerator
	logger    interfaces.Logger
	locker    *collections.Locker
	plugins   plugins.State
	types     *fieldtypes.Registry
	renderer  *richtext.Renderer
	validator *Validator
	mapper    *Mapper
}

func (s *service) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if s == nil || s.repo == nil || s.schemas == nil {
		return nil, ErrServiceUnavailable
	}
	if req.CollectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}

	schema, err := s.schemas.Schema(ctx, req.CollectionID)
	if err != nil {
		return nil, err
	}
	var logger interfaces.Logger
	ctx, logger = logging.Scoped(ctx, s.logger, logging.Scope{
		CollectionID: schema.Collection.ID,
		Collection:   schema.Collection.Name,
		DocumentID:   req.DocumentID,
	})
	if req.SchemaVersion != 0 && req.SchemaVersion != schema.Version {
		logger.Warn("document.save.schema_changed", "expected", req.SchemaVersion, "actual", schema.Version)
		return nil, &SchemaChangedError{Expected: req.SchemaVersion, Actual: schema.Version}
	}

	var existing *Document
	if req.DocumentID != uuid.Nil {
		existing, err = s.repo.GetByID(ctx, req.DocumentID)
		if err != nil {
			return nil, err
		}
		if existing.CollectionID != req.CollectionID {
			return nil, &NotFoundError{Resource: "document", Key: req.DocumentID.String()}
		}
	}

	enabled, err := plugins.Enabled(ctx, s.plugins)
	if err != nil {
		return nil, fmt.Errorf("resolve enabled plugins: %w", err)
	}

	payload := req.Payload
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Slug = strings.TrimSpace(payload.Slug)
	payload.Status = strings.TrimSpace(payload.Status)

	issues := s.validator.ValidateCore(payload)
	var existingData map[string]any
	if existing != nil {
		existingData = existing.Data
	}
	mapped := s.mapper.Map(schema, existingData, payload.Fields, enabled)
	issues = append(issues, mapped.Issues...)

	if !issues.Has(FieldSlug, CodeSlugInvalid) {
		taken, err := s.slugTaken(ctx, req.CollectionID, payload.Slug, req.DocumentID)
		if err != nil {
			return nil, err
		}
		if taken {
			issues = append(issues, inputIssue(FieldSlug, CodeSlugExists, "slug %q is already used in this collection", payload.Slug))
		}
	}

	if issues.Blocking() {
		if integrity := issues.Integrity(); len(integrity) > 0 {
			logger.Error("document.save.schema_inconsistent", "issues", len(integrity))
		}
		logger.Warn("document.save.refused", "errors", len(issues.Errors()))
		return nil, &ValidationError{Issues: issues}
	}

	unlock := s.locker.RLock(req.CollectionID)
	defer unlock()

	current, err := s.schemas.Schema(ctx, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if current.Version != schema.Version {
		logger.Warn("document.save.schema_changed", "expected", schema.Version, "actual", current.Version)
		return nil, &SchemaChangedError{Expected: schema.Version, Actual: current.Version}
	}

	now := s.now()
	result := &SaveResult{Issues: issues, Hints: mapped.Hints}
	if existing == nil {
		status := payload.Status
		if status == "" {
			status = StatusDraft
		}
		record := &Document{
			ID:            s.id(),
			CollectionID:  req.CollectionID,
			Title:         payload.Title,
			Slug:          payload.Slug,
			Status:        status,
			Data:          mapped.Data,
			SchemaVersion: schema.Version,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		result.Document = created
		result.Created = true
		logger.Info("document.created", "document_id", created.ID, "warnings", len(issues.Warnings()))
		return result, nil
	}

	existing.Title = payload.Title
	existing.Slug = payload.Slug
	if payload.Status != "" {
		existing.Status = payload.Status
	}
	existing.Data = mapped.Data
	existing.SchemaVersion = schema.Version
	existing.UpdatedAt = now
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	result.Document = updated
	logger.Info("document.updated", "document_id", updated.ID, "warnings", len(issues.Warnings()))
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if id == uuid.Nil {
		return nil, ErrDocumentIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

// Read returns the document through its collection's current schema.
func (s *service) Read(ctx context.Context, id uuid.UUID) (*View, error) {
	if s == nil || s.repo == nil || s.schemas == nil {
		return nil, ErrServiceUnavailable
	}
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	schema, err := s.schemas.Schema(ctx, doc.CollectionID)
	if err != nil {
		return nil, err
	}
	enabled, err := plugins.Enabled(ctx, s.plugins)
	if err != nil {
		return nil, fmt.Errorf("resolve enabled plugins: %w", err)
	}
	view := s.mapper.Read(schema, doc, enabled)
	return &view, nil
}

func (s *service) List(ctx context.Context, collectionID uuid.UUID) ([]*Document, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if collectionID == uuid.Nil {
		return nil, ErrCollectionIDRequired
	}
	return s.repo.ListByCollection(ctx, collectionID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.repo == nil {
		return ErrServiceUnavailable
	}
	if id == uuid.Nil {
		return ErrDocumentIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_, logger := logging.Scoped(ctx, s.logger, logging.Scope{DocumentID: id})
	logger.Info("document.deleted")
	return nil
}

func (s *service) slugTaken(ctx context.Context, collectionID uuid.UUID, slug string, self uuid.UUID) (bool, error) {
	found, err := s.repo.GetBySlug(ctx, collectionID, slug)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return false, nil
		}
		return false, err
	}
	return found != nil && found.ID != self, nil
}
