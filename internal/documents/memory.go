package documents

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryDocumentRepository is an in-memory implementation for scaffolding and tests.
type MemoryDocumentRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Document
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{records: make(map[uuid.UUID]*Document)}
}

func (m *MemoryDocumentRepository) Create(_ context.Context, record *Document) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneDocument(record)
	m.records[copied.ID] = copied
	return cloneDocument(copied), nil
}

func (m *MemoryDocumentRepository) Update(_ context.Context, record *Document) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "document", Key: record.ID.String()}
	}
	copied := cloneDocument(record)
	m.records[copied.ID] = copied
	return cloneDocument(copied), nil
}

func (m *MemoryDocumentRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return &NotFoundError{Resource: "document", Key: id.String()}
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryDocumentRepository) GetByID(_ context.Context, id uuid.UUID) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "document", Key: id.String()}
	}
	return cloneDocument(rec), nil
}

func (m *MemoryDocumentRepository) GetBySlug(_ context.Context, collectionID uuid.UUID, slug string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.CollectionID == collectionID && rec.Slug == slug {
			return cloneDocument(rec), nil
		}
	}
	return nil, &NotFoundError{Resource: "document", Key: slug}
}

// ListByCollection returns documents ordered by creation time.
func (m *MemoryDocumentRepository) ListByCollection(_ context.Context, collectionID uuid.UUID) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Document{}
	for _, rec := range m.records {
		if rec.CollectionID == collectionID {
			out = append(out, cloneDocument(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryDocumentRepository) CountByCollection(_ context.Context, collectionID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if rec.CollectionID == collectionID {
			count++
		}
	}
	return count, nil
}
