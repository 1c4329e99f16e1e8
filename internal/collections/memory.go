package collections

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryCollectionRepository is an in-memory implementation for scaffolding and tests.
type MemoryCollectionRepository struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*Collection
	nameIndex map[string]uuid.UUID
}

// NewMemoryCollectionRepository creates an empty in-memory collection repository.
func NewMemoryCollectionRepository() *MemoryCollectionRepository {
	return &MemoryCollectionRepository{
		records:   make(map[uuid.UUID]*Collection),
		nameIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryCollectionRepository) Create(_ context.Context, record *Collection) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.nameIndex[record.Name]; ok && existing != record.ID {
		return nil, ErrDuplicateName
	}
	copied := cloneCollection(record)
	copied.Fields = nil
	m.records[copied.ID] = copied
	m.nameIndex[copied.Name] = copied.ID
	return cloneCollection(copied), nil
}

func (m *MemoryCollectionRepository) Update(_ context.Context, record *Collection) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: resourceCollection, Key: record.ID.String()}
	}
	copied := cloneCollection(record)
	copied.Fields = nil
	if current.Name != copied.Name {
		delete(m.nameIndex, current.Name)
		m.nameIndex[copied.Name] = copied.ID
	}
	m.records[copied.ID] = copied
	return cloneCollection(copied), nil
}

func (m *MemoryCollectionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: resourceCollection, Key: id.String()}
	}
	delete(m.nameIndex, current.Name)
	delete(m.records, id)
	return nil
}

func (m *MemoryCollectionRepository) GetByID(_ context.Context, id uuid.UUID) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: resourceCollection, Key: id.String()}
	}
	return cloneCollection(rec), nil
}

func (m *MemoryCollectionRepository) GetByName(_ context.Context, name string) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.nameIndex[name]
	if !ok {
		return nil, &NotFoundError{Resource: resourceCollection, Key: name}
	}
	return cloneCollection(m.records[id]), nil
}

// List returns collections sorted by name.
func (m *MemoryCollectionRepository) List(_ context.Context) ([]*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Collection, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneCollection(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MemoryFieldRepository stores field definitions in-memory.
type MemoryFieldRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Field
}

// NewMemoryFieldRepository constructs the repository.
func NewMemoryFieldRepository() *MemoryFieldRepository {
	return &MemoryFieldRepository{records: make(map[uuid.UUID]*Field)}
}

func (m *MemoryFieldRepository) Create(_ context.Context, record *Field) (*Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneField(record)
	m.records[copied.ID] = copied
	return cloneField(copied), nil
}

func (m *MemoryFieldRepository) Update(_ context.Context, record *Field) (*Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return nil, &NotFoundError{Resource: resourceField, Key: record.ID.String()}
	}
	copied := cloneField(record)
	m.records[copied.ID] = copied
	return cloneField(copied), nil
}

func (m *MemoryFieldRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return &NotFoundError{Resource: resourceField, Key: id.String()}
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryFieldRepository) GetByID(_ context.Context, id uuid.UUID) (*Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: resourceField, Key: id.String()}
	}
	return cloneField(rec), nil
}

// ListByCollection returns the fields of a collection in schema order.
func (m *MemoryFieldRepository) ListByCollection(_ context.Context, collectionID uuid.UUID) ([]*Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Field{}
	for _, rec := range m.records {
		if rec.CollectionID == collectionID {
			out = append(out, cloneField(rec))
		}
	}
	return SortFields(out), nil
}

func (m *MemoryFieldRepository) DeleteByCollection(_ context.Context, collectionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.records {
		if rec.CollectionID == collectionID {
			delete(m.records, id)
		}
	}
	return nil
}
