package plugins

import (
	"context"
	"sync"
)

// State reports which editor plugins are currently enabled. Implementations are
// read-only from the engine's point of view.
type State interface {
	EnabledEditorPlugins(ctx context.Context) ([]string, error)
}

// Enabled queries the state collaborator and returns the result as a Set. A nil
// state means no optional plugin is enabled.
func Enabled(ctx context.Context, state State) (Set, error) {
	if state == nil {
		return Set{}, nil
	}
	names, err := state.EnabledEditorPlugins(ctx)
	if err != nil {
		return nil, err
	}
	return NewSet(names...), nil
}

// StaticState is an in-memory State whose plugin flags can be toggled at runtime.
type StaticState struct {
	mu      sync.RWMutex
	enabled Set
}

// NewStaticState creates a state with the supplied plugins enabled.
func NewStaticState(names ...string) *StaticState {
	return &StaticState{enabled: NewSet(names...)}
}

// Enable turns a plugin on.
func (s *StaticState) Enable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key := normalizeName(name); key != "" {
		s.enabled[key] = struct{}{}
	}
}

// Disable turns a plugin off.
func (s *StaticState) Disable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, normalizeName(name))
}

// EnabledEditorPlugins satisfies State.
func (s *StaticState) EnabledEditorPlugins(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled.Names(), nil
}
