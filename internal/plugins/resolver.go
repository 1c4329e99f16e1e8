package plugins

import (
	"sort"
	"strings"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
)

// Outcome tags the result of resolving a field type against enabled plugins.
type Outcome int

const (
	OutcomeUsable Outcome = iota
	OutcomeDegraded
	OutcomeUnsupported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUsable:
		return "usable"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Set is the set of currently enabled editor plugins.
type Set map[string]struct{}

// NewSet builds a set from plugin names, normalising case and whitespace.
func NewSet(names ...string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		if key := normalizeName(name); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Has reports whether the plugin is enabled.
func (s Set) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s[normalizeName(name)]
	return ok
}

// Names returns the enabled plugins sorted alphabetically.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolution is the tagged answer produced by Resolve.
type Resolution struct {
	Requested string
	Outcome   Outcome
	// Type is the editor type to present: the requested type when usable, the
	// fallback when degraded, empty when unsupported.
	Type     string
	Fallback string
	Plugin   string
}

func (r Resolution) Usable() bool   { return r.Outcome == OutcomeUsable }
func (r Resolution) Degraded() bool { return r.Outcome == OutcomeDegraded }

// TypeCatalog is the lookup surface the resolver needs from a field type registry.
type TypeCatalog interface {
	Describe(key string) (fieldtypes.Descriptor, error)
	Keys() []string
}

// Resolver decides which field types are editable given the enabled plugins.
// It holds no plugin state of its own.
type Resolver struct {
	types TypeCatalog
}

// NewResolver constructs a resolver backed by the supplied catalog.
func NewResolver(types TypeCatalog) *Resolver {
	if types == nil {
		types = fieldtypes.DefaultRegistry()
	}
	return &Resolver{types: types}
}

// Resolve maps a field type to an editable type. It never alters stored field definitions.
func (r *Resolver) Resolve(fieldType string, enabled Set) Resolution {
	requested := fieldtypes.NormalizeKey(fieldType)
	res := Resolution{Requested: requested}

	desc, err := r.types.Describe(requested)
	if err != nil {
		res.Outcome = OutcomeUnsupported
		return res
	}
	if !desc.IsRichText() {
		res.Outcome = OutcomeUsable
		res.Type = desc.Key
		return res
	}

	res.Plugin = normalizeName(desc.RichText.Plugin)
	res.Fallback = desc.Fallback
	if res.Fallback == "" {
		res.Fallback = fieldtypes.TypeTextarea
	}
	if enabled.Has(res.Plugin) {
		res.Outcome = OutcomeUsable
		res.Type = desc.Key
		return res
	}
	res.Outcome = OutcomeDegraded
	res.Type = res.Fallback
	return res
}

// Offerable lists the type keys that may be chosen for a new field.
func (r *Resolver) Offerable(enabled Set) []string {
	out := []string{}
	for _, key := range r.types.Keys() {
		if r.Resolve(key, enabled).Usable() {
			out = append(out, key)
		}
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
