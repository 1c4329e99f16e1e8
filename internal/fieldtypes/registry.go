package fieldtypes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Storage identifies the primitive shape a field value takes inside a document data map.
type Storage string

const (
	StorageString     Storage = "string"
	StorageNumber     Storage = "number"
	StorageBoolean    Storage = "boolean"
	StorageDate       Storage = "date"
	StorageStringList Storage = "string_list"
	StorageObject     Storage = "object"
)

// OptionsPolicy states whether field_options must be supplied for a type.
type OptionsPolicy string

const (
	OptionsNone     OptionsPolicy = "none"
	OptionsOptional OptionsPolicy = "optional"
	OptionsRequired OptionsPolicy = "required"
)

// RichText describes the editor plugin backing a rich-text family member.
type RichText struct {
	Plugin string
	Format string
}

// Descriptor captures the storage and validation rules implied by a field type.
type Descriptor struct {
	Key           string
	Label         string
	Storage       Storage
	Options       OptionsPolicy
	OptionsSchema map[string]any
	SelectFamily  bool
	RichText      *RichText
	// Fallback is the plain type used when the rich-text plugin is unavailable.
	Fallback string
}

// IsRichText reports whether the type belongs to the rich-text family.
func (d Descriptor) IsRichText() bool {
	return d.RichText != nil && strings.TrimSpace(d.RichText.Plugin) != ""
}

// ErrFieldTypeUnknown is returned when a key is not part of the registry.
var ErrFieldTypeUnknown = errors.New("fieldtypes: field type unknown")

// UnknownTypeError carries the key that failed lookup.
type UnknownTypeError struct {
	Key string
}

func (e *UnknownTypeError) Error() string {
	if e == nil || e.Key == "" {
		return ErrFieldTypeUnknown.Error()
	}
	return fmt.Sprintf("%s: %q", ErrFieldTypeUnknown.Error(), e.Key)
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrFieldTypeUnknown
}

// Registry is an immutable catalog of field type descriptors.
type Registry struct {
	descriptors map[string]Descriptor
	order       []string

	compiled sync.Map // key -> *jsonschema.Schema
}

// NewRegistry builds a registry from the supplied descriptors. Later entries
// replace earlier ones sharing the same key.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{
		descriptors: make(map[string]Descriptor, len(descriptors)),
	}
	for _, desc := range descriptors {
		key := NormalizeKey(desc.Key)
		if key == "" {
			continue
		}
		desc.Key = key
		if desc.Options == "" {
			desc.Options = OptionsOptional
		}
		if _, exists := r.descriptors[key]; !exists {
			r.order = append(r.order, key)
		}
		r.descriptors[key] = desc
	}
	return r
}

// DefaultRegistry returns a registry holding the built-in field types.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtin()...)
}

// NormalizeKey trims and lowercases a type key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Describe resolves the descriptor for a type key.
func (r *Registry) Describe(key string) (Descriptor, error) {
	if r == nil {
		return Descriptor{}, &UnknownTypeError{Key: key}
	}
	desc, ok := r.descriptors[NormalizeKey(key)]
	if !ok {
		return Descriptor{}, &UnknownTypeError{Key: key}
	}
	return desc, nil
}

// Keys lists registered type keys in registration order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// RichTextFamily lists the rich-text keys sorted alphabetically.
func (r *Registry) RichTextFamily() []string {
	if r == nil {
		return nil
	}
	out := []string{}
	for _, key := range r.order {
		if r.descriptors[key].IsRichText() {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Registry) compiledSchema(desc Descriptor) (*jsonschema.Schema, error) {
	if cached, ok := r.compiled.Load(desc.Key); ok {
		return cached.(*jsonschema.Schema), nil
	}
	compiled, err := compileSchema(desc.Key, desc.OptionsSchema)
	if err != nil {
		return nil, err
	}
	r.compiled.Store(desc.Key, compiled)
	return compiled, nil
}
