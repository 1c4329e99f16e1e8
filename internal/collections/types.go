package collections

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Collection is a named content type made of ordered fields.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID            uuid.UUID `bun:",pk,type:uuid"                          json:"id"`
	Name          string    `bun:"name,notnull,unique"                    json:"name"`
	DisplayName   string    `bun:"display_name,notnull"                   json:"display_name"`
	Description   string    `bun:"description"                            json:"description,omitempty"`
	Managed       bool      `bun:"managed,notnull,default:false"          json:"managed"`
	SchemaVersion int       `bun:"schema_version,notnull,default:1"       json:"schema_version"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Fields []*Field `bun:"rel:has-many,join:id=collection_id" json:"fields,omitempty"`
}

// Field is one typed slot in a collection schema.
type Field struct {
	bun.BaseModel `bun:"table:collection_fields,alias:cf"`

	ID           uuid.UUID      `bun:",pk,type:uuid"                      json:"id"`
	CollectionID uuid.UUID      `bun:"collection_id,notnull,type:uuid"    json:"collection_id"`
	Name         string         `bun:"field_name,notnull"                 json:"field_name"`
	Label        string         `bun:"field_label,notnull"                json:"field_label"`
	Type         string         `bun:"field_type,notnull"                 json:"field_type"`
	Options      map[string]any `bun:"field_options,type:jsonb"           json:"field_options,omitempty"`
	Order        int            `bun:"field_order,notnull,default:0"      json:"field_order"`
	Sequence     int64          `bun:"sequence,notnull,default:0"         json:"sequence"`
	IsRequired   bool           `bun:"is_required,notnull,default:false"  json:"is_required"`
	IsSearchable bool           `bun:"is_searchable,notnull,default:false" json:"is_searchable"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Schema is a read snapshot of a collection and its ordered fields at a given
// schema version.
type Schema struct {
	Collection *Collection
	Fields     []*Field
	Version    int
}

// Field returns the schema field with the given name.
func (s *Schema) Field(name string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	for _, field := range s.Fields {
		if field != nil && field.Name == name {
			return field, true
		}
	}
	return nil, false
}

// Has reports whether name belongs to the current schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// SortFields returns a copy of fields ordered by field_order, ties broken by
// creation sequence.
func SortFields(fields []*Field) []*Field {
	out := make([]*Field, 0, len(fields))
	for _, field := range fields {
		if field != nil {
			out = append(out, field)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// SearchableFields lists the fields flagged for the external search indexer.
func SearchableFields(schema *Schema) []*Field {
	if schema == nil {
		return nil
	}
	out := []*Field{}
	for _, field := range schema.Fields {
		if field != nil && field.IsSearchable {
			out = append(out, field)
		}
	}
	return out
}

func cloneCollection(src *Collection) *Collection {
	if src == nil {
		return nil
	}
	copied := *src
	if len(src.Fields) > 0 {
		copied.Fields = make([]*Field, len(src.Fields))
		for i, field := range src.Fields {
			copied.Fields[i] = cloneField(field)
		}
	}
	return &copied
}

func cloneField(src *Field) *Field {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Options = cloneMap(src.Options)
	return &copied
}

func cloneFields(src []*Field) []*Field {
	out := make([]*Field, 0, len(src))
	for _, field := range src {
		if field != nil {
			out = append(out, cloneField(field))
		}
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// normalizeOptions converts options to the shape they have after a JSON round
// trip so stored and submitted options compare equal. Empty options become nil.
func normalizeOptions(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	encoded, err := json.Marshal(src)
	if err != nil {
		return cloneMap(src)
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return cloneMap(src)
	}
	return out
}
