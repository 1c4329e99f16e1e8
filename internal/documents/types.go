package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Document lifecycle tokens. Transitions belong to the workflow layer; the
// engine only checks membership.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
	StatusScheduled = "scheduled"
)

var allowedStatuses = map[string]struct{}{
	StatusDraft:     {},
	StatusPublished: {},
	StatusArchived:  {},
	StatusScheduled: {},
}

// Document is one content record of a collection. Data is keyed by field name
// and may hold orphaned keys of fields that were deleted from the schema.
type Document struct {
	bun.BaseModel `bun:"table:content_documents,alias:doc"`

	ID            uuid.UUID      `bun:",pk,type:uuid"                     json:"id"`
	CollectionID  uuid.UUID      `bun:"collection_id,notnull,type:uuid"   json:"collection_id"`
	Title         string         `bun:"title,notnull"                     json:"title"`
	Slug          string         `bun:"slug,notnull"                      json:"slug"`
	Status        string         `bun:"status,notnull,default:'draft'"    json:"status"`
	Data          map[string]any `bun:"data,type:jsonb,notnull"           json:"data"`
	SchemaVersion int            `bun:"schema_version,notnull,default:1"  json:"schema_version"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Payload is a submitted edit. Core columns have dedicated slots; Fields holds
// the dynamic field values keyed by field name.
type Payload struct {
	Title  string
	Slug   string
	Status string
	Fields map[string]any
}

func cloneDocument(src *Document) *Document {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Data = cloneMap(src.Data)
	return &copied
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
