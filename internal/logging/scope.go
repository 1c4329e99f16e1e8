package logging

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

const (
	fieldCommand        = "command"
	fieldCollectionID   = "collection_id"
	fieldCollectionName = "collection"
	fieldFieldID        = "field_id"
	fieldFieldName      = "field_name"
	fieldDocumentID     = "document_id"
)

// Scope names the command, collection, field and document an operation acts
// on. It travels on the context so loggers derived further down the call chain
// report the same target.
type Scope struct {
	Command      string
	CollectionID uuid.UUID
	Collection   string
	FieldID      uuid.UUID
	Field        string
	DocumentID   uuid.UUID
}

type scopeKey struct{}

// Merge overlays the non-empty members of next onto s.
func (s Scope) Merge(next Scope) Scope {
	if next.Command != "" {
		s.Command = next.Command
	}
	if next.CollectionID != uuid.Nil {
		s.CollectionID = next.CollectionID
	}
	if next.Collection != "" {
		s.Collection = next.Collection
	}
	if next.FieldID != uuid.Nil {
		s.FieldID = next.FieldID
	}
	if next.Field != "" {
		s.Field = next.Field
	}
	if next.DocumentID != uuid.Nil {
		s.DocumentID = next.DocumentID
	}
	return s
}

// IsZero reports whether no member is set.
func (s Scope) IsZero() bool {
	return s == Scope{}
}

// Fields renders the scope as structured log fields. Empty members are skipped.
func (s Scope) Fields() map[string]any {
	if s.IsZero() {
		return nil
	}
	fields := make(map[string]any, 6)
	if s.Command != "" {
		fields[fieldCommand] = s.Command
	}
	if s.CollectionID != uuid.Nil {
		fields[fieldCollectionID] = s.CollectionID.String()
	}
	if s.Collection != "" {
		fields[fieldCollectionName] = s.Collection
	}
	if s.FieldID != uuid.Nil {
		fields[fieldFieldID] = s.FieldID.String()
	}
	if s.Field != "" {
		fields[fieldFieldName] = s.Field
	}
	if s.DocumentID != uuid.Nil {
		fields[fieldDocumentID] = s.DocumentID.String()
	}
	return fields
}

// ScopeKeys lists the field keys a Scope can produce, in rendering order.
func ScopeKeys() []string {
	return []string{fieldCommand, fieldCollectionName, fieldCollectionID, fieldFieldName, fieldFieldID, fieldDocumentID}
}

// WithScope returns a context whose scope is the existing one merged with scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, ScopeFrom(ctx).Merge(scope))
}

// ScopeFrom returns the scope carried by ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	scope, _ := ctx.Value(scopeKey{}).(Scope)
	return scope
}

// Scoped narrows ctx to scope and returns it with logger bound to it.
func Scoped(ctx context.Context, logger interfaces.Logger, scope Scope) (context.Context, interfaces.Logger) {
	ctx = WithScope(ctx, scope)
	return ctx, Ensure(logger).WithContext(ctx)
}
