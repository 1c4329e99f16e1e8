package collections

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrServiceUnavailable      = errors.New("collections: service unavailable")
	ErrCollectionIDRequired    = errors.New("collections: collection id required")
	ErrFieldIDRequired         = errors.New("collections: field id required")
	ErrCollectionNotFound      = errors.New("collections: collection not found")
	ErrFieldNotFound           = errors.New("collections: field not found")
	ErrCollectionManaged       = errors.New("collections: collection is managed by configuration")
	ErrInvalidName             = errors.New("collections: collection name must match [a-z0-9_]+")
	ErrDuplicateName           = errors.New("collections: collection name already exists")
	ErrCollectionHasContent    = errors.New("collections: collection still has content documents")
	ErrInvalidFieldName        = errors.New("collections: field name must match [a-z0-9_]+")
	ErrDuplicateFieldName      = errors.New("collections: field name already exists in collection")
	ErrUnknownFieldType        = errors.New("collections: unknown field type")
	ErrTypeUnavailable         = errors.New("collections: field type requires a disabled editor plugin")
	ErrInvalidFieldOptions     = errors.New("collections: invalid field options")
	ErrImmutableField          = errors.New("collections: attribute is immutable")
	ErrReorderMismatch         = errors.New("collections: reorder must list every field of the collection once")
	ErrSchemaChangedDuringEdit = errors.New("collections: schema changed during edit")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Resource {
	case resourceCollection:
		return ErrCollectionNotFound
	case resourceField:
		return ErrFieldNotFound
	default:
		return nil
	}
}

// ImmutableError is returned when a patch tries to change an attribute that is
// fixed after creation.
type ImmutableError struct {
	Resource  string
	Attribute string
}

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("%s: %s %s cannot be changed", ErrImmutableField.Error(), e.Resource, e.Attribute)
}

func (e *ImmutableError) Unwrap() error { return ErrImmutableField }

// Issue is one input problem found on a field definition.
type Issue struct {
	Attribute string
	Err       error
}

// FieldDefinitionError collects every input problem of a field create or
// update so callers can report them together.
type FieldDefinitionError struct {
	FieldName string
	Issues    []Issue
}

func (e *FieldDefinitionError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %v", issue.Attribute, issue.Err))
	}
	name := e.FieldName
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("collections: field %q is invalid: %s", name, strings.Join(parts, "; "))
}

func (e *FieldDefinitionError) Unwrap() []error {
	out := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Err != nil {
			out = append(out, issue.Err)
		}
	}
	return out
}

// BatchItemError ties a failure to its position in a batch request.
type BatchItemError struct {
	Index     int
	FieldName string
	Err       error
}

// BatchError reports the failed items of a batch; the other items were applied.
type BatchError struct {
	Items []BatchItemError
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("[%d] %s: %v", item.Index, item.FieldName, item.Err))
	}
	return fmt.Sprintf("collections: %d field(s) failed: %s", len(e.Items), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	out := make([]error, 0, len(e.Items))
	for _, item := range e.Items {
		out = append(out, item.Err)
	}
	return out
}

// IsConflict reports whether err is a state conflict: the whole operation was
// refused, as opposed to per-field input problems.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCollectionManaged) ||
		errors.Is(err, ErrImmutableField) ||
		errors.Is(err, ErrCollectionHasContent) ||
		errors.Is(err, ErrSchemaChangedDuringEdit)
}

const (
	resourceCollection = "collection"
	resourceField      = "field"
)
