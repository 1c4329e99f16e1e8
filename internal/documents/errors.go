package documents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-collections/internal/collections"
)

var (
	ErrServiceUnavailable   = errors.New("documents: service unavailable")
	ErrCollectionIDRequired = errors.New("documents: collection id required")
	ErrDocumentIDRequired   = errors.New("documents: document id required")
	ErrDocumentNotFound     = errors.New("documents: document not found")
	ErrValidationFailed     = errors.New("documents: validation failed")
	ErrSchemaInconsistent   = errors.New("documents: schema references unknown field types")

	// ErrSchemaChangedDuringEdit is shared with the collections package so
	// collections.IsConflict recognises it.
	ErrSchemaChangedDuringEdit = collections.ErrSchemaChangedDuringEdit
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

func (e *NotFoundError) Unwrap() error { return ErrDocumentNotFound }

// ValidationError carries every issue of a refused save.
type ValidationError struct {
	Issues Issues
}

func (e *ValidationError) Error() string {
	blocking := e.Issues.filter(Issue.Blocking)
	parts := make([]string, 0, len(blocking))
	for _, issue := range blocking {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrValidationFailed}
	if len(e.Issues.Integrity()) > 0 {
		errs = append(errs, ErrSchemaInconsistent)
	}
	return errs
}

// SchemaChangedError reports that the collection schema moved between
// validation and commit.
type SchemaChangedError struct {
	Expected int
	Actual   int
}

func (e *SchemaChangedError) Error() string {
	return fmt.Sprintf("%s: validated against version %d, current version %d", ErrSchemaChangedDuringEdit.Error(), e.Expected, e.Actual)
}

func (e *SchemaChangedError) Unwrap() error { return ErrSchemaChangedDuringEdit }
