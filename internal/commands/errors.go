package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	// Text codes attached to domain failures so callers can branch without
	// importing the domain packages.
	CodeSchemaRejected     = "SCHEMA_DEFINITION_REJECTED"
	CodeDocumentRejected   = "DOCUMENT_REJECTED"
	CodeSchemaInconsistent = "SCHEMA_INCONSISTENT"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeConflict           = "RESOURCE_CONFLICT"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, documents.ErrSchemaInconsistent):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "collection schema is inconsistent").
			WithTextCode(CodeSchemaInconsistent)
	case errors.Is(err, documents.ErrValidationFailed):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "document rejected").
			WithTextCode(CodeDocumentRejected)
	case collections.IsConflict(err):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command conflicts with current state").
			WithTextCode(CodeConflict)
	case isSchemaRejection(err):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "schema definition rejected").
			WithTextCode(CodeSchemaRejected)
	case errors.Is(err, collections.ErrCollectionNotFound),
		errors.Is(err, collections.ErrFieldNotFound),
		errors.Is(err, documents.ErrDocumentNotFound):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command target not found").
			WithTextCode(CodeNotFound)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}

func isSchemaRejection(err error) bool {
	var definition *collections.FieldDefinitionError
	var batch *collections.BatchError
	return errors.As(err, &definition) ||
		errors.As(err, &batch) ||
		errors.Is(err, collections.ErrInvalidName) ||
		errors.Is(err, collections.ErrDuplicateName) ||
		errors.Is(err, collections.ErrReorderMismatch)
}
