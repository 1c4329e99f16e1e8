package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

const (
	rootModule        = "collections"
	collectionsModule = "collections.registry"
	fieldsModule      = "collections.fields"
	documentsModule   = "collections.documents"
	managedModule     = "collections.managed"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// CollectionsLogger returns the logger namespace reserved for the collection registry.
func CollectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collectionsModule)
}

// FieldsLogger returns the logger namespace reserved for field definitions.
func FieldsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fieldsModule)
}

// DocumentsLogger returns the logger namespace reserved for document saves.
func DocumentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentsModule)
}

// ManagedLogger returns the logger namespace reserved for managed collection sync.
func ManagedLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, managedModule)
}

// WithFields attaches fields when the logger implements FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	with, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return with.WithFields(maps.Clone(fields))
}

// Ensure returns logger, or a no-op logger when it is nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
