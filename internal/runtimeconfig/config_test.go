package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-cms-collections/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDSNForBun(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = "file::memory:"
	cfg.Storage.Driver = "mysql"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}

	cfg.Storage.Provider = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_CacheTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.DefaultTTL = 0

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_ManagedRequiresFeature(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Managed.Directory = "collections"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrManagedFeatureRequired) {
		t.Fatalf("expected ErrManagedFeatureRequired, got %v", err)
	}

	cfg.Features.ManagedCollections = true
	cfg.Managed.Collections = []runtimeconfig.ManagedCollectionConfig{{Name: ""}}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrManagedCollectionNameRequired) {
		t.Fatalf("expected ErrManagedCollectionNameRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
