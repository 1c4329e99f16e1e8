package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-collections/pkg/storage"
)

var ErrStorageProviderUnknown = errors.New("collections config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("collections config: storage dsn is required for the bun provider")
var ErrCacheTTLInvalid = errors.New("collections config: cache ttl must be positive when cache is enabled")
var ErrLoggingProviderRequired = errors.New("collections config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("collections config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("collections config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("collections config: logging format is invalid")

// ErrManagedFeatureRequired indicates managed collections were configured while the feature is off.
var ErrManagedFeatureRequired = errors.New("collections config: managed collections feature must be enabled to configure managed collections")
var ErrManagedCollectionNameRequired = errors.New("collections config: managed collection name is required")

// Config aggregates feature flags and adapter bindings for the collections engine.
type Config struct {
	Storage  StorageConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	Plugins  PluginsConfig
	RichText RichTextConfig
	Managed  ManagedConfig
	Features Features
}

// StorageConfig selects the repository backend. Provider "memory" keeps
// everything in process; "bun" opens Driver/DSN through pkg/storage.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
	// Migrate creates missing tables on startup.
	Migrate bool
}

// CacheConfig captures cache behaviour toggles for bun repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// PluginsConfig lists the editor plugins enabled at startup.
type PluginsConfig struct {
	Enabled []string
}

// RichTextConfig tunes markdown previews of rich-text values.
type RichTextConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// ManagedConfig points at managed collection definitions.
type ManagedConfig struct {
	Directory   string
	Pattern     string
	Collections []ManagedCollectionConfig
}

// ManagedCollectionConfig declares a managed collection inline.
type ManagedCollectionConfig struct {
	Name        string
	DisplayName string
	Description string
	Fields      []ManagedFieldConfig
}

// ManagedFieldConfig declares one field of an inline managed collection.
type ManagedFieldConfig struct {
	Name       string
	Label      string
	Type       string
	Options    map[string]any
	Order      *int
	Required   bool
	Searchable bool
}

// Features toggles module functionality.
type Features struct {
	Logger             bool
	Commands           bool
	ManagedCollections bool
}

// DefaultConfig returns in-memory defaults suitable for tests and examples.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   storage.DriverSQLite,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Plugins: PluginsConfig{},
		RichText: RichTextConfig{
			SafeMode: true,
		},
		Managed: ManagedConfig{
			Pattern: "*.md",
		},
		Features: Features{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalizeProvider(cfg.Storage.Provider) {
	case "", "memory":
	case "bun":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		switch storage.NormalizeDriver(cfg.Storage.Driver) {
		case storage.DriverSQLite, storage.DriverPostgres:
		default:
			return fmt.Errorf("%w: driver %s", ErrStorageProviderUnknown, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if !cfg.Features.ManagedCollections {
		if strings.TrimSpace(cfg.Managed.Directory) != "" || len(cfg.Managed.Collections) > 0 {
			return ErrManagedFeatureRequired
		}
	}
	for i, def := range cfg.Managed.Collections {
		if strings.TrimSpace(def.Name) == "" {
			return fmt.Errorf("%w: index %d", ErrManagedCollectionNameRequired, i)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
