package cms

import "github.com/goliatone/go-cms-collections/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown        = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired            = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid               = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired       = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown        = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid           = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid          = runtimeconfig.ErrLoggingFormatInvalid
	ErrManagedFeatureRequired        = runtimeconfig.ErrManagedFeatureRequired
	ErrManagedCollectionNameRequired = runtimeconfig.ErrManagedCollectionNameRequired
)

type (
	Config                  = runtimeconfig.Config
	StorageConfig           = runtimeconfig.StorageConfig
	CacheConfig             = runtimeconfig.CacheConfig
	LoggingConfig           = runtimeconfig.LoggingConfig
	PluginsConfig           = runtimeconfig.PluginsConfig
	RichTextConfig          = runtimeconfig.RichTextConfig
	ManagedConfig           = runtimeconfig.ManagedConfig
	ManagedCollectionConfig = runtimeconfig.ManagedCollectionConfig
	ManagedFieldConfig      = runtimeconfig.ManagedFieldConfig
	Features                = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
