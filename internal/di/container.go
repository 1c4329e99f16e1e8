package di

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cms-collections/internal/collections"
	collectionscmd "github.com/goliatone/go-cms-collections/internal/commands/collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/logging/console"
	"github.com/goliatone/go-cms-collections/internal/logging/gologger"
	"github.com/goliatone/go-cms-collections/internal/managed"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/internal/richtext"
	"github.com/goliatone/go-cms-collections/internal/runtimeconfig"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
	"github.com/goliatone/go-cms-collections/pkg/storage"
)

// Container wires the engine's repositories and services.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	pluginState    plugins.State
	types          *fieldtypes.Registry
	locker         *collections.Locker
	managedFS      fs.FS
	managedSources []managed.Source

	collectionRepo collections.CollectionRepository
	fieldRepo      collections.FieldRepository
	documentRepo   documents.DocumentRepository

	collectionSvc collections.Service
	fieldSvc      collections.FieldService
	documentSvc   documents.Service
	managedLoader *managed.Loader
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithPluginState overrides the static plugin state built from config.
func WithPluginState(state plugins.State) Option {
	return func(c *Container) {
		c.pluginState = state
	}
}

// WithTypeRegistry replaces the built-in field type registry.
func WithTypeRegistry(registry *fieldtypes.Registry) Option {
	return func(c *Container) {
		c.types = registry
	}
}

// WithManagedFS reads managed definition files from filesystem instead of the
// configured directory.
func WithManagedFS(filesystem fs.FS) Option {
	return func(c *Container) {
		c.managedFS = filesystem
	}
}

// WithManagedSource adds a source of managed collection definitions.
func WithManagedSource(source managed.Source) Option {
	return func(c *Container) {
		if source != nil {
			c.managedSources = append(c.managedSources, source)
		}
	}
}

// NewContainer validates cfg and builds the container.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.DefaultTTL,
		locker:   collections.NewLocker(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()
	c.configureManaged()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("configure go-logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{Level: c.Config.Logging.Level})
	}
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil {
		return c.migrate()
	}
	if strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider)) != "bun" {
		return nil
	}

	db, err := storage.Open(storage.Config{
		Driver: c.Config.Storage.Driver,
		DSN:    c.Config.Storage.DSN,
	})
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return c.migrate()
}

func (c *Container) migrate() error {
	if !c.Config.Storage.Migrate {
		return nil
	}
	return storage.Migrate(context.Background(), c.bunDB)
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger("collections.di").Warn("cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.collectionRepo = collections.NewBunCollectionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.fieldRepo = collections.NewBunFieldRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.documentRepo = documents.NewBunDocumentRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.collectionRepo = collections.NewMemoryCollectionRepository()
	c.fieldRepo = collections.NewMemoryFieldRepository()
	c.documentRepo = documents.NewMemoryDocumentRepository()
}

func (c *Container) configureServices() {
	if c.pluginState == nil {
		c.pluginState = plugins.NewStaticState(c.Config.Plugins.Enabled...)
	}
	if c.types == nil {
		c.types = fieldtypes.DefaultRegistry()
	}

	shared := []collections.Option{
		collections.WithLocker(c.locker),
		collections.WithPluginState(c.pluginState),
		collections.WithTypeRegistry(c.types),
		collections.WithContentCounter(c.documentRepo),
	}
	c.collectionSvc = collections.NewService(c.collectionRepo, c.fieldRepo,
		append(shared, collections.WithLogger(logging.CollectionsLogger(c.loggerProvider)))...)
	c.fieldSvc = collections.NewFieldService(c.collectionRepo, c.fieldRepo,
		append(shared, collections.WithLogger(logging.FieldsLogger(c.loggerProvider)))...)

	renderer := richtext.NewRenderer(richtext.Options{
		Extensions: c.Config.RichText.Extensions,
		HardWraps:  c.Config.RichText.HardWraps,
		SafeMode:   c.Config.RichText.SafeMode,
	})
	c.documentSvc = documents.NewService(c.documentRepo, c.fieldSvc,
		documents.WithLocker(c.locker),
		documents.WithPluginState(c.pluginState),
		documents.WithTypeRegistry(c.types),
		documents.WithRenderer(renderer),
		documents.WithLogger(logging.DocumentsLogger(c.loggerProvider)),
	)
}

func (c *Container) configureManaged() {
	if !c.Config.Features.ManagedCollections && len(c.managedSources) == 0 {
		return
	}

	sources := []managed.Source{}
	if len(c.Config.Managed.Collections) > 0 {
		sources = append(sources, staticSourceFromConfig(c.Config.Managed.Collections))
	}
	filesystem := c.managedFS
	if filesystem == nil && strings.TrimSpace(c.Config.Managed.Directory) != "" {
		filesystem = os.DirFS(c.Config.Managed.Directory)
	}
	if filesystem != nil {
		sources = append(sources, managed.NewFileSource(filesystem, managed.FileSourceConfig{
			Pattern: c.Config.Managed.Pattern,
		}))
	}
	sources = append(sources, c.managedSources...)

	c.managedLoader = managed.NewLoader(c.collectionSvc, logging.ManagedLogger(c.loggerProvider), sources...)
}

func staticSourceFromConfig(defs []runtimeconfig.ManagedCollectionConfig) managed.StaticSource {
	out := make(managed.StaticSource, 0, len(defs))
	for _, def := range defs {
		fields := make([]collections.ManagedField, 0, len(def.Fields))
		for _, field := range def.Fields {
			fields = append(fields, collections.ManagedField{
				Name:       field.Name,
				Label:      field.Label,
				Type:       field.Type,
				Options:    field.Options,
				Order:      field.Order,
				Required:   field.Required,
				Searchable: field.Searchable,
			})
		}
		out = append(out, collections.ManagedDefinition{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Description: def.Description,
			Fields:      fields,
		})
	}
	return out
}

// RegisterCommands builds the command handlers when the commands feature is
// enabled. It returns nil without error otherwise.
func (c *Container) RegisterCommands(reg collectionscmd.CommandRegistry) (*collectionscmd.HandlerSet, error) {
	if !c.Config.Features.Commands {
		return nil, nil
	}
	return collectionscmd.RegisterCollectionCommands(reg, collectionscmd.Services{
		Collections: c.collectionSvc,
		Fields:      c.fieldSvc,
		Documents:   c.documentSvc,
		Managed:     c.managedLoader,
	}, c.loggerProvider)
}

// SyncManaged runs the managed collection loader. It is a no-op when no
// managed source is configured.
func (c *Container) SyncManaged(ctx context.Context) (*collections.SyncResult, error) {
	if c.managedLoader == nil {
		return &collections.SyncResult{}, nil
	}
	return c.managedLoader.Sync(ctx)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}

func (c *Container) CollectionService() collections.Service {
	return c.collectionSvc
}

func (c *Container) FieldService() collections.FieldService {
	return c.fieldSvc
}

func (c *Container) DocumentService() documents.Service {
	return c.documentSvc
}

func (c *Container) ManagedLoader() *managed.Loader {
	return c.managedLoader
}

func (c *Container) PluginState() plugins.State {
	return c.pluginState
}

func (c *Container) TypeRegistry() *fieldtypes.Registry {
	return c.types
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}
