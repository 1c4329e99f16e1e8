package collections

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// ContentCounter reports how many documents reference a collection. The
// registry refuses to delete collections that still have content.
type ContentCounter interface {
	CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error)
}

// Option configures the collection and field services at construction time.
type Option func(*options)

type options struct {
	now     func() time.Time
	id      IDGenerator
	logger  interfaces.Logger
	locker  *Locker
	types   *fieldtypes.Registry
	plugins plugins.State
	counter ContentCounter
}

func defaultOptions() options {
	return options{
		now:    func() time.Time { return time.Now().UTC() },
		id:     uuid.New,
		logger: logging.NoOp(),
		locker: NewLocker(),
		types:  fieldtypes.DefaultRegistry(),
	}
}

func applyOptions(opts []Option) options {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) Option {
	return func(o *options) {
		if generator != nil {
			o.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLocker shares the per-collection lock registry with other services,
// typically the document service.
func WithLocker(locker *Locker) Option {
	return func(o *options) {
		if locker != nil {
			o.locker = locker
		}
	}
}

func WithTypeRegistry(registry *fieldtypes.Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.types = registry
		}
	}
}

// WithPluginState sets the collaborator queried for enabled editor plugins.
func WithPluginState(state plugins.State) Option {
	return func(o *options) {
		o.plugins = state
	}
}

func WithContentCounter(counter ContentCounter) Option {
	return func(o *options) {
		o.counter = counter
	}
}
