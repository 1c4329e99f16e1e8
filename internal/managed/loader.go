package managed

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

var ErrSyncerRequired = errors.New("managed: collection service required")

// Syncer is the slice of the collection registry used by the loader.
type Syncer interface {
	SyncManaged(ctx context.Context, definitions []collections.ManagedDefinition) (*collections.SyncResult, error)
}

// Loader pulls definitions from its sources and reconciles them in one sync.
type Loader struct {
	syncer  Syncer
	sources []Source
	logger  interfaces.Logger
}

// NewLoader constructs a loader. A nil logger falls back to a no-op logger.
func NewLoader(syncer Syncer, logger interfaces.Logger, sources ...Source) *Loader {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{syncer: syncer, sources: sources, logger: logger}
}

// Sync gathers every source's definitions and applies them. A source that fails
// to load aborts the sync before anything is written.
func (l *Loader) Sync(ctx context.Context) (*collections.SyncResult, error) {
	if l == nil || l.syncer == nil {
		return nil, ErrSyncerRequired
	}
	var defs []collections.ManagedDefinition
	for _, source := range l.sources {
		if source == nil {
			continue
		}
		loaded, err := source.Definitions(ctx)
		if err != nil {
			l.logger.Error("managed.load.failed", "error", err)
			return nil, err
		}
		defs = append(defs, loaded...)
	}

	result, err := l.syncer.SyncManaged(ctx, defs)
	if result != nil {
		l.logger.Info("managed.sync.completed",
			"created", len(result.Created),
			"updated", len(result.Updated),
			"unchanged", len(result.Unchanged),
		)
	}
	return result, err
}
