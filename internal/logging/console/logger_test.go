package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/internal/logging/console"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
}

func TestConsoleLoggerRendersScopeBeforeFields(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock, Level: "debug"})

	logger := logging.ModuleLogger(provider, "collections.fields")
	collectionID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	ctx := logging.WithScope(context.Background(), logging.Scope{Command: "collections.field.create"})
	_, logger = logging.Scoped(ctx, logger, logging.Scope{CollectionID: collectionID, Collection: "articles", Field: "headline"})

	logger.Info("field.created", "field_type", "text", "field_order", 1)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26Z INFO [collections.fields] field.created" +
		" command=collections.field.create collection=articles collection_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 field_name=headline" +
		" field_order=1 field_type=text"
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerExplicitArgsWinOverScope(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock})

	_, logger := logging.Scoped(context.Background(), provider.GetLogger("collections.managed"), logging.Scope{Collection: "faqs"})
	logger.Warn("managed.sync.failed", "collection", "pages", "error", errors.New("name taken"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z WARN [collections.managed] managed.sync.failed collection=pages error="name taken"`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock, Level: "warn"})

	logger := provider.GetLogger("collections.documents")
	logger.Info("document.created")
	logger.Warn("document.save.refused", "errors", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "document.save.refused errors=2") {
		t.Fatalf("expected only the warning, got %q", buf.String())
	}
}

func TestConsoleLoggerKeepsDanglingArgument(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock})

	provider.GetLogger("").Info("orphan", "count", 3, "extra")

	if got := strings.TrimSpace(buf.String()); !strings.HasSuffix(got, "INFO orphan arg1=extra count=3") {
		t.Fatalf("unexpected entry %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel(" Warning "); !ok || level != console.LevelWarn {
		t.Fatalf("expected warn, got %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
