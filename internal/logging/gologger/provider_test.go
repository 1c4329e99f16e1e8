package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-cms-collections/internal/logging"
)

func TestNewProviderBuildsModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console", Focus: []string{" collections.fields ", ""}})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := logging.FieldsLogger(p)
	_, logger = logging.Scoped(context.Background(), logger, logging.Scope{Collection: "articles"})
	logger.Debug("field.created")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNilProviderFallsBackToNoOp(t *testing.T) {
	var p *Provider
	p.GetLogger("collections.documents").Info("dropped")
}

func TestAdapterPromotesScopeToFields(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	collectionID := uuid.New()
	ctx := logging.WithScope(context.Background(), logging.Scope{
		Command:      "collections.document.save",
		CollectionID: collectionID,
		Collection:   "articles",
	})
	adapted.WithContext(ctx).Info("document.created")

	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context to reach go-logger, got %#v", stub.contexts)
	}
	if len(stub.fields) != 1 {
		t.Fatalf("expected scope fields to be attached once, got %v", stub.fields)
	}
	got := stub.fields[0]
	if got["collection"] != "articles" || got["collection_id"] != collectionID.String() || got["command"] != "collections.document.save" {
		t.Fatalf("unexpected scope fields %v", got)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "info" {
		t.Fatalf("expected info call, got %v", stub.calls)
	}
}

func TestAdapterSkipsFieldsWithoutScope(t *testing.T) {
	stub := &stubLogger{}
	wrap(stub).WithContext(context.Background())
	if len(stub.fields) != 0 {
		t.Fatalf("expected no fields for an unscoped context, got %v", stub.fields)
	}
}

func TestAdapterClonesFields(t *testing.T) {
	stub := &stubLogger{}
	fields := map[string]any{"field_name": "headline"}
	wrap(stub).(*adapter).WithFields(fields)
	fields["field_name"] = "body"

	if len(stub.fields) != 1 || stub.fields[0]["field_name"] != "headline" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}
