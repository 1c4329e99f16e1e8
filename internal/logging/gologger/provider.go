package gologger

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

// Config mirrors the logging section of the runtime config.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger children named after engine modules.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the root go-logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for a module such as collections.fields.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (a *adapter) Trace(msg string, args ...any) { a.inner.Trace(msg, args...) }
func (a *adapter) Debug(msg string, args ...any) { a.inner.Debug(msg, args...) }
func (a *adapter) Info(msg string, args ...any)  { a.inner.Info(msg, args...) }
func (a *adapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, args...) }
func (a *adapter) Error(msg string, args ...any) { a.inner.Error(msg, args...) }
func (a *adapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, args...) }

// WithFields forwards to go-logger when the child supports fields.
func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := a.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return a
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return wrap(with.WithFields(copied))
}

// WithContext binds ctx and promotes the collection scope it carries to
// structured fields, since go-logger does not read engine context values.
func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	bound := wrap(a.inner.WithContext(ctx))
	if fields := logging.ScopeFrom(ctx).Fields(); len(fields) > 0 {
		return logging.WithFields(bound, fields)
	}
	return bound
}
