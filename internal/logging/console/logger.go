package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

// Level orders console severities.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configured level name onto a Level.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// Options configures the console provider. Zero values write INFO and above
// to stdout.
type Options struct {
	Writer io.Writer
	Clock  func() time.Time
	Level  string
}

type sink struct {
	mu       sync.Mutex
	out      io.Writer
	clock    func() time.Time
	minLevel Level
}

// NewProvider returns a provider writing one line per entry:
//
//	<time> <LEVEL> [<logger>] <message> <scope fields> <other fields>
//
// Scope fields carried by the logger context come first in a fixed order so
// lines about the same collection line up.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, clock: opts.Clock, minLevel: LevelInfo}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if level, ok := ParseLevel(opts.Level); ok {
		s.minLevel = level
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &consoleLogger{sink: s, name: name}
}

type consoleLogger struct {
	sink   *sink
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*consoleLogger)(nil)
	_ interfaces.FieldsLogger = (*consoleLogger)(nil)
)

func (l *consoleLogger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *consoleLogger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *consoleLogger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *consoleLogger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *consoleLogger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *consoleLogger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *consoleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	next := *l
	next.fields = make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		next.fields[k] = v
	}
	for k, v := range fields {
		next.fields[k] = v
	}
	return &next
}

func (l *consoleLogger) WithContext(ctx context.Context) interfaces.Logger {
	next := *l
	next.ctx = ctx
	return &next
}

func (l *consoleLogger) write(level Level, msg string, args []any) {
	if level < l.sink.minLevel {
		return
	}

	fields := make(map[string]any, len(l.fields)+len(args)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	collectArgs(args, fields)
	if module, ok := fields["module"].(string); ok && module == l.name {
		delete(fields, "module")
	}

	var b strings.Builder
	b.WriteString(l.sink.clock().UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if l.name != "" {
		b.WriteString(" [")
		b.WriteString(l.name)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	scope := logging.ScopeFrom(l.ctx).Fields()
	for _, key := range logging.ScopeKeys() {
		value, ok := scope[key]
		if !ok {
			continue
		}
		if _, explicit := fields[key]; explicit {
			continue
		}
		writePair(&b, key, value)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		writePair(&b, k, fields[k])
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	_, _ = io.WriteString(l.sink.out, b.String())
	l.sink.mu.Unlock()
}

// collectArgs reads slog-style key/value pairs. Non-string keys and a
// trailing value without a key are stored under argN.
func collectArgs(args []any, into map[string]any) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if i+1 == len(args) {
			into[fmt.Sprintf("arg%d", i/2)] = args[i]
			return
		}
		if !ok || key == "" {
			key = fmt.Sprintf("arg%d", i/2)
		}
		into[key] = args[i+1]
	}
}

func writePair(b *strings.Builder, key string, value any) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(render(value))
}

func render(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		s = v
	case time.Time:
		s = v.UTC().Format(time.RFC3339Nano)
	case error:
		s = v.Error()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return `""`
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}
