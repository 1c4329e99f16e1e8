package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-collections/internal/logging"
	"github.com/goliatone/go-cms-collections/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command execution unless a handler overrides it.
const DefaultCommandTimeout = 30 * time.Second

// TelemetryStatus is the outcome category reported to telemetry callbacks.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command execution. Scope is the collection,
// field or document the message targeted.
type TelemetryInfo struct {
	Command   string
	Operation string
	Scope     logging.Scope
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry replaces the handler's outcome log line.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with validation, timeouts, scoped logging
// and error categorisation.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	scope     func(T) logging.Scope
	telemetry Telemetry[T]
}

// NewHandler creates a handler that satisfies go-command's Commander interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute conforms to command.Commander[T]. The message scope is attached to
// the context before the wrapped function runs, so service loggers downstream
// report the command and its target.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	scope := logging.Scope{Command: command.GetMessageType(msg)}
	if h.scope != nil {
		scope = scope.Merge(h.scope(msg))
	}
	ctx, logger := logging.Scoped(ctx, h.logger, scope)
	if h.operation != "" {
		logger = logging.WithFields(logger, map[string]any{"operation": h.operation})
	}
	logger.Debug("command.execute.start")

	started := time.Now()
	err := h.exec(ctx, msg)
	info := TelemetryInfo{
		Command:   scope.Command,
		Operation: h.operation,
		Scope:     logging.ScopeFrom(ctx),
		Status:    TelemetryStatusSuccess,
		Logger:    logger,
	}
	switch {
	case err != nil:
		info.Error = wrapExecuteError(err)
		info.Status = TelemetryStatusFailed
	case ctx.Err() != nil:
		info.Error = wrapContextError(ctx.Err())
		info.Status = TelemetryStatusContextError
	}
	info.Duration = time.Since(started)

	if h.telemetry != nil {
		h.telemetry(ctx, msg, info)
		return info.Error
	}
	logOutcome(info)
	return info.Error
}

func logOutcome(info TelemetryInfo) {
	ms := info.Duration.Milliseconds()
	switch info.Status {
	case TelemetryStatusSuccess:
		info.Logger.Info("command.execute.success", "duration_ms", ms)
	case TelemetryStatusContextError:
		info.Logger.Error("command.execute.context_error", "duration_ms", ms, "error", info.Error)
	default:
		info.Logger.Error("command.execute.failed", "duration_ms", ms, "error", info.Error)
	}
}

// WithTimeout overrides the default execution timeout. Zero or negative
// disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

// WithLogger injects the logger used during execution.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Ensure(logger)
	}
}

// WithOperation sets the operation name logged with every entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageScope derives the collection, field or document a message targets.
func WithMessageScope[T command.Message](fn func(T) logging.Scope) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.scope = fn
	}
}

// WithTelemetry replaces the outcome log lines with the supplied callback.
func WithTelemetry[T command.Message](telemetry Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = telemetry
	}
}
