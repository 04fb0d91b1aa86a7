package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	globalLogFile    *os.File
	logFileMu        sync.Mutex
)

type contextKey string

// TraceIDContextKey is the context key for the request trace id
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var initErr error
	globalLoggerOnce.Do(func() {
		globalLogger, initErr = createLogger(cfg)
		if initErr == nil {
			slog.SetDefault(globalLogger)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return globalLogger, nil
}

// GetLogger returns the initialized logger, falling back to the default config
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		logger, err := InitializeLogger(DefaultConfig())
		if err != nil {
			return slog.Default()
		}
		return logger
	}
	return globalLogger
}

// NewLogger writes to w with the level and format of cfg. Output and
// FilePath are ignored.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	return slog.New(&traceHandler{handler: newHandler(cfg, w)})
}

func createLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var writer io.Writer

	switch strings.ToLower(cfg.Output) {
	case "", "console", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		writer = f
	case "both":
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stdout, f)
	default:
		return nil, fmt.Errorf("unsupported log output %q", cfg.Output)
	}

	return NewLogger(cfg, writer), nil
}

func newHandler(cfg config.LoggingConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Level),
		AddSource: cfg.Development,
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// traceHandler adds the trace id carried by the context to every record
type traceHandler struct {
	handler slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{handler: h.handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID returns a context carrying traceID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID extracts the trace id from ctx, or "" when absent
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// DefaultConfig is the logging configuration used before config is loaded
func DefaultConfig() config.LoggingConfig {
	return config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "console",
	}
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

// ResetLoggerForTesting clears the global logger state
func ResetLoggerForTesting() {
	CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logFileMu.Lock()
	globalLogFile = f
	logFileMu.Unlock()
	return f, nil
}
