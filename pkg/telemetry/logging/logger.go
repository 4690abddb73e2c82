package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
)

// Logger provides structured logging with async buffered output.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// level is the minimum log level
	level slog.Level

	// format is the output format
	format LogFormat

	// addSource includes file:line in logs
	addSource bool

	// buffer is the async log buffer
	buffer *logBuffer
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// BufferSize is the async log buffer size in bytes. 0 disables
	// buffering and writes through directly.
	BufferSize int

	// Writer is the output writer (defaults to os.Stdout)
	Writer io.Writer
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	buffer := newLogBuffer(writer, cfg.BufferSize)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(buffer, opts)
	default:
		handler = slog.NewJSONHandler(buffer, opts)
	}

	return &Logger{
		slog:      slog.New(handler),
		level:     level,
		format:    format,
		addSource: cfg.AddSource,
		buffer:    buffer,
	}, nil
}

// Slog returns the underlying *slog.Logger for components that take one
// directly.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message with fields extracted from the context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logContext(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext logs an info message with fields extracted from the context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logContext(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext logs a warning message with fields extracted from the context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logContext(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext logs an error message with fields extracted from the context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logContext(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) logContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	allArgs := append(extractContextFields(ctx), args...)
	l.slog.Log(ctx, level, msg, allArgs...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:      l.slog.With(args...),
		level:     l.level,
		format:    l.format,
		addSource: l.addSource,
		buffer:    l.buffer,
	}
}

// WithContext creates a new logger carrying fields extracted from the
// context (run_id, tick, rule).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// Shutdown flushes pending writes and stops the async writer.
func (l *Logger) Shutdown() error {
	if l.buffer != nil {
		return l.buffer.Stop()
	}
	return nil
}

// logBuffer decouples log writes from the emitting goroutine. Writes go
// to a channel drained by a background goroutine; a full channel falls
// back to a synchronous write rather than dropping the entry.
type logBuffer struct {
	writer   io.Writer
	entries  chan []byte
	stopChan chan struct{}
	wg       sync.WaitGroup
	async    bool
	mu       sync.Mutex
}

func newLogBuffer(w io.Writer, size int) *logBuffer {
	lb := &logBuffer{
		writer:   w,
		stopChan: make(chan struct{}),
	}
	if size > 0 {
		lb.async = true
		lb.entries = make(chan []byte, size)
		lb.wg.Add(1)
		go lb.runWriter()
	}
	return lb
}

// Write implements io.Writer for slog handlers.
func (lb *logBuffer) Write(p []byte) (int, error) {
	if !lb.async {
		return lb.syncWrite(p)
	}

	// The handler reuses p, copy before handing it off.
	entry := make([]byte, len(p))
	copy(entry, p)

	select {
	case lb.entries <- entry:
		return len(p), nil
	default:
		return lb.syncWrite(p)
	}
}

func (lb *logBuffer) syncWrite(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.writer.Write(p)
}

// runWriter drains the entry channel until stopped.
func (lb *logBuffer) runWriter() {
	defer lb.wg.Done()
	for {
		select {
		case <-lb.stopChan:
			for {
				select {
				case entry := <-lb.entries:
					lb.syncWrite(entry)
				default:
					return
				}
			}
		case entry := <-lb.entries:
			lb.syncWrite(entry)
		}
	}
}

// Stop flushes pending entries and stops the writer goroutine.
func (lb *logBuffer) Stop() error {
	if !lb.async {
		return nil
	}
	close(lb.stopChan)
	lb.wg.Wait()
	return nil
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
