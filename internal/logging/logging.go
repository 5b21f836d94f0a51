// Package logging builds the structured slog.Logger every SqlGuard
// component logs through: the orchestrator's checker-panic log lines,
// the rewriter pipeline's rewriter-failure log lines, the HTTP API's
// per-request log, and the scan command's discovery summary.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ContextKey namespaces values logging stores on a context.Context.
type ContextKey string

// CallIDKey is the context key for the per-validate()-call correlation
// ID threaded through a request's log lines (§5: "per-call state is
// effectively thread-local" — the call ID is how those lines are tied
// back together after the fact).
const CallIDKey ContextKey = "sqlguard_call_id"

// Config holds logger configuration, typically sourced from
// internal/config's root `logging:` section.
type Config struct {
	Level      string
	Format     string
	Output     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// New builds a structured logger from Config.
func New(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	writer := setupWriter(cfg)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler)
}

// ParseLevel parses a configuration string into a slog.Level, defaulting
// to INFO for anything unrecognized rather than failing startup — log
// level is not safety-critical configuration.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupWriter(cfg Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.Filename == "" {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	case "stderr":
		return os.Stderr
	case "stdout", "":
		return os.Stdout
	default:
		return os.Stdout
	}
}

// GenerateCallID returns a short, random correlation ID for one
// validate()/HTTP request lifecycle, used to tie together the several
// log lines a single call can emit (parse failure, checker panic,
// rewriter failure, strategy outcome).
func GenerateCallID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("call_%d", time.Now().UnixNano())
	}
	return "call_" + hex.EncodeToString(bytes)
}

// WithCallID attaches a call ID to ctx.
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, CallIDKey, callID)
}

// CallIDFrom extracts the call ID from ctx, "" if absent.
func CallIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(CallIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns logger enriched with ctx's call ID, when present.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := CallIDFrom(ctx); id != "" {
		return logger.With("call_id", id)
	}
	return logger
}

// RequestMiddleware logs each HTTP request the validation API handles,
// assigning a call ID when the client didn't supply one via
// X-Sqlguard-Call-Id (§6 "Validator API").
func RequestMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			callID := r.Header.Get("X-Sqlguard-Call-Id")
			if callID == "" {
				callID = GenerateCallID()
			}

			ctx := WithCallID(r.Context(), callID)
			r = r.WithContext(ctx)
			w.Header().Set("X-Sqlguard-Call-Id", callID)

			wrapped := &statusCapturingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start),
				"call_id", callID,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

type statusCapturingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusCapturingWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
