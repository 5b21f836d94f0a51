package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetupWriterDefaults(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   io.Writer
	}{
		{"stdout", Config{Output: "stdout"}, os.Stdout},
		{"stderr", Config{Output: "stderr"}, os.Stderr},
		{"default", Config{Output: ""}, os.Stdout},
		{"file without filename", Config{Output: "file"}, os.Stdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := setupWriter(tt.config); got != tt.want {
				t.Errorf("setupWriter(%+v) = %v, want %v", tt.config, got, tt.want)
			}
		})
	}
}

func TestNewBuildsAWorkingLogger(t *testing.T) {
	logger := New(Config{Level: "info", Format: "json", Output: "stdout"})
	if logger == nil {
		t.Fatal("New returned nil")
	}
	logger.Info("test message", "key", "value")
}

func TestGenerateCallIDIsUniqueAndPrefixed(t *testing.T) {
	id1 := GenerateCallID()
	id2 := GenerateCallID()

	if id1 == id2 {
		t.Error("GenerateCallID should generate unique IDs")
	}
	if !strings.HasPrefix(id1, "call_") {
		t.Errorf("call ID should start with 'call_', got: %s", id1)
	}
}

func TestWithCallIDRoundTrips(t *testing.T) {
	ctx := WithCallID(context.Background(), "test-call-id")
	if got := CallIDFrom(ctx); got != "test-call-id" {
		t.Errorf("CallIDFrom = %q, want %q", got, "test-call-id")
	}
}

func TestCallIDFromEmptyContext(t *testing.T) {
	if got := CallIDFrom(context.Background()); got != "" {
		t.Errorf("expected empty call ID, got %q", got)
	}
}

func TestRequestMiddlewareAssignsAndLogsCallID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var sawCallID string
	handler := RequestMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawCallID = CallIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/validate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if sawCallID == "" {
		t.Error("call ID not found in request context")
	}
	if rec.Header().Get("X-Sqlguard-Call-Id") != sawCallID {
		t.Error("response header call ID does not match context call ID")
	}

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	for _, field := range []string{"method", "path", "status", "duration", "call_id"} {
		if _, ok := logEntry[field]; !ok {
			t.Errorf("missing required field in log: %s", field)
		}
	}
	if logEntry["path"] != "/v1/validate" {
		t.Errorf("expected path /v1/validate, got %v", logEntry["path"])
	}
}

func TestRequestMiddlewareHonorsExistingCallID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	const existing = "existing-call-id"

	handler := RequestMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := CallIDFrom(r.Context()); got != existing {
			t.Errorf("expected call id %s, got %s", existing, got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/validate", nil)
	req.Header.Set("X-Sqlguard-Call-Id", existing)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestFromContextEnrichesWithCallID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := WithCallID(context.Background(), "test-id")
	FromContext(ctx, base).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	if logEntry["call_id"] != "test-id" {
		t.Errorf("expected call_id test-id, got %v", logEntry["call_id"])
	}

	buf.Reset()
	FromContext(context.Background(), base).Info("test message")
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	if _, ok := logEntry["call_id"]; ok {
		t.Error("call_id should not be present when not in context")
	}
}

func TestStatusCapturingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusCapturingWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if w.statusCode != http.StatusOK {
		t.Errorf("expected default status 200, got %d", w.statusCode)
	}
	w.WriteHeader(http.StatusNotFound)
	if w.statusCode != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on both wrapper and underlying writer")
	}
}
