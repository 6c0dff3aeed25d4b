package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewFileOnly(Config{Level: "debug", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithRequestID(ctx, log).Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"request_id":"req-1"`) || !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("unexpected log output %s", data)
	}
}

func TestFileOnlyWithoutFileIsNop(t *testing.T) {
	log, err := NewFileOnly(Config{})
	if err != nil || log == nil {
		t.Fatalf("expected nop logger, got %v", err)
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
}
