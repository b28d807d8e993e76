package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")

	lc := GetContext(ctx)
	if lc.RunID != "run-123" {
		t.Errorf("expected run-123, got %s", lc.RunID)
	}
}

func TestWithStage_KeepsRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithStage(ctx, "sync")

	lc := GetContext(ctx)
	if lc.RunID != "run-123" || lc.Stage != "sync" {
		t.Errorf("unexpected context: %+v", lc)
	}
}

func TestGetContext_Empty(t *testing.T) {
	if lc := GetContext(context.Background()); lc != (LogContext{}) {
		t.Errorf("expected empty context, got %+v", lc)
	}
}

func TestHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithStage(WithRunID(context.Background(), "run-9"), "connect")
	logger.InfoContext(ctx, "Connected", slog.String("host", "h"))

	out := buf.String()
	for _, want := range []string{"run_id=run-9", "stage=connect", "host=h"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestHandler_WithoutContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil))).With("component", "test")

	logger.Info("plain")

	out := buf.String()
	if strings.Contains(out, "run_id") {
		t.Errorf("unexpected run_id in %q", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected handler attrs in %q", out)
	}
}
