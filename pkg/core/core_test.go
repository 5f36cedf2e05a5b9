package core

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background())
	id := RequestIDFromCtx(ctx)
	if len(id) != 36 {
		t.Errorf("expected a uuid request id, got %q", id)
	}
	if RequestIDFromCtx(context.Background()) != "" {
		t.Error("expected empty request id on a bare context")
	}
}

func TestLoggerFromCtx(t *testing.T) {
	buf := captureDefault(t)

	LoggerFromCtx(WithRequestIDValue(context.Background(), "req-1")).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("expected request_id in output, got %q", buf.String())
	}

	buf.Reset()
	LoggerFromCtx(context.Background()).Info("hello")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("expected no request_id in output, got %q", buf.String())
	}
}

func TestAddRequestAttributes_FallsBackToLog(t *testing.T) {
	buf := captureDefault(t)

	AddRequestAttributes(context.Background(),
		attribute.String("oauth.step", "token_exchange"),
		attribute.String("oauth.status", "ok"),
	)

	out := buf.String()
	for _, want := range []string{"oauth.step=token_exchange", "oauth.status=ok", "observability.fallback=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}
