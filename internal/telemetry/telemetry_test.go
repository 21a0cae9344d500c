package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/steveyegge/console/internal/telemetry"
	"github.com/steveyegge/console/internal/telemetry/telemetrytest"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestEnabled(t *testing.T) {
	t.Setenv(telemetry.EnvEnabled, "")
	if telemetry.Enabled() {
		t.Error("telemetry should be off by default")
	}
	t.Setenv(telemetry.EnvEnabled, "true")
	if !telemetry.Enabled() {
		t.Error("telemetry should be on")
	}
}

func TestInitDisabledInstallsNoop(t *testing.T) {
	t.Setenv(telemetry.EnvEnabled, "false")
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	if err := telemetry.Init(context.Background(), "test", "0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(tracenoop.TracerProvider); !ok {
		t.Errorf("expected no-op tracer provider, got %T", otel.GetTracerProvider())
	}
	telemetry.Shutdown(context.Background())
}

func TestRecorder(t *testing.T) {
	capture := telemetrytest.Install(t)
	rec := telemetry.NewRecorder("test", "job")

	_, op := rec.Start(context.Background(), "step", attribute.String("job.name", "a"))
	op.End(nil, attribute.String("job.result", "done"))

	_, op = rec.Start(context.Background(), "step", attribute.String("job.name", "b"))
	op.End(errors.New("boom"), attribute.String("job.result", "failed"))

	spans := capture.Spans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "job.step" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if got := telemetrytest.SpanAttr(spans[0], "job.result"); got != "done" {
		t.Errorf("job.result = %q", got)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("failed op should mark the span as error, got %v", spans[1].Status())
	}

	if got := capture.Count(t, "job.operations", "", ""); got != 2 {
		t.Errorf("job.operations = %d, want 2", got)
	}
	if got := capture.Count(t, "job.operations", "job.result", "failed"); got != 1 {
		t.Errorf("failed operations = %d, want 1", got)
	}
	if got := capture.Count(t, "job.errors", "", ""); got != 1 {
		t.Errorf("job.errors = %d, want 1", got)
	}
}
