package bwcr

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"
)

type testEnv struct {
	otelExp string
}

func (e testEnv) serviceName() string     { return "test-service" }
func (e testEnv) logLevel() zapcore.Level { return zapcore.InfoLevel }
func (e testEnv) otelExporter() string    { return e.otelExp }

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout exporter", func(t *testing.T) {
		exp, err := newExporter(ctx, "stdout")
		if err != nil {
			t.Fatalf("newExporter(stdout) error: %v", err)
		}
		if exp == nil {
			t.Fatal("expected non-nil exporter")
		}
	})

	t.Run("empty defaults to stdout", func(t *testing.T) {
		exp, err := newExporter(ctx, "")
		if err != nil {
			t.Fatalf("newExporter('') error: %v", err)
		}
		if exp == nil {
			t.Fatal("expected non-nil exporter")
		}
	})

	t.Run("unsupported exporter returns error", func(t *testing.T) {
		_, err := newExporter(ctx, "invalid")
		if err == nil {
			t.Fatal("expected error for unsupported exporter")
		}
		if got := err.Error(); got != `unsupported OTEL_EXPORTER: "invalid" (supported: stdout, xrayudp)` {
			t.Errorf("unexpected error message: %s", got)
		}
	})
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), "stdout", "my-service")
	if err != nil {
		t.Fatalf("newResource error: %v", err)
	}

	found := false
	for _, attr := range res.Attributes() {
		if string(attr.Key) == "service.name" && attr.Value.AsString() == "my-service" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected service.name attribute in resource")
	}
}

func TestNewTracerProvider_Stdout(t *testing.T) {
	env := testEnv{otelExp: "stdout"}

	var tp trace.TracerProvider
	app := fx.New(
		fx.NopLogger,
		fx.Supply(fx.Annotate(env, fx.As(new(Environment)))),
		fx.Provide(NewTracerProvider),
		fx.Invoke(func(p trace.TracerProvider) { tp = p }),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("app.Start error: %v", err)
	}

	if _, ok := tp.(*sdktrace.TracerProvider); !ok {
		t.Error("expected SDK TracerProvider")
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("app.Stop error: %v", err)
	}
}

func TestNewTracerProvider_InvalidExporter(t *testing.T) {
	env := testEnv{otelExp: "invalid"}

	app := fx.New(
		fx.NopLogger,
		fx.Supply(fx.Annotate(env, fx.As(new(Environment)))),
		fx.Provide(NewTracerProvider),
		fx.Invoke(func(trace.TracerProvider) {}),
	)

	if err := app.Err(); err == nil {
		t.Fatal("expected error for invalid exporter")
	}
}

func TestNewPropagator(t *testing.T) {
	t.Run("xrayudp uses the x-ray propagator only", func(t *testing.T) {
		prop := NewPropagator(testEnv{otelExp: "xrayudp"})
		if fields := prop.Fields(); len(fields) != 1 || fields[0] != traceHeader {
			t.Errorf("Fields() = %v, want [%s]", fields, traceHeader)
		}
	})

	t.Run("stdout uses composite propagator", func(t *testing.T) {
		prop := NewPropagator(testEnv{otelExp: "stdout"})
		if _, ok := prop.(propagation.TraceContext); ok {
			t.Error("expected composite propagator, not just TraceContext")
		}
	})
}

func TestExtractTrace(t *testing.T) {
	t.Setenv("_X_AMZN_TRACE_ID", "Root=1-5759e988-bd862e3fe1be46a994272793;Parent=53995c3f42cd8ad8;Sampled=1")

	ctx := extractTrace(context.Background(), NewPropagator(testEnv{otelExp: "xrayudp"}))
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		t.Fatal("expected a valid remote span context")
	}
	if got := sc.TraceID().String(); got != "5759e988bd862e3fe1be46a994272793" {
		t.Errorf("TraceID = %s", got)
	}
}
