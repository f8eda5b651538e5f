package bwcr_test

import (
	"context"
	"testing"

	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type appTestEnv struct {
	bwcr.BaseEnvironment
	Greeting string `env:"GREETING" envDefault:"hello"`
}

type greeter struct {
	env appTestEnv
}

func newGreeter(env appTestEnv) *greeter {
	return &greeter{env: env}
}

func (g *greeter) Handle(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("name is required")
	}
	bwcr.Log(ctx).Info("greeting", zap.String("name", name))
	return g.env.Greeting + " " + name, nil
}

func setAppEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BW_SERVICE_NAME", "greeter")
	t.Setenv("BW_OTEL_EXPORTER", "stdout")
	t.Setenv("BW_LOG_LEVEL", "error")
}

func TestApp_Invoke(t *testing.T) {
	setAppEnv(t)
	t.Setenv("GREETING", "hi")

	app := bwcr.NewApp[appTestEnv, string, string](newGreeter)
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = app.Stop(ctx) }()

	got, err := app.Invoke(ctx, "world")
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if got != "hi world" {
		t.Errorf("Invoke() = %q, want %q", got, "hi world")
	}

	if _, err := app.Invoke(ctx, ""); err == nil {
		t.Error("expected handler error to be returned")
	}
}

func TestApp_MissingEnvironment(t *testing.T) {
	t.Setenv("BW_SERVICE_NAME", "")

	app := bwcr.NewApp[appTestEnv, string, string](newGreeter)
	if app.Err() == nil {
		t.Fatal("expected error for missing BW_SERVICE_NAME")
	}
	if err := app.Start(context.Background()); err == nil {
		t.Fatal("expected Start() to fail")
	}
}

func TestApp_HandlerFunc(t *testing.T) {
	setAppEnv(t)

	app := bwcr.NewApp[bwcr.BaseEnvironment, int, int](func() bwcr.HandlerFunc[int, int] {
		return func(_ context.Context, n int) (int, error) { return n * 2, nil }
	})
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = app.Stop(ctx) }()

	got, err := app.Invoke(ctx, 21)
	if err != nil || got != 42 {
		t.Errorf("Invoke() = %d, %v", got, err)
	}
}

func TestLog_OutsideInvocation(t *testing.T) {
	if bwcr.Log(context.Background()) == nil {
		t.Fatal("expected a no-op logger")
	}
}
