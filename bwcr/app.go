package bwcr

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Handler processes one Lambda invocation.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// Handle calls f.
func (f HandlerFunc[In, Out]) Handle(ctx context.Context, in In) (Out, error) {
	return f(ctx, in)
}

// Option configures the App.
type Option func(*options)

type options struct {
	fxOptions    []fx.Option
	startTimeout time.Duration
}

// WithFx adds fx options, such as extra providers, to the application.
func WithFx(opts ...fx.Option) Option {
	return func(o *options) {
		o.fxOptions = append(o.fxOptions, opts...)
	}
}

// WithAWSClient registers an AWS SDK client for injection into the handler
// constructor. The factory receives the instrumented aws.Config.
func WithAWSClient[T any](factory func(aws.Config) T) Option {
	return WithFx(awsClientProvider(factory))
}

// WithStartTimeout bounds the time to start the fx application.
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startTimeout = d
	}
}

// App is a Lambda function handling events of type In.
type App[In, Out any] struct {
	fx      *fx.App
	timeout time.Duration

	handler Handler[In, Out]
	logger  *zap.Logger
	tracer  trace.Tracer
	prop    propagation.TextMapPropagator
	name    string
}

// NewApp builds the application. newHandler is an fx constructor whose
// result implements Handler[In, Out]; its parameters are resolved from the
// environment E, the logger, the tracing setup, the AWS config and any
// registered clients.
func NewApp[E Environment, In, Out any](newHandler any, opts ...Option) *App[In, Out] {
	o := &options{startTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	app := &App[In, Out]{timeout: o.startTimeout}
	fxOpts := []fx.Option{
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			ParseEnv[E](),
			func(e E) Environment { return e },
			newLogger,
			NewTracerProvider,
			NewPropagator,
			provideAWSConfig,
			fx.Annotate(newHandler, fx.As(new(Handler[In, Out]))),
		),
		fx.Populate(&app.handler, &app.logger, &app.prop),
		fx.Invoke(func(env Environment, tp trace.TracerProvider) {
			app.name = env.serviceName()
			app.tracer = tp.Tracer("github.com/basewarphq/bwconstructs/bwcr")
		}),
	}
	fxOpts = append(fxOpts, o.fxOptions...)

	app.fx = fx.New(fxOpts...)
	return app
}

// Err returns the error encountered while building the dependency graph.
func (a *App[In, Out]) Err() error {
	return a.fx.Err()
}

// Start starts the fx application.
func (a *App[In, Out]) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.fx.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start application")
	}
	return nil
}

// Stop flushes traces and stops the fx application.
func (a *App[In, Out]) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.fx.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop application")
	}
	return nil
}

// Invoke runs the handler for one event inside a span, with a
// trace-correlated logger in the context.
func (a *App[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	ctx = extractTrace(ctx, a.prop)
	ctx, span := a.tracer.Start(ctx, a.name, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	logger := a.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("aws_request_id", lc.AwsRequestID))
	}
	ctx = WithLogger(ctx, logger)

	out, err := a.handler.Handle(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		Log(ctx).Error("invocation failed", zap.Error(err))
		return out, err
	}
	return out, nil
}

// Run starts the application and hands control to the Lambda runtime. On
// SIGTERM the application is stopped so pending spans are flushed.
func (a *App[In, Out]) Run() {
	if err := a.Start(context.Background()); err != nil {
		if a.logger != nil {
			a.logger.Fatal("startup failed", zap.Error(err))
		}
		panic(err)
	}

	lambda.StartWithOptions(a.Invoke, lambda.WithEnableSIGTERM(func() {
		if err := a.Stop(context.Background()); err != nil {
			a.logger.Error("shutdown failed", zap.Error(err))
		}
		_ = a.logger.Sync()
	}))
}

func newLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger.With(zap.String("service", env.serviceName())), nil
}
