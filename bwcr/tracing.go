package bwcr

import (
	"context"
	"os"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// traceHeader is the carrier key the X-Ray propagator reads.
const traceHeader = "X-Amzn-Trace-Id"

// NewTracerProvider builds the SDK tracer provider for the configured
// exporter. Spans are exported synchronously since Lambda may freeze the
// sandbox right after an invocation returns.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	ctx := context.Background()

	exporter, err := newExporter(ctx, env.otelExporter())
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, env.otelExporter(), env.serviceName())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
		sdktrace.WithIDGenerator(xray.NewIDGenerator()),
	)

	lc.Append(fx.Hook{
		OnStop: tp.Shutdown,
	})

	return tp, nil
}

// NewPropagator returns the X-Ray propagator in Lambda and a composite of
// W3C trace context, baggage and X-Ray otherwise.
func NewPropagator(env Environment) propagation.TextMapPropagator {
	if env.otelExporter() == "xrayudp" {
		return xray.Propagator{}
	}
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
		xray.Propagator{},
	)
}

func newExporter(ctx context.Context, exporterType string) (sdktrace.SpanExporter, error) {
	switch exporterType {
	case "stdout", "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "xrayudp":
		return xrayudp.NewSpanExporter(ctx)
	default:
		return nil, errors.Newf("unsupported OTEL_EXPORTER: %q (supported: stdout, xrayudp)", exporterType)
	}
}

func newResource(ctx context.Context, exporterType, serviceName string) (*resource.Resource, error) {
	base := resource.NewSchemaless(attribute.String("service.name", serviceName))
	if exporterType != "xrayudp" {
		return base, nil
	}

	detected, err := lambda.NewResourceDetector().Detect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect lambda resource")
	}

	res, err := resource.Merge(detected, base)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge resources")
	}
	return res, nil
}

// extractTrace continues the trace of the current Lambda invocation, which
// the runtime exposes through _X_AMZN_TRACE_ID.
func extractTrace(ctx context.Context, prop propagation.TextMapPropagator) context.Context {
	header := os.Getenv("_X_AMZN_TRACE_ID")
	if header == "" {
		return ctx
	}
	return prop.Extract(ctx, propagation.MapCarrier{traceHeader: header})
}
