// Command waitsignal signals the wait condition of an image build from the
// Image Builder SNS topic.
package main

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/basewarphq/bwconstructs/internal/waitsignal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

func main() {
	bwcr.NewApp[waitsignal.Env, events.SNSEvent, struct{}](waitsignal.New,
		bwcr.WithFx(fx.Provide(func(tp trace.TracerProvider, prop propagation.TextMapPropagator) waitsignal.Signaler {
			return waitsignal.NewHTTPSignaler(
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithPropagators(prop),
			)
		})),
	).Run()
}
