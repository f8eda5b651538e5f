// Package bwcr is the runtime for the Lambda handlers behind this module's
// custom resources and event subscriptions.
//
// # Overview
//
// bwcr takes care of environment parsing, structured logging, OpenTelemetry
// tracing and AWS SDK clients so a handler only implements its business
// logic. A complete function is a single call:
//
//	bwcr.NewApp[Env, bwcr.Event, bwcr.Response](ddbprovision.New,
//	    bwcr.WithAWSClient(func(cfg aws.Config) *dynamodb.Client {
//	        return dynamodb.NewFromConfig(cfg)
//	    }),
//	).Run()
//
// The constructor passed to NewApp is an fx constructor whose result
// implements [Handler]. Its dependencies (the environment, AWS clients,
// the logger) are injected.
//
// # Environment Configuration
//
// Define the environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bwcr.BaseEnvironment
//	    WaitHandleURL string `env:"WAIT_HANDLE_URL,required"`
//	}
//
// BaseEnvironment reads the following variables:
//
//	| Variable          | Required | Default | Description                           |
//	|-------------------|----------|---------|---------------------------------------|
//	| BW_SERVICE_NAME   | Yes      | -       | Service name for logging and tracing  |
//	| BW_LOG_LEVEL      | No       | info    | Log level (debug, info, warn, error)  |
//	| BW_OTEL_EXPORTER  | No       | stdout  | Trace exporter: "stdout" or "xrayudp" |
//
// BW_SERVICE_NAME and BW_OTEL_EXPORTER are injected by the bwcdkgolambda
// construct.
//
// # Custom Resources
//
// Custom resource handlers receive an [Event] from the CDK provider framework
// and return a [Response]. Use [DecodeProperties] to read the resource
// properties into a typed struct; CloudFormation delivers every scalar as a
// string so decoding is weakly typed.
//
// # Tracing
//
// Every invocation runs in a span that continues the X-Ray trace of the
// Lambda invocation. [Log] returns a logger carrying the trace and span ids.
package bwcr
